// Command sushigo runs the control-plane host: event dispatcher, audio
// graph container, transport, MIDI dispatcher, OSC frontend and RPC
// seam, wired together behind the controller façade.
package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/schollz/sushigo/internal/controller"
	"github.com/schollz/sushigo/internal/dispatcher"
	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
	"github.com/schollz/sushigo/internal/midi"
	"github.com/schollz/sushigo/internal/osc"
	"github.com/schollz/sushigo/internal/rpc"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	var (
		sampleRate    float64
		blockSize     int
		oscSendIp     string
		oscSendPort   int
		oscReceivePort int
		rpcListen     string
		sessionFile   string
		debugLog      string
	)

	root := &cobra.Command{
		Use:   "sushigo",
		Short: "Real-time audio control-plane host",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(os.Stderr, "sushigo: ", log.LstdFlags)
			if debugLog != "" {
				f, err := os.OpenFile(debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open debug log: %w", err)
				}
				defer f.Close()
				logger.SetOutput(f)
			}

			idGen := id.NewGenerator()
			container := engine.NewContainer()
			transport := engine.NewTransport(sampleRate)
			timer := engine.NewPerformanceTimer()
			events := dispatcher.New(logger)
			defer events.Stop()

			portDriver := midi.NewPortDriver()
			defer portDriver.Close(logger)
			midiDisp := midi.NewDispatcher(logger, container, transport, events, portDriver)
			defer midiDisp.Close()

			build := controller.BuildInfo{Version: version, BuildOptions: runtime.Version(), BuildDate: date, Commit: commit, BlockSize: blockSize}
			facade := controller.New(logger, idGen, container, transport, timer, events, midiDisp, build)

			frontend := osc.NewFrontend(logger, facade, oscSendIp, oscSendPort, oscReceivePort)
			facade.SetOscFrontend(frontend)
			go func() {
				if err := frontend.Serve(); err != nil {
					logger.Printf("osc: receive server stopped: %v", err)
				}
			}()

			server := rpc.New(logger, facade)
			go func() {
				if err := server.Listen(rpcListen); err != nil {
					logger.Printf("rpc: listen failed: %v", err)
				}
			}()

			if sessionFile != "" {
				if data, err := os.ReadFile(sessionFile); err == nil {
					if status := facade.Session.RestoreSessionBytes(data); status != controller.StatusOk {
						logger.Printf("session: restore from %s returned %s, starting empty", sessionFile, status)
					} else {
						logger.Printf("session: restored from %s", sessionFile)
					}
				}
			}

			// No real audio callback in this host: a ticker stands in for the
			// RT thread's block-rate heartbeat, draining due RT-ordered events
			// and advancing the sample clock and MIDI clock generator at the
			// configured block size and rate.
			blockPeriod := time.Duration(float64(blockSize) / sampleRate * float64(time.Second))
			ticker := time.NewTicker(blockPeriod)
			defer ticker.Stop()
			tickerDone := make(chan struct{})
			go func() {
				for {
					select {
					case <-ticker.C:
						events.Tick(transport.SampleClock())
						transport.AdvanceSampleClock(int64(blockSize))
						midiDisp.TickClock(int64(blockSize))
					case <-tickerDone:
						return
					}
				}
			}()
			defer close(tickerDone)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			logger.Printf("sushigo %s listening: osc send %s:%d, receive :%d, rpc %s", version, oscSendIp, oscSendPort, oscReceivePort, rpcListen)
			<-sigCh
			logger.Printf("shutting down")

			if sessionFile != "" {
				if data, status := facade.Session.SaveSessionBytes(); status == controller.StatusOk {
					if err := os.WriteFile(sessionFile, data, 0o644); err != nil {
						logger.Printf("session: save to %s failed: %v", sessionFile, err)
					}
				}
			}
			return nil
		},
	}

	root.Flags().Float64Var(&sampleRate, "sample-rate", 48000, "audio sample rate in Hz")
	root.Flags().IntVar(&blockSize, "block-size", 64, "audio block size in frames")
	root.Flags().StringVar(&oscSendIp, "osc-send-ip", "127.0.0.1", "OSC client destination address")
	root.Flags().IntVar(&oscSendPort, "osc-send-port", 24024, "OSC client destination port")
	root.Flags().IntVar(&oscReceivePort, "osc-receive-port", 24023, "OSC server listen port")
	root.Flags().StringVar(&rpcListen, "rpc-listen", ":51051", "RPC server listen address")
	root.Flags().StringVar(&sessionFile, "session-file", "", "session file to restore from at startup and save to on exit")
	root.Flags().StringVar(&debugLog, "debug-log", "", "if set, write debug logs to this file instead of stderr")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}
