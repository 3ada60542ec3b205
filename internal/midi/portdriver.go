package midi

import (
	"fmt"
	"log"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters the system MIDI driver
)

// PortDriver opens real system MIDI output/input ports by index and
// bridges them to a Dispatcher: it implements PortSender for output, and
// feeds incoming bytes into Dispatcher.SendMidi for input. Port indices
// are process-stable for one run, matching the ordering gomidi reports
// from the system driver.
type PortDriver struct {
	mu   sync.Mutex
	outs map[int]drivers.Out
	ins  map[int]drivers.In
}

// NewPortDriver constructs an empty driver; ports are opened on demand
// by OpenOutput/OpenInput so a process with no MIDI hardware configured
// never touches the system driver.
func NewPortDriver() *PortDriver {
	return &PortDriver{
		outs: make(map[int]drivers.Out),
		ins:  make(map[int]drivers.In),
	}
}

// OutputNames lists the system's available MIDI output ports, in the
// order OpenOutput's index argument addresses them.
func OutputNames() []string {
	var names []string
	for _, out := range gomidi.GetOutPorts() {
		names = append(names, out.String())
	}
	return names
}

// InputNames lists the system's available MIDI input ports.
func InputNames() []string {
	var names []string
	for _, in := range gomidi.GetInPorts() {
		names = append(names, in.String())
	}
	return names
}

// OpenOutput opens system output port index for sending, idempotent if
// already open.
func (d *PortDriver) OpenOutput(port int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.outs[port]; ok {
		return nil
	}
	outs := gomidi.GetOutPorts()
	if port < 0 || port >= len(outs) {
		return fmt.Errorf("midi: output port %d out of range (%d available)", port, len(outs))
	}
	out := outs[port]
	if err := out.Open(); err != nil {
		return fmt.Errorf("midi: open output %d: %w", port, err)
	}
	d.outs[port] = out
	return nil
}

// Send implements PortSender by writing data to the already-opened
// output port; returns an error if the port was never opened.
func (d *PortDriver) Send(port int, data []byte) error {
	d.mu.Lock()
	out, ok := d.outs[port]
	d.mu.Unlock()
	if !ok {
		return fmt.Errorf("midi: output port %d not open", port)
	}
	return out.Send(data)
}

// OpenInput opens system input port index and forwards every decoded
// message to dispatcher.SendMidi(port, ...), using timestamp as the
// message's sample-clock stand-in (callers typically pass the
// transport's current sample clock via a small wrapper).
func (d *PortDriver) OpenInput(port int, dispatcher *Dispatcher, timestamp func() int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.ins[port]; ok {
		return nil
	}
	ins := gomidi.GetInPorts()
	if port < 0 || port >= len(ins) {
		return fmt.Errorf("midi: input port %d out of range (%d available)", port, len(ins))
	}
	in := ins[port]
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		dispatcher.SendMidi(port, msg.Bytes(), timestamp())
	})
	if err != nil {
		return fmt.Errorf("midi: listen on input %d: %w", port, err)
	}
	d.ins[port] = in
	_ = stop // retained only to keep ListenTo's return value self-documenting; driver lifetime == process lifetime
	return nil
}

// Close closes every opened port. Errors are logged rather than
// returned since this only runs during process shutdown.
func (d *PortDriver) Close(logger *log.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for port, out := range d.outs {
		if err := out.Close(); err != nil {
			logger.Printf("midi: close output %d: %v", port, err)
		}
	}
	for port, in := range d.ins {
		if err := in.Close(); err != nil {
			logger.Printf("midi: close input %d: %v", port, err)
		}
	}
	gomidi.CloseDriver()
}
