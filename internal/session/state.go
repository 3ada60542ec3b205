// Package session implements whole-engine save/restore (§4.J): a single
// serializable snapshot of build info, transport state, graph topology,
// per-processor parameter/property/opaque state, and MIDI/OSC/audio
// routing.
package session

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/sushigo/internal/engine"
	"github.com/schollz/sushigo/internal/id"
	"github.com/schollz/sushigo/internal/midi"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// State is the saved form of the whole engine. SaveDate is an RFC3339
// timestamp stamped by the caller, not by this package (session never
// reads the wall clock itself, keeping it deterministic for tests).
type State struct {
	SaveDate string      `json:"save_date"`
	Build    BuildInfo   `json:"sushi_info"`
	Osc      []byte      `json:"osc_state,omitempty"`
	Midi     midi.MidiSnapshot `json:"midi_state"`
	Engine   EngineState `json:"engine_state"`
	Tracks   []TrackState `json:"tracks"`
}

// BuildInfo mirrors controller.BuildInfo without importing the
// controller package (session sits below controller in the dependency
// graph; controller depends on session, not vice versa).
type BuildInfo struct {
	Version      string `json:"version"`
	BuildOptions string `json:"build_options,omitempty"`
	BuildDate    string `json:"build_date"`
	Commit       string `json:"commit"`
	AudioBlockSize int  `json:"audio_block_size"`
}

// EngineState captures the transport plus the audio-routing facts that
// ride alongside it in the saved file (spec §4.J): clip/limiter flags
// and the minimum channel counts a restore needs, derived from the live
// connection lists rather than tracked as independent state.
type EngineState struct {
	SampleRate           float64              `json:"sample_rate"`
	Tempo                float64              `json:"tempo"`
	TimeSig              engine.TimeSignature `json:"time_signature"`
	PlayingMode          engine.PlayingMode   `json:"playing_mode"`
	SyncMode             engine.SyncMode      `json:"sync_mode"`
	ClipDetectionEnabled bool                 `json:"clip_detection_enabled"`
	LimiterEnabled       bool                 `json:"limiter_enabled"`
	MinInputChannels     int                  `json:"min_input_channels"`
	MinOutputChannels    int                  `json:"min_output_channels"`
	InputConnections     []engine.AudioConnection `json:"input_connections,omitempty"`
	OutputConnections    []engine.AudioConnection `json:"output_connections,omitempty"`
}

// TrackState is one track and its processor chain, in chain order.
type TrackState struct {
	Id         id.ObjectId       `json:"id"`
	Name       string            `json:"name"`
	Label      string            `json:"label"`
	Kind       engine.TrackType  `json:"kind"`
	Channels   int               `json:"channels"`
	Buses      int               `json:"buses"`
	Processors []ProcessorState  `json:"processors"`
}

// ProcessorState is one processor's create-time identity plus its
// mutable value set, restored in two passes: first every processor is
// recreated with its identity (name/uid/path/kind), then every
// parameter/property/opaque-state value is applied, matching the
// original implementation's two-pass restore (a processor may reference
// another not yet created if state were applied inline).
type ProcessorState struct {
	Id              id.ObjectId        `json:"id"`
	Name            string             `json:"name"`
	Label           string             `json:"label"`
	Uid             string             `json:"uid"`
	Path            string             `json:"path"`
	Kind            engine.PluginType  `json:"kind"`
	Bypassed        bool               `json:"bypassed"`
	CurrentProgram  int                `json:"current_program"`
	OpaqueState     []byte             `json:"opaque_state,omitempty"`
	ParameterValues map[id.ObjectId]engine.ParameterValue `json:"parameter_values"`
}

// Marshal gzips the jsoniter encoding of s, matching the teacher's
// save-file framing (a plain gzip stream containing the JSON document).
func (s State) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	enc := json.NewEncoder(gw)
	if err := enc.Encode(s); err != nil {
		gw.Close()
		return nil, fmt.Errorf("session: encode: %w", err)
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("session: flush gzip: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal is the inverse of Marshal.
func Unmarshal(data []byte) (State, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return State{}, fmt.Errorf("session: open gzip: %w", err)
	}
	defer gr.Close()
	raw, err := io.ReadAll(gr)
	if err != nil {
		return State{}, fmt.Errorf("session: read gzip: %w", err)
	}
	var s State
	if err := json.Unmarshal(raw, &s); err != nil {
		return State{}, fmt.Errorf("session: decode: %w", err)
	}
	return s, nil
}
