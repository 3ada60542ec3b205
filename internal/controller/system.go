package controller

import "github.com/schollz/sushigo/internal/engine"

// SystemController exposes pure, read-only queries about process
// identity and audio I/O width.
type SystemController struct {
	f *Facade
}

func (c *SystemController) GetSushiVersion() string {
	return c.f.buildInfo.Version
}

func (c *SystemController) GetSushiBuildInfo() BuildInfo {
	return c.f.buildInfo
}

func (c *SystemController) GetInputAudioChannelCount() int {
	_, in, _, _ := c.f.engineChannelCounts()
	return in
}

func (c *SystemController) GetOutputAudioChannelCount() int {
	_, _, _, out := c.f.engineChannelCounts()
	return out
}

// engineChannelCounts reports the engine-wide input/output channel
// counts, derived from the pre/post track's width if present, else zero.
func (f *Facade) engineChannelCounts() (maxIn, curIn, maxOut, curOut int) {
	for _, t := range f.container.AllTracks() {
		switch t.Kind() {
		case engine.TrackPre:
			maxIn, curIn, _, _ = t.ChannelCounts()
		case engine.TrackPost:
			_, _, maxOut, curOut = t.ChannelCounts()
		}
	}
	return
}
