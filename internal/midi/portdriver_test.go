package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendOnUnopenedOutputReturnsError(t *testing.T) {
	d := NewPortDriver()
	err := d.Send(0, []byte{0x90, 60, 100})
	assert.Error(t, err)
}

func TestOpenOutputRejectsOutOfRangeIndex(t *testing.T) {
	d := NewPortDriver()
	err := d.OpenOutput(99999)
	assert.Error(t, err)
}

func TestOpenInputRejectsOutOfRangeIndex(t *testing.T) {
	d := NewPortDriver()
	err := d.OpenInput(99999, nil, func() int64 { return 0 })
	assert.Error(t, err)
}
