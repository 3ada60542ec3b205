package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRelativeDeltaTwosComplementAround64(t *testing.T) {
	cases := []struct {
		ccValue int
		want    int
	}{
		{1, 1},
		{63, 63},
		{64, 0},
		{65, -63},
		{127, -1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, relativeDelta(c.ccValue), "ccValue=%d", c.ccValue)
	}
}
