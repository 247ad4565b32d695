package booth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00"},
		{5, "00:05"},
		{59, "00:59"},
		{60, "01:00"},
		{65, "01:05"},
		{600, "10:00"},
		{3599, "59:59"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatElapsed(tt.seconds))
	}
}
