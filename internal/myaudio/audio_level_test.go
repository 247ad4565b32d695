package myaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateLevel(t *testing.T) {
	t.Run("silence reads zero", func(t *testing.T) {
		samples := make([]float32, 2048)
		data := CalculateLevel(samples, 2, "test")

		assert.Len(t, data.Levels, 2)
		assert.Equal(t, 0, data.Levels[0])
		assert.Equal(t, 0, data.Levels[1])
		assert.False(t, data.Clipping)
	})

	t.Run("full scale clips near the top", func(t *testing.T) {
		samples := []float32{1.0, -1.0, 1.0, -1.0}
		data := CalculateLevel(samples, 2, "test")

		assert.True(t, data.Clipping)
		assert.GreaterOrEqual(t, data.Levels[0], 95)
		assert.GreaterOrEqual(t, data.Levels[1], 95)
	})

	t.Run("channels are metered independently", func(t *testing.T) {
		// Left at half scale, right silent
		samples := []float32{0.5, 0, 0.5, 0, 0.5, 0}
		data := CalculateLevel(samples, 2, "test")

		assert.Greater(t, data.Levels[0], 50)
		assert.Equal(t, 0, data.Levels[1])
		assert.False(t, data.Clipping)
	})

	t.Run("empty block", func(t *testing.T) {
		data := CalculateLevel(nil, 2, "test")
		assert.Equal(t, []int{0, 0}, data.Levels)
	})
}

func TestSendLevel(t *testing.T) {
	ch := make(chan LevelData, 1)

	assert.True(t, SendLevel(ch, LevelData{Source: "a"}))
	assert.False(t, SendLevel(ch, LevelData{Source: "b"}), "full channel drops the reading")

	got := <-ch
	assert.Equal(t, "a", got.Source)
}
