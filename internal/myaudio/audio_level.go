package myaudio

import (
	"math"
	"sync"
	"time"
)

// LevelData holds one level reading derived from a single audio block.
type LevelData struct {
	Levels   []int  `json:"levels"`   // Per-channel level, 0-100
	Clipping bool   `json:"clipping"` // true if any channel hit full scale
	Source   string `json:"source"`   // Source identifier (device name)
}

// Throttling state per level source. Level events are advisory; consumers
// that fall behind see coalesced readings, never a blocked callback.
var (
	levelThrottleMu  sync.Mutex
	levelThrottleMap = make(map[string]time.Time)
	levelInterval    = 50 * time.Millisecond
)

// CalculateLevel computes per-channel peak levels from one interleaved
// float32 block. Peaks are converted to dBFS and scaled so that -60 dBFS
// maps to 0 and full scale maps to 100.
func CalculateLevel(samples []float32, channels int, source string) LevelData {
	if channels < 1 {
		channels = 1
	}
	levels := make([]int, channels)
	if len(samples) == 0 {
		return LevelData{Levels: levels, Source: source}
	}

	peaks := make([]float64, channels)
	clipping := false
	for i, s := range samples {
		ch := i % channels
		abs := math.Abs(float64(s))
		if abs > peaks[ch] {
			peaks[ch] = abs
		}
		if abs >= 1.0 {
			clipping = true
		}
	}

	for ch, peak := range peaks {
		// 1e-6 guards the log against digital silence
		db := 20 * math.Log10(peak+1e-6)

		// Scale -60..0 dBFS to 0..100
		scaled := (db + 60) * (100.0 / 60.0)

		// Clipping should read at or near full scale
		if clipping {
			scaled = math.Max(scaled, 95)
		}

		if scaled < 0 {
			scaled = 0
		} else if scaled > 100 {
			scaled = 100
		}
		levels[ch] = int(scaled)
	}

	return LevelData{
		Levels:   levels,
		Clipping: clipping,
		Source:   source,
	}
}

// ShouldCalculateLevel rate-limits level calculation per source so the
// real-time callback does not flood consumers with readings.
func ShouldCalculateLevel(source string) bool {
	levelThrottleMu.Lock()
	defer levelThrottleMu.Unlock()

	now := time.Now()
	if last, ok := levelThrottleMap[source]; ok && now.Sub(last) < levelInterval {
		return false
	}
	levelThrottleMap[source] = now
	return true
}

// SendLevel sends level data to the channel without blocking. Returns true
// if the data was sent, false if it was dropped because the channel is full.
func SendLevel(levelChan chan LevelData, data LevelData) bool {
	select {
	case levelChan <- data:
		return true
	default:
		// Channel full, drop the reading
		return false
	}
}

// ProcessLevel throttles, calculates and publishes a level reading for one
// block. Centralizes the logic shared by the monitor and recorder paths.
func ProcessLevel(samples []float32, channels int, source string, levelChan chan LevelData) {
	if ShouldCalculateLevel(source) {
		SendLevel(levelChan, CalculateLevel(samples, channels, source))
	}
}
