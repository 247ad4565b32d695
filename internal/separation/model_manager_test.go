package separation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omotiv/muteone/internal/errors"
)

func TestValidInstrument(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"vocals", true},
		{"drums", true},
		{"bass", true},
		{"other", true},
		{"Vocals", true},
		{"guitar", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, ValidInstrument(tt.name), tt.name)
	}
}

func TestRoute(t *testing.T) {
	manager := NewModelManager(testSettings(t), NewFailedModelSet())

	tests := []struct {
		name        string
		instrument  string
		highQuality bool
		wantKind    BackendKind
	}{
		{"vocals at high quality use the isolator", "vocals", true, KindIsolator},
		{"vocals at standard quality use the separator", "vocals", false, KindMultiStem},
		{"drums always use the separator", "drums", true, KindMultiStem},
		{"bass always uses the separator", "bass", false, KindMultiStem},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := manager.Route(tt.instrument, tt.highQuality)
			assert.Equal(t, tt.wantKind, desc.Kind)
			assert.NotEmpty(t, desc.ID)
			assert.NotEmpty(t, desc.Path)
		})
	}
}

func TestLoadQuarantine(t *testing.T) {
	manager := NewModelManager(testSettings(t), NewFailedModelSet())

	attempts := 0
	manager.loader = func(modelPath, modelID string, kind BackendKind, threads int) (Backend, error) {
		attempts++
		return nil, fmt.Errorf("bad model file")
	}
	desc := manager.Route("drums", false)

	_, err := manager.Load(desc)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrModelLoadFailed)
	assert.Equal(t, 1, attempts)

	// The second load must fail fast without touching the loader again
	_, err = manager.Load(desc)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrModelPreviouslyFailed)
	assert.Equal(t, 1, attempts, "quarantined model must never be retried")
}

func TestQuarantineSharedAcrossManagers(t *testing.T) {
	failed := NewFailedModelSet()
	settings := testSettings(t)

	first := NewModelManager(settings, failed)
	first.loader = func(modelPath, modelID string, kind BackendKind, threads int) (Backend, error) {
		return nil, fmt.Errorf("bad model file")
	}
	desc := first.Route("vocals", true)
	_, err := first.Load(desc)
	require.ErrorIs(t, err, errors.ErrModelLoadFailed)

	second := NewModelManager(settings, failed)
	attempts := 0
	second.loader = func(modelPath, modelID string, kind BackendKind, threads int) (Backend, error) {
		attempts++
		return &fakeBackend{labels: isolatorLabels}, nil
	}
	_, err = second.Load(desc)
	assert.ErrorIs(t, err, errors.ErrModelPreviouslyFailed)
	assert.Zero(t, attempts)
}

func TestCleanupClosesBackends(t *testing.T) {
	manager := NewModelManager(testSettings(t), NewFailedModelSet())

	backend := &fakeBackend{labels: multiStemLabels}
	manager.loader = func(modelPath, modelID string, kind BackendKind, threads int) (Backend, error) {
		return backend, nil
	}

	loaded, err := manager.Load(manager.Route("drums", false))
	require.NoError(t, err)
	require.Same(t, Backend(backend), loaded)

	manager.Cleanup()
	assert.True(t, backend.closed.Load())
}

func TestReleaseClosesBackend(t *testing.T) {
	manager := NewModelManager(testSettings(t), NewFailedModelSet())

	backend := &fakeBackend{labels: multiStemLabels}
	manager.loader = func(modelPath, modelID string, kind BackendKind, threads int) (Backend, error) {
		return backend, nil
	}

	loaded, err := manager.Load(manager.Route("other", false))
	require.NoError(t, err)

	manager.Release(loaded)
	assert.True(t, backend.closed.Load())

	// Releasing nil is harmless
	manager.Release(nil)
}

func TestFailedModelSet(t *testing.T) {
	set := NewFailedModelSet()
	assert.False(t, set.Contains("a"))

	set.Add("a")
	assert.True(t, set.Contains("a"))
	assert.False(t, set.Contains("b"))
}
