package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	base := NewStd("boom")
	err := New(base).
		Component("myaudio").
		Category(CategoryDevice).
		Context("device", "front-mic").
		Build()

	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, "myaudio", err.Component)
	assert.Equal(t, CategoryDevice, err.Category)
	assert.Equal(t, "front-mic", err.GetContext()["device"])
	assert.ErrorIs(t, err, base)
}

func TestBuilderDefaults(t *testing.T) {
	err := Newf("bad value %d", 42).Build()

	assert.Equal(t, "bad value 42", err.Error())
	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Nil(t, err.GetContext())
}

func TestSentinelMatching(t *testing.T) {
	err := New(ErrModelLoadFailed).
		Component("separation").
		Category(CategoryModelLoad).
		Build()

	assert.ErrorIs(t, err, ErrModelLoadFailed)
	assert.NotErrorIs(t, err, ErrInferenceFailed)

	// A doubly wrapped sentinel still matches
	wrapped := fmt.Errorf("outer: %w", err)
	assert.ErrorIs(t, wrapped, ErrModelLoadFailed)
}

func TestCategoryMatching(t *testing.T) {
	a := New(NewStd("a")).Category(CategoryFileIO).Build()
	b := New(NewStd("b")).Category(CategoryFileIO).Build()
	c := New(NewStd("c")).Category(CategoryInference).Build()

	assert.ErrorIs(t, a, b, "same category matches across instances")
	assert.NotErrorIs(t, a, c)
}

func TestModelAndFileContext(t *testing.T) {
	err := New(NewStd("x")).
		ModelContext("/models/m.tflite", "m-1").
		FileContext("/tmp/in.wav", 1024).
		Build()

	ctx := err.GetContext()
	require.NotNil(t, ctx)
	assert.Equal(t, "/models/m.tflite", ctx["model_path"])
	assert.Equal(t, "m-1", ctx["model_id"])
	assert.Equal(t, "/tmp/in.wav", ctx["file_path"])
	assert.Equal(t, int64(1024), ctx["file_size_bytes"])
}

func TestNilErrorBuilder(t *testing.T) {
	err := New(nil).Build()
	assert.NotEmpty(t, err.Error(), "nil input still yields a usable error")
}
