package separation

import (
	"os"
	"runtime"
	"strings"
	"time"

	tflite "github.com/tphakala/go-tflite"
	"github.com/tphakala/go-tflite/delegates/xnnpack"

	"github.com/omotiv/muteone/internal/accel"
	"github.com/omotiv/muteone/internal/errors"
	"github.com/omotiv/muteone/internal/logging"
	"github.com/omotiv/muteone/internal/myaudio"
)

// Stem is one labeled waveform returned by a separation backend.
type Stem struct {
	Label string
	Data  *myaudio.Buffer
}

// Backend is the opaque separation contract: given a stereo buffer,
// return one labeled buffer per stem, synchronously. Both backend kinds
// implement it; routing selects which one a job gets.
type Backend interface {
	// Separate runs inference and returns the stems. May return a
	// recoverable failure; it is never retried.
	Separate(buf *myaudio.Buffer) ([]Stem, error)
	// Labels returns the stem labels in output order.
	Labels() []string
	// Close releases interpreter resources.
	Close() error
}

// BackendKind distinguishes the two separation model families.
type BackendKind int

const (
	// KindIsolator separates exactly one target stem from the rest and
	// returns two outputs: the target and the residual.
	KindIsolator BackendKind = iota
	// KindMultiStem decomposes audio into the four canonical stems.
	KindMultiStem
)

// Stem labels produced by each backend kind, in model output order.
var (
	isolatorLabels  = []string{"vocals", "instrumental"}
	multiStemLabels = []string{"drums", "bass", "other", "vocals"}
)

// tfliteBackend wraps one TensorFlow Lite interpreter. The input tensor
// is expected to take interleaved stereo float32 samples; each output
// tensor holds one stem in the same layout.
type tfliteBackend struct {
	model       *tflite.Model
	interpreter *tflite.Interpreter
	labels      []string
	modelID     string
}

// newTFLiteBackend loads a model file and prepares an interpreter for it.
// The XNNPACK delegate is attached when the accelerator probe selected a
// SIMD-capable CPU target.
func newTFLiteBackend(modelPath, modelID string, kind BackendKind, threads int) (Backend, error) {
	start := time.Now()

	modelData, err := os.ReadFile(modelPath)
	if err != nil {
		return nil, errors.New(err).
			Component("separation").
			Category(errors.CategoryModelLoad).
			ModelContext(modelPath, modelID).
			Build()
	}

	model := tflite.NewModel(modelData)
	if model == nil {
		return nil, errors.Newf("cannot load TensorFlow Lite model").
			Component("separation").
			Category(errors.CategoryModelInit).
			ModelContext(modelPath, modelID).
			Context("model_size_mb", len(modelData)/1024/1024).
			Timing("model-load", time.Since(start)).
			Build()
	}

	threadCount := accel.Threads(threads)
	options := tflite.NewInterpreterOptions()

	log := logging.ForService("separation")
	if accel.Probe() == accel.TargetCPUSIMD {
		delegate := xnnpack.New(xnnpack.DelegateOptions{NumThreads: int32(max(1, threadCount-1))})
		if delegate == nil {
			log.Warn("failed to create XNNPACK delegate, falling back to default CPU")
			options.SetNumThread(threadCount)
		} else {
			options.AddDelegate(delegate)
			options.SetNumThread(1)
		}
	} else {
		options.SetNumThread(threadCount)
	}

	options.SetErrorReporter(func(msg string, userData any) {
		logging.ForService("separation").Error("tflite error", "message", msg)
	}, nil)

	interpreter := tflite.NewInterpreter(model, options)
	if interpreter == nil {
		model.Delete()
		return nil, errors.Newf("cannot create interpreter").
			Component("separation").
			Category(errors.CategoryModelInit).
			ModelContext(modelPath, modelID).
			Build()
	}

	labels := multiStemLabels
	if kind == KindIsolator {
		labels = isolatorLabels
	}

	// The model data is copied by TFLite; let the loaded bytes go
	runtime.GC()

	log.Info("separation model initialized",
		"model", modelID,
		"threads", threadCount,
		"target", string(accel.Probe()),
		"load_time", time.Since(start).Round(time.Millisecond).String())

	return &tfliteBackend{
		model:       model,
		interpreter: interpreter,
		labels:      labels,
		modelID:     modelID,
	}, nil
}

// Separate runs one inference pass over the whole buffer.
func (b *tfliteBackend) Separate(buf *myaudio.Buffer) ([]Stem, error) {
	samples := buf.Samples()

	if status := b.interpreter.ResizeInputTensor(0, []int{buf.Channels(), buf.Frames()}); status != tflite.OK {
		return nil, errors.Newf("input tensor resize failed: %v", status).
			Component("separation").
			Category(errors.CategoryInference).
			ModelContext("", b.modelID).
			Build()
	}
	if status := b.interpreter.AllocateTensors(); status != tflite.OK {
		return nil, errors.Newf("tensor allocation failed: %v", status).
			Component("separation").
			Category(errors.CategoryInference).
			ModelContext("", b.modelID).
			Build()
	}

	inputTensor := b.interpreter.GetInputTensor(0)
	if inputTensor == nil {
		return nil, errors.Newf("cannot get input tensor").
			Component("separation").
			Category(errors.CategoryInference).
			ModelContext("", b.modelID).
			Build()
	}
	copy(inputTensor.Float32s(), samples)

	start := time.Now()
	if status := b.interpreter.Invoke(); status != tflite.OK {
		return nil, errors.New(errors.ErrInferenceFailed).
			Component("separation").
			Category(errors.CategoryInference).
			ModelContext("", b.modelID).
			Context("status", status).
			Timing("inference", time.Since(start)).
			Build()
	}

	stems := make([]Stem, 0, len(b.labels))
	for i, label := range b.labels {
		outputTensor := b.interpreter.GetOutputTensor(i)
		if outputTensor == nil {
			return nil, errors.New(errors.ErrOutputMissingStems).
				Component("separation").
				Category(errors.CategoryInference).
				ModelContext("", b.modelID).
				Context("missing_stem", label).
				Build()
		}
		stemBuf := myaudio.NewBuffer(buf.SampleRate(), buf.Channels())
		if err := stemBuf.Append(outputTensor.Float32s()); err != nil {
			return nil, errors.New(err).
				Component("separation").
				Category(errors.CategoryInference).
				ModelContext("", b.modelID).
				Build()
		}
		stems = append(stems, Stem{Label: strings.ToLower(label), Data: stemBuf})
	}

	logging.ForService("separation").Info("inference complete",
		"model", b.modelID,
		"stems", len(stems),
		"inference_time", time.Since(start).Round(time.Millisecond).String())
	return stems, nil
}

func (b *tfliteBackend) Labels() []string { return b.labels }

// Close releases the interpreter and model.
func (b *tfliteBackend) Close() error {
	if b.interpreter != nil {
		b.interpreter.Delete()
		b.interpreter = nil
	}
	if b.model != nil {
		b.model.Delete()
		b.model = nil
	}
	return nil
}
