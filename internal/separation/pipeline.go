package separation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/errors"
	"github.com/omotiv/muteone/internal/logging"
	"github.com/omotiv/muteone/internal/myaudio"
)

// JobState is the lifecycle phase of a separation job.
type JobState int32

const (
	StateIdle JobState = iota
	StateLoading
	StateRunning
	StateCompleted
	StateFailed
	StateCancelled
)

// String returns the state name for logs and status lines.
func (s JobState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	}
	return "unknown"
}

// Terminal reports whether the state ends the job.
func (s JobState) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// NotificationKind distinguishes the four job event streams.
type NotificationKind int

const (
	NotifyProgress NotificationKind = iota
	NotifyStatus
	NotifyCompleted
	NotifyError
)

// Notification is one job event. Progress carries a percentage, Status a
// human-readable line, Completed the output path (empty on failure or
// cancellation), Error the cause text.
type Notification struct {
	Kind       NotificationKind
	Progress   int
	Status     string
	OutputPath string
	Err        string
}

// Job tracks one separation run. State and progress are readable from any
// goroutine while the pipeline drives the job.
type Job struct {
	InputPath   string
	OutputDir   string
	Instrument  string
	HighQuality bool

	state     atomic.Int32
	progress  atomic.Int32
	cancelled atomic.Bool

	notifications chan Notification
	done          chan struct{}
}

func newJob(inputPath, outputDir, instrument string, highQuality bool) *Job {
	return &Job{
		InputPath:     inputPath,
		OutputDir:     outputDir,
		Instrument:    strings.ToLower(instrument),
		HighQuality:   highQuality,
		notifications: make(chan Notification, 64),
		done:          make(chan struct{}),
	}
}

// State returns the current lifecycle phase.
func (j *Job) State() JobState { return JobState(j.state.Load()) }

// Progress returns the last reported percentage.
func (j *Job) Progress() int { return int(j.progress.Load()) }

// Cancel requests cooperative cancellation. The job stops at its next
// checkpoint; work already past the last checkpoint runs to completion.
func (j *Job) Cancel() { j.cancelled.Store(true) }

// Notifications returns the job's event stream. The channel is closed
// after the terminal notification.
func (j *Job) Notifications() <-chan Notification { return j.notifications }

// Done is closed when the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} { return j.done }

func (j *Job) setState(s JobState) { j.state.Store(int32(s)) }

// setProgress raises the reported percentage; it never moves backwards.
func (j *Job) setProgress(pct int) {
	for {
		cur := j.progress.Load()
		if int32(pct) <= cur {
			return
		}
		if j.progress.CompareAndSwap(cur, int32(pct)) {
			break
		}
	}
	j.notify(Notification{Kind: NotifyProgress, Progress: pct})
}

func (j *Job) status(line string) {
	j.notify(Notification{Kind: NotifyStatus, Status: line})
}

// notify delivers an event without ever blocking the worker. When the
// consumer lags behind a full channel, the oldest event is dropped to make
// room, so the terminal notification always lands.
func (j *Job) notify(n Notification) {
	for {
		select {
		case j.notifications <- n:
			return
		default:
			select {
			case <-j.notifications:
			default:
			}
		}
	}
}

// Pipeline runs separation jobs one at a time against a shared model
// manager.
type Pipeline struct {
	settings *conf.Settings
	manager  *ModelManager

	mu     sync.Mutex
	active *Job
}

// NewPipeline creates a pipeline using the given manager.
func NewPipeline(settings *conf.Settings, manager *ModelManager) *Pipeline {
	return &Pipeline{settings: settings, manager: manager}
}

// Active returns the in-flight job, or nil.
func (p *Pipeline) Active() *Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Start validates the request and launches a job worker. Only one job may
// be in flight per pipeline; a second Start fails until the first job
// reaches a terminal state.
func (p *Pipeline) Start(inputPath, outputDir, instrument string, highQuality bool) (*Job, error) {
	if !ValidInstrument(instrument) {
		return nil, errors.Newf("unknown instrument %q", instrument).
			Component("separation").
			Category(errors.CategoryValidation).
			Build()
	}
	if outputDir == "" {
		outputDir = p.settings.Separation.OutputDir
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != nil && !p.active.State().Terminal() {
		return nil, errors.Newf("a separation job is already running").
			Component("separation").
			Category(errors.CategoryState).
			Build()
	}

	job := newJob(inputPath, outputDir, instrument, highQuality)
	p.active = job
	go p.run(job)
	return job, nil
}

// run drives a job through its lifecycle. Exactly one terminal
// notification sequence is emitted, then the event channel closes.
func (p *Pipeline) run(job *Job) {
	defer close(job.done)
	defer close(job.notifications)

	log := logging.ForService("separation")
	start := time.Now()

	job.setState(StateLoading)
	job.setProgress(10)
	job.status(fmt.Sprintf("Loading %s...", filepath.Base(job.InputPath)))

	buf, err := myaudio.ReadAudioFile(job.InputPath)
	if err != nil {
		p.fail(job, err)
		return
	}
	buf = buf.ToStereo()

	if p.checkpoint(job) {
		return
	}

	desc := p.manager.Route(job.Instrument, job.HighQuality)
	job.setProgress(30)
	job.status(fmt.Sprintf("Loading separation model (%s)...", desc.ID))

	backend, err := p.manager.Load(desc)
	if err != nil {
		p.fail(job, err)
		return
	}
	defer p.manager.Release(backend)

	if p.checkpoint(job) {
		return
	}

	job.setState(StateRunning)
	job.setProgress(40)
	job.status(fmt.Sprintf("Removing %s...", job.Instrument))

	stems, err := backend.Separate(buf)
	if err != nil {
		p.fail(job, err)
		return
	}

	if p.checkpoint(job) {
		return
	}

	job.setProgress(70)
	job.status("Reconstructing mix...")

	kept, err := ReconstructKeptMix(stems, job.Instrument, desc.Kind)
	if err != nil {
		p.fail(job, err)
		return
	}

	// Last checkpoint before the filesystem is touched; a cancel past this
	// point still produces the file
	if p.checkpoint(job) {
		return
	}

	outPath, err := resolveOutputPath(job.OutputDir, job.InputPath, job.Instrument)
	if err != nil {
		p.fail(job, err)
		return
	}
	if err := myaudio.SaveToWAV(outPath, kept); err != nil {
		p.fail(job, err)
		return
	}

	job.setProgress(100)
	job.setState(StateCompleted)
	job.status(fmt.Sprintf("Done: %s", filepath.Base(outPath)))
	job.notify(Notification{Kind: NotifyCompleted, OutputPath: outPath})

	log.Info("separation job completed",
		"input", job.InputPath,
		"output", outPath,
		"instrument", job.Instrument,
		"model", desc.ID,
		"elapsed", time.Since(start).Round(time.Millisecond).String())
}

// checkpoint finishes the job as cancelled when a cancel request is
// pending. No output file exists for a cancelled job.
func (p *Pipeline) checkpoint(job *Job) bool {
	if !job.cancelled.Load() {
		return false
	}
	job.setState(StateCancelled)
	job.status("Cancelled")
	logging.ForService("separation").Info("separation job cancelled",
		"input", job.InputPath)
	return true
}

// fail finishes the job as failed with the error cause, plus an empty
// completion so consumers waiting on the completion stream unblock.
func (p *Pipeline) fail(job *Job, err error) {
	job.setState(StateFailed)
	logging.ForService("separation").Error("separation job failed",
		"input", job.InputPath,
		"instrument", job.Instrument,
		"error", err.Error())
	job.notify(Notification{Kind: NotifyError, Err: err.Error()})
	job.status("Separation failed")
	job.notify(Notification{Kind: NotifyCompleted, OutputPath: ""})
}

// ReconstructKeptMix builds the output waveform from the returned stems.
// The multi-stem path sums every stem whose label is not the removed
// instrument; the isolator path takes the residual directly. Missing the
// stems needed for the mix is a hard failure, not silence.
func ReconstructKeptMix(stems []Stem, removed string, kind BackendKind) (*myaudio.Buffer, error) {
	removed = strings.ToLower(removed)

	if kind == KindIsolator {
		for _, stem := range stems {
			if stem.Label == "instrumental" {
				return stem.Data.Clone(), nil
			}
		}
		return nil, errors.New(errors.ErrOutputMissingStems).
			Component("separation").
			Category(errors.CategoryInference).
			Context("missing_stem", "instrumental").
			Build()
	}

	var mix *myaudio.Buffer
	for _, stem := range stems {
		if stem.Label == removed {
			continue
		}
		if mix == nil {
			mix = stem.Data.Clone()
			continue
		}
		mixData := mix.Samples()
		stemData := stem.Data.Samples()
		n := len(mixData)
		if len(stemData) < n {
			n = len(stemData)
		}
		for i := 0; i < n; i++ {
			mixData[i] += stemData[i]
		}
	}
	if mix == nil {
		return nil, errors.New(errors.ErrOutputMissingStems).
			Component("separation").
			Category(errors.CategoryInference).
			Context("removed", removed).
			Build()
	}
	return mix, nil
}

// resolveOutputPath derives "<base>_no_<instrument>.wav" under dir and
// appends _1, _2... until the name does not collide with an existing file.
func resolveOutputPath(dir, inputPath, instrument string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.New(err).
			Component("separation").
			Category(errors.CategoryFileIO).
			FileContext(dir, 0).
			Build()
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	name := fmt.Sprintf("%s_no_%s", base, instrument)

	candidate := filepath.Join(dir, name+".wav")
	for i := 1; ; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d.wav", name, i))
	}
}
