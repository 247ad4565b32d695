package separation

import (
	"runtime"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/omotiv/muteone/internal/accel"
	"github.com/omotiv/muteone/internal/conf"
	"github.com/omotiv/muteone/internal/errors"
	"github.com/omotiv/muteone/internal/logging"
)

// Instrument identifiers accepted by the separation pipeline.
const (
	InstrumentVocals = "vocals"
	InstrumentDrums  = "drums"
	InstrumentBass   = "bass"
	InstrumentOther  = "other"
)

// ValidInstrument reports whether the identifier names a known stem.
func ValidInstrument(name string) bool {
	switch strings.ToLower(name) {
	case InstrumentVocals, InstrumentDrums, InstrumentBass, InstrumentOther:
		return true
	}
	return false
}

// ModelDescriptor identifies a concrete separation model: which backend
// family it belongs to, where its weights live, and the identifier used
// to request it.
type ModelDescriptor struct {
	ID   string
	Kind BackendKind
	Path string
}

// Model identifiers for the shipped models.
const (
	isolatorModelID  = "isolator-inst-hq-1"
	separatorModelID = "separator-4stem"
)

// FailedModelSet records model identifiers that failed to load at least
// once this session. It is process-scoped, guarded by a single mutex, and
// cleared only by process restart: a model that failed once is never
// retried automatically.
type FailedModelSet struct {
	mu     sync.Mutex
	failed map[string]struct{}
}

// NewFailedModelSet creates an empty quarantine set.
func NewFailedModelSet() *FailedModelSet {
	return &FailedModelSet{failed: make(map[string]struct{})}
}

// Contains reports whether the identifier is quarantined.
func (s *FailedModelSet) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.failed[id]
	return ok
}

// Add quarantines the identifier.
func (s *FailedModelSet) Add(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed[id] = struct{}{}
}

// backendLoader abstracts the actual model loading so tests can count
// load attempts without touching TFLite.
type backendLoader func(modelPath, modelID string, kind BackendKind, threads int) (Backend, error)

// ModelManager routes separation tasks to model identifiers, loads
// backends with failure quarantine, and releases backend resources. The
// execution target is probed once per process at construction and not
// re-probed per job.
type ModelManager struct {
	settings *conf.Settings
	failed   *FailedModelSet
	loader   backendLoader
	target   accel.Target

	mu   sync.Mutex
	open []Backend
}

// NewModelManager creates a manager sharing the given quarantine set.
func NewModelManager(settings *conf.Settings, failed *FailedModelSet) *ModelManager {
	target := accel.Probe()
	logging.ForService("separation").Info("inference target selected",
		"target", string(target))
	return &ModelManager{
		settings: settings,
		failed:   failed,
		loader:   newTFLiteBackend,
		target:   target,
	}
}

// ExecutionTarget returns the accelerator target recorded at startup.
func (m *ModelManager) ExecutionTarget() accel.Target { return m.target }

// Route maps a task and quality flag to a model descriptor: vocals at
// high quality go to the single-stem isolator, everything else to the
// general multi-stem separator.
func (m *ModelManager) Route(instrument string, highQuality bool) ModelDescriptor {
	if strings.EqualFold(instrument, InstrumentVocals) && highQuality {
		return ModelDescriptor{
			ID:   isolatorModelID,
			Kind: KindIsolator,
			Path: m.settings.Separation.IsolatorPath,
		}
	}
	return ModelDescriptor{
		ID:   separatorModelID,
		Kind: KindMultiStem,
		Path: m.settings.Separation.SeparatorPath,
	}
}

// Load attempts to load the described model. A quarantined identifier
// fails immediately with ErrModelPreviouslyFailed and no load attempt;
// any load failure quarantines the identifier and returns
// ErrModelLoadFailed with the underlying cause. Loads are serialized so
// two jobs never race on the same identifier.
func (m *ModelManager) Load(desc ModelDescriptor) (Backend, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failed.Contains(desc.ID) {
		return nil, errors.New(errors.ErrModelPreviouslyFailed).
			Component("separation").
			Category(errors.CategoryModelLoad).
			ModelContext(desc.Path, desc.ID).
			Build()
	}

	if vm, memErr := mem.VirtualMemory(); memErr == nil {
		logging.ForService("separation").Debug("memory headroom before model load",
			"model", desc.ID,
			"available_mb", vm.Available/1024/1024,
			"used_percent", vm.UsedPercent)
	}

	backend, err := m.loader(desc.Path, desc.ID, desc.Kind, m.settings.Separation.Threads)
	if err != nil {
		m.failed.Add(desc.ID)
		logging.ForService("separation").Error("model load failed, quarantining",
			"model", desc.ID,
			"error", err.Error())
		return nil, errors.Newf("%w: %w", errors.ErrModelLoadFailed, err).
			Component("separation").
			Category(errors.CategoryModelLoad).
			ModelContext(desc.Path, desc.ID).
			Build()
	}

	m.open = append(m.open, backend)
	return backend, nil
}

// Release closes one backend previously returned by Load.
func (m *ModelManager) Release(backend Backend) {
	if backend == nil {
		return
	}
	m.mu.Lock()
	for i, b := range m.open {
		if b == backend {
			m.open = append(m.open[:i], m.open[i+1:]...)
			break
		}
	}
	m.mu.Unlock()
	_ = backend.Close()
}

// Cleanup closes every open backend and forces a memory reclaim pass so
// accelerator allocations are actually returned to the system.
func (m *ModelManager) Cleanup() {
	m.mu.Lock()
	open := m.open
	m.open = nil
	m.mu.Unlock()

	for _, backend := range open {
		_ = backend.Close()
	}

	runtime.GC()
	debug.FreeOSMemory()

	if vm, err := mem.VirtualMemory(); err == nil {
		logging.ForService("separation").Info("backend resources released",
			"backends_closed", len(open),
			"memory_used_percent", vm.UsedPercent)
	}
}
