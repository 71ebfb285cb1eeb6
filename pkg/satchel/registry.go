package satchel

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/satchel-io/satchel/internal/obfuscate"
	"github.com/satchel-io/satchel/internal/paths"
	"github.com/satchel-io/satchel/internal/section"
	"github.com/satchel-io/satchel/pkg/types"
)

// sectionFileExt is the extension given to section files whose
// configuration does not spell out a full path.
const sectionFileExt = ".satchel"

// ChangeFunc receives the data id and new value of every Set in a
// subscribed section. Delivery is synchronous: the callback has run by the
// time Set returns.
type ChangeFunc func(dataID string, value any)

// Registry owns the resolved set of sections and routes every operation to
// the owning section store. Configuration mistakes never panic or error out
// of Open: they degrade the registry (default section only, or no sections
// at all) and are reported through the injected logger.
type Registry struct {
	log *slog.Logger

	mu       sync.Mutex
	sections map[string]*section.Store
	subs     map[string]map[string]ChangeFunc
}

// Open constructs a registry and resolves cfg into live sections. A nil
// logger falls back to slog.Default().
func Open(cfg types.Config, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{
		log:      log,
		sections: map[string]*section.Store{},
		subs:     map[string]map[string]ChangeFunc{},
	}
	r.Reload(cfg)
	return r
}

// Reload re-runs section resolution against a fresh configuration.
// Subscriptions survive and re-bind to the new stores. No Get or Set may be
// in flight while resolution runs; the registry lock enforces that.
func (r *Registry) Reload(cfg types.Config) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sections = map[string]*section.Store{}

	dataDir, err := paths.ResolveDataDir("", cfg.DataDir)
	if err != nil {
		r.log.Warn("no base data path available; proceeding without a default section", "error", err)
		return
	}

	defObf, err := obfuscate.ForName(cfg.DefaultObfuscator)
	if err != nil {
		// A default obfuscator nobody implements poisons every section that
		// would inherit it; registering them with a substitute would write
		// files the operator's configuration cannot read back.
		r.log.Error("invalid default obfuscator; no sections registered",
			"obfuscator", cfg.DefaultObfuscator, "error", err)
		return
	}

	byID := map[string]string{}   // section id -> resolved path
	byPath := map[string]bool{}   // resolved path -> taken
	defaultPath := filepath.Join(dataDir, types.DefaultSection+sectionFileExt)
	r.install(types.DefaultSection, defaultPath, defObf)
	byID[types.DefaultSection] = defaultPath
	byPath[defaultPath] = true

	type resolved struct {
		id   string
		path string
		obf  types.Obfuscator
	}
	var accepted []resolved
	var hard []string

	for _, sec := range cfg.Sections {
		if sec == (types.Section{}) || strings.TrimSpace(sec.ID) == "" {
			continue
		}
		id := strings.TrimSpace(sec.ID)

		rawPath := sec.Path
		if rawPath == "" {
			rawPath = id + sectionFileExt
		}
		path, err := paths.Expand(rawPath, dataDir)
		if err != nil {
			hard = append(hard, fmt.Sprintf("section %q: bad path %q (%v)", id, sec.Path, err))
			continue
		}

		obfName := sec.Obfuscator
		if obfName == "" {
			obfName = cfg.DefaultObfuscator
		}
		obf, err := obfuscate.ForName(obfName)
		if err != nil {
			hard = append(hard, fmt.Sprintf("section %q: %v", id, err))
			continue
		}

		existingPath, idTaken := byID[id]
		pathTaken := byPath[path]
		if idTaken && existingPath == path {
			// Both axes collide: a pure duplicate definition, dropped
			// without failing the batch.
			r.log.Info("dropping duplicate section definition", "section", id, "path", path)
			continue
		}
		if idTaken || pathTaken {
			hard = append(hard, fmt.Sprintf("section %q (path %q)", id, path))
			continue
		}

		byID[id] = path
		byPath[path] = true
		accepted = append(accepted, resolved{id: id, path: path, obf: obf})
	}

	if len(hard) > 0 {
		// Partially-initialized persistence is worse than none: one bad
		// entry rejects the whole configured batch, keeping default only.
		r.log.Error("section configuration rejected; keeping default section only",
			"collisions", strings.Join(hard, "; "))
		return
	}

	for _, res := range accepted {
		r.install(res.id, res.path, res.obf)
	}
}

// install creates a store and binds its change callback to the registry's
// fan-out. Must be called with r.mu held.
func (r *Registry) install(id, path string, obf types.Obfuscator) {
	st := section.New(id, path, obf, r.log)
	st.SetChangeFunc(func(dataID string, v any) { r.notify(id, dataID, v) })
	r.sections[id] = st
}

// Close drops every section and subscription. A closed registry answers
// every operation with ErrUnknownSection.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sections = map[string]*section.Store{}
	r.subs = map[string]map[string]ChangeFunc{}
}

// Sections returns the sorted ids of the registered sections.
func (r *Registry) Sections() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sections))
	for id := range r.sections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SectionPath returns the resolved file path of a registered section.
func (r *Registry) SectionPath(sectionID string) (string, error) {
	st, err := r.store(sectionID)
	if err != nil {
		return "", err
	}
	return st.Path(), nil
}

// Keys returns the sorted data ids stored in a section.
func (r *Registry) Keys(sectionID string) ([]string, error) {
	st, err := r.store(sectionID)
	if err != nil {
		return nil, err
	}
	return st.Keys()
}

// Has reports whether dataID exists in the named section.
func (r *Registry) Has(sectionID, dataID string) (bool, error) {
	st, err := r.store(sectionID)
	if err != nil {
		return false, err
	}
	return st.Has(dataID)
}

// Clear removes dataID from the named section. Clearing an absent id is a
// no-op.
func (r *Registry) Clear(sectionID, dataID string) error {
	st, err := r.store(sectionID)
	if err != nil {
		return err
	}
	return st.Clear(dataID)
}

// ClearSection removes every entry in the named section.
func (r *Registry) ClearSection(sectionID string) error {
	st, err := r.store(sectionID)
	if err != nil {
		return err
	}
	return st.ClearAll()
}

// ClearAll removes every entry in every registered section. The first
// failure stops the sweep and is returned.
func (r *Registry) ClearAll() error {
	r.mu.Lock()
	stores := make([]*section.Store, 0, len(r.sections))
	for _, st := range r.sections {
		stores = append(stores, st)
	}
	r.mu.Unlock()

	for _, st := range stores {
		if err := st.ClearAll(); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers fn for change events in the named section and returns
// a token for Unsubscribe. Subscribing to a section that is not (yet)
// registered is allowed; events begin once a Reload provides the section.
func (r *Registry) Subscribe(sectionID string, fn ChangeFunc) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	token := uuid.NewString()
	if r.subs[sectionID] == nil {
		r.subs[sectionID] = map[string]ChangeFunc{}
	}
	r.subs[sectionID][token] = fn
	return token
}

// SubscribeDefault subscribes to the default section.
func (r *Registry) SubscribeDefault(fn ChangeFunc) string {
	return r.Subscribe(types.DefaultSection, fn)
}

// Unsubscribe revokes a subscription. Unknown tokens are ignored.
func (r *Registry) Unsubscribe(sectionID, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs[sectionID], token)
}

// notify fans a section's change event out to its subscribers. Callbacks
// run outside the registry lock so they may call back into the registry.
func (r *Registry) notify(sectionID, dataID string, value any) {
	r.mu.Lock()
	fns := make([]ChangeFunc, 0, len(r.subs[sectionID]))
	for _, fn := range r.subs[sectionID] {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(dataID, value)
	}
}

// store resolves a section id, returning ErrUnknownSection for ids that
// never registered.
func (r *Registry) store(sectionID string) (*section.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.sections[sectionID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownSection, sectionID)
	}
	return st, nil
}

// Get returns the value stored under dataID in the named section coerced to
// T, or def when the id is absent. A missing key is not an error.
func Get[T any](r *Registry, sectionID, dataID string, def T) (T, error) {
	st, err := r.store(sectionID)
	if err != nil {
		return def, err
	}
	return section.Get(st, dataID, def)
}

// TryGet returns the value stored under dataID coerced to T with an
// explicit found flag.
func TryGet[T any](r *Registry, sectionID, dataID string) (T, bool, error) {
	var zero T
	st, err := r.store(sectionID)
	if err != nil {
		return zero, false, err
	}
	return section.TryGet[T](st, dataID)
}

// Set stores value under dataID in the named section, persists the section
// immediately, and delivers the change notification before returning.
func Set[T any](r *Registry, sectionID, dataID string, value T) (T, error) {
	st, err := r.store(sectionID)
	if err != nil {
		var zero T
		return zero, err
	}
	return section.Set(st, dataID, value)
}
