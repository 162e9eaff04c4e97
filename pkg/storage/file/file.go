package file

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"warden-hq/warden/pkg/checker"
	"warden-hq/warden/pkg/policy"
	"warden-hq/warden/pkg/storage"
)

// DefaultDebounceInterval is how long the watcher waits after a change
// before reloading, collapsing editor write bursts into one reload.
const DefaultDebounceInterval = 100 * time.Millisecond

// document is the on-disk shape of the policy set.
type document struct {
	Policies []yaml.Node `yaml:"policies"`
}

// Storage persists policies to a YAML file. All reads are served from an
// in-memory copy; mutations rewrite the file atomically (temp file plus
// rename in the same directory).
type Storage struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration

	mu       sync.RWMutex
	policies map[string]*policy.Policy
	order    []string

	listenerMu sync.RWMutex
	listeners  []storage.Listener
}

// Option configures a file Storage.
type Option func(*Storage)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) { s.logger = logger }
}

// WithDebounceInterval sets the watcher's reload debounce.
func WithDebounceInterval(d time.Duration) Option {
	return func(s *Storage) { s.debounce = d }
}

// New loads the policy set at path. A missing file is an empty set; it is
// created on the first mutation.
func New(path string, opts ...Option) (*Storage, error) {
	s := &Storage{
		path:     path,
		debounce: DefaultDebounceInterval,
		policies: make(map[string]*policy.Policy),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "storage.file")

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Subscribe registers a listener notified whenever the watcher reloads the
// policy set after an external edit.
func (s *Storage) Subscribe(l storage.Listener) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Add implements storage.Storage.
func (s *Storage) Add(_ context.Context, p *policy.Policy) error {
	if err := p.Validate(); err != nil {
		return &storage.PolicyCreationError{UID: p.UID, Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.policies[p.UID]; exists {
		return &storage.PolicyExistsError{UID: p.UID}
	}
	s.policies[p.UID] = p
	s.order = append(s.order, p.UID)

	if err := s.persist(); err != nil {
		delete(s.policies, p.UID)
		s.order = s.order[:len(s.order)-1]
		return &storage.PolicyCreationError{UID: p.UID, Cause: err}
	}

	s.logger.Debug("policy added", "uid", p.UID)
	return nil
}

// Get implements storage.Storage.
func (s *Storage) Get(_ context.Context, uid string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.policies[uid], nil
}

// GetAll implements storage.Storage.
func (s *Storage) GetAll(_ context.Context, limit, offset int) ([]*policy.Policy, error) {
	if err := storage.ValidatePagination(limit, offset); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset >= len(s.order) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.order) {
		end = len(s.order)
	}

	page := make([]*policy.Policy, 0, end-offset)
	for _, uid := range s.order[offset:end] {
		page = append(page, s.policies[uid])
	}
	return page, nil
}

// FindForInquiry implements storage.Storage. Candidates are pre-filtered by
// the checker's policy family.
func (s *Storage) FindForInquiry(_ context.Context, _ *policy.Inquiry, chk checker.Checker) ([]*policy.Policy, error) {
	want, filter, err := storage.TypeForChecker(chk)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*policy.Policy
	for _, uid := range s.order {
		p := s.policies[uid]
		if filter {
			typ, ok := p.DeriveType()
			if !ok || typ != want {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// Update implements storage.Storage.
func (s *Storage) Update(_ context.Context, p *policy.Policy) error {
	if err := p.Validate(); err != nil {
		return &storage.PolicyUpdateError{UID: p.UID, Cause: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.policies[p.UID]
	if !exists {
		return &storage.PolicyUpdateError{UID: p.UID, Cause: &storage.PolicyNotFoundError{UID: p.UID}}
	}
	s.policies[p.UID] = p

	if err := s.persist(); err != nil {
		s.policies[p.UID] = prev
		return &storage.PolicyUpdateError{UID: p.UID, Cause: err}
	}

	s.logger.Debug("policy updated", "uid", p.UID)
	return nil
}

// Delete implements storage.Storage.
func (s *Storage) Delete(_ context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.policies[uid]
	if !exists {
		return &storage.PolicyNotFoundError{UID: uid}
	}
	delete(s.policies, uid)
	idx := -1
	for i, u := range s.order {
		if u == uid {
			idx = i
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	if err := s.persist(); err != nil {
		s.policies[uid] = prev
		if idx >= 0 {
			s.order = append(s.order[:idx], append([]string{uid}, s.order[idx:]...)...)
		}
		return &storage.PolicyDeletionError{UID: uid, Cause: err}
	}

	s.logger.Debug("policy deleted", "uid", uid)
	return nil
}

// Len returns the number of stored policies.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Watch blocks watching the backing file for external edits, reloading the
// policy set and notifying listeners after each change. It returns when the
// context is cancelled. The file's directory is watched rather than the
// file itself, so atomic save strategies (write plus rename) are seen.
func (s *Storage) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("file: create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("file: watch %q: %w", dir, err)
	}

	s.logger.Info("file watcher started", "path", s.path, "debounce", s.debounce)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(s.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
				timerC = timer.C
			} else {
				timer.Reset(s.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if err := s.Reload(); err != nil {
				s.logger.Warn("reload after file change failed, keeping previous policy set",
					"path", s.path, "error", err)
				continue
			}
			s.notify()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("file watcher error", "error", err)
		}
	}
}

// Reload re-reads the backing file and replaces the in-memory policy set.
func (s *Storage) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// load reads the file into s.policies. Callers hold the write lock (or own
// the storage exclusively, as New does).
func (s *Storage) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.policies = make(map[string]*policy.Policy)
		s.order = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("file: read %q: %w", s.path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("file: parse %q: %w", s.path, err)
	}

	policies := make(map[string]*policy.Policy, len(doc.Policies))
	order := make([]string, 0, len(doc.Policies))
	for i := range doc.Policies {
		p, err := decodeNode(&doc.Policies[i])
		if err != nil {
			return fmt.Errorf("file: policy #%d in %q: %w", i, s.path, err)
		}
		if _, dup := policies[p.UID]; dup {
			return fmt.Errorf("file: %q: %w", s.path, &storage.PolicyExistsError{UID: p.UID})
		}
		policies[p.UID] = p
		order = append(order, p.UID)
	}

	s.policies = policies
	s.order = order
	s.logger.Info("policies loaded", "path", s.path, "count", len(order))
	return nil
}

// persist writes the current policy set to disk atomically. Callers hold
// the write lock.
func (s *Storage) persist() error {
	doc := document{Policies: make([]yaml.Node, 0, len(s.order))}
	for _, uid := range s.order {
		node, err := encodeNode(s.policies[uid])
		if err != nil {
			return fmt.Errorf("file: encode policy %q: %w", uid, err)
		}
		doc.Policies = append(doc.Policies, *node)
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("file: marshal policy set: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".warden-policies-*")
	if err != nil {
		return fmt.Errorf("file: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("file: write %q: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: close %q: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("file: rename to %q: %w", s.path, err)
	}
	return nil
}

func (s *Storage) notify() {
	s.listenerMu.RLock()
	listeners := make([]storage.Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerMu.RUnlock()

	for _, l := range listeners {
		l.PolicySetChanged()
	}
}

// decodeNode converts one YAML policy entry to a Policy by way of its JSON
// document form, so rule envelopes decode through the rule registry.
func decodeNode(node *yaml.Node) (*policy.Policy, error) {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return nil, err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var p policy.Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// encodeNode is the inverse of decodeNode.
func encodeNode(p *policy.Policy) (*yaml.Node, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := node.Encode(raw); err != nil {
		return nil, err
	}
	return &node, nil
}
