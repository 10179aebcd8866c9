package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/msojda/repository/internal/logging"
)

var logger = logging.GetLogger().WithPrefix("store")

// document is the on-disk shape of a JSONStore.
type document struct {
	// Mappings holds virtual_path -> encoded target stack.
	Mappings map[string][]string `json:"mappings"`
	Version  int                 `json:"version"`
}

// JSONStore is a KeyValueStore persisted as a single indented JSON document,
// with timestamped backups retained on every write. Grounded on the
// teacher's internal/state.Manager: load-or-create on first use, write then
// verify, backup-then-write, prune old backups beyond a retained count.
type JSONStore struct {
	path        string
	backupDir   string
	backupCount int

	mu      sync.RWMutex
	data    map[string][]string
	lastErr error
}

// Open loads an existing JSON document at path, or creates a new empty one
// if none exists. The parent directory and a sibling backup directory are
// created if necessary.
func Open(path string) (*JSONStore, error) {
	logger.Debug("opening store at %s", path)

	absPath := path
	if !filepath.IsAbs(absPath) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve store path: %w", err)
		}
		absPath = filepath.Join(cwd, path)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", dir, err)
	}

	backupDir := filepath.Join(dir, ".vrepo-backups")
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory %s: %w", backupDir, err)
	}

	s := &JSONStore{
		path:        absPath,
		backupDir:   backupDir,
		backupCount: 5,
		data:        make(map[string][]string),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *JSONStore) load() error {
	info, err := os.Stat(s.path)
	if err != nil || info.Size() == 0 {
		if os.IsNotExist(err) || (err == nil && info.Size() == 0) {
			logger.Info("no existing store document, starting empty")
			s.data["/"] = []string{}
			return s.saveLocked()
		}
		return fmt.Errorf("stat store document: %w", err)
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read store document: %w", err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse store document: %w", err)
	}

	if doc.Mappings == nil {
		doc.Mappings = make(map[string][]string)
	}
	if _, ok := doc.Mappings["/"]; !ok {
		doc.Mappings["/"] = []string{}
	}

	s.data = doc.Mappings
	logger.Info("loaded store document with %d keys", len(s.data))
	return nil
}

func (s *JSONStore) saveLocked() error {
	if err := s.createBackup(); err != nil {
		logger.Warn("failed to create backup: %v", err)
	}

	doc := document{Mappings: s.data, Version: 1}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store document: %w", err)
	}

	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write store document: %w", err)
	}

	written, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("verify store document write: %w", err)
	}
	if len(written) == 0 {
		return fmt.Errorf("store document empty after write")
	}

	return nil
}

func (s *JSONStore) createBackup() error {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("store-%s.json", time.Now().Format("20060102-150405.000000"))
	backupPath := filepath.Join(s.backupDir, name)

	if err := os.WriteFile(backupPath, raw, 0o600); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}

	return s.pruneBackups()
}

func (s *JSONStore) pruneBackups() error {
	entries, err := os.ReadDir(s.backupDir)
	if err != nil {
		return err
	}

	type backup struct {
		path    string
		modTime time.Time
	}

	backups := make([]backup, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{path: filepath.Join(s.backupDir, e.Name()), modTime: info.ModTime()})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].modTime.After(backups[j].modTime)
	})

	for i := s.backupCount; i < len(backups); i++ {
		if err := os.Remove(backups[i].path); err != nil {
			return fmt.Errorf("remove old backup %s: %w", backups[i].path, err)
		}
	}

	return nil
}

func (s *JSONStore) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

func (s *JSONStore) Get(key string) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false
	}
	cp := make([]string, len(v))
	copy(cp, v)
	return cp, true
}

// Set installs value at key and persists the document. Persistence
// failures are logged rather than surfaced, since the KeyValueStore
// contract gives Set no error return; use LastError to inspect them.
func (s *JSONStore) Set(key string, value []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]string, len(value))
	copy(cp, value)
	s.data[key] = cp

	if err := s.saveLocked(); err != nil {
		logger.Error("failed to persist store after set %q: %v", key, err)
		s.lastErr = err
	} else {
		s.lastErr = nil
	}
}

// Remove deletes key and persists the document, reporting whether the key
// was present.
func (s *JSONStore) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.data[key]
	delete(s.data, key)

	if err := s.saveLocked(); err != nil {
		logger.Error("failed to persist store after remove %q: %v", key, err)
		s.lastErr = err
	} else {
		s.lastErr = nil
	}

	return existed
}

// LastError returns the error from the most recent Set or Remove's
// persistence attempt, or nil if it succeeded.
func (s *JSONStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

func (s *JSONStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys
}
