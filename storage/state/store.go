// Package state persists the handful of client-side flags the front end would
// keep in browser local storage (pending enrollment, onboarding seen).
package state

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"sync"

	"github.com/Tomtimmy/learnspace/core"
	"github.com/Tomtimmy/learnspace/core/session"
)

// FileStore is a JSON-file-backed key/value store. Writes persist best-effort:
// like browser local storage, callers get no transient failures to handle.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	log    core.Logger
}

var _ session.StateStore = (*FileStore)(nil)

func NewFileStore(path string, log core.Logger) (*FileStore, error) {
	s := &FileStore{
		path:   path,
		values: make(map[string]string),
		log:    log,
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &s.values); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *FileStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.persist()
}

func (s *FileStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	s.persist()
}

// persist is called with s.mu held.
func (s *FileStore) persist() {
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err == nil {
		err = ioutil.WriteFile(s.path, data, 0644)
	}
	if err != nil && s.log != nil {
		s.log.Warn("persisting client state: " + err.Error())
	}
}

// MemStore is an in-memory StateStore for tests.
type MemStore struct {
	mu     sync.Mutex
	values map[string]string
}

var _ session.StateStore = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *MemStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *MemStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
