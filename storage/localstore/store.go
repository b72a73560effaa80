// Package localstore persists small entity lists in a local JSON file, one array per key.
// Every mutation reads the whole file, changes one key and writes it back.
package localstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// Keys
const (
	BusesKey   = "buses"
	ClassesKey = "classes"
)

type Store struct {
	mu   sync.Mutex
	path string
}

// Open uses the file at path, which is created on first write.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating local storage directory")
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string { return s.path }

// load must be called with mu held. A missing file is an empty store.
func (s *Store) load() (map[string]json.RawMessage, error) {
	data := make(map[string]json.RawMessage)
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, errors.Wrap(err, "reading local storage")
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err = json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrap(err, "decoding local storage")
	}
	return data, nil
}

// save must be called with mu held.
func (s *Store) save(data map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding local storage")
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing local storage")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "writing local storage")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "replacing local storage")
}

func read[T any](s *Store, key string) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return nil, err
	}
	return decode[T](data, key)
}

func decode[T any](data map[string]json.RawMessage, key string) ([]T, error) {
	items := make([]T, 0)
	raw, ok := data[key]
	if !ok || string(raw) == "null" {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrapf(err, "decoding %q", key)
	}
	return items, nil
}

// update replaces the list stored under key with what fn returns. Nothing is written when fn fails.
func update[T any](s *Store, key string, fn func([]T) ([]T, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	items, err := decode[T](data, key)
	if err != nil {
		return err
	}
	if items, err = fn(items); err != nil {
		return err
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return errors.Wrapf(err, "encoding %q", key)
	}
	data[key] = raw
	return s.save(data)
}
