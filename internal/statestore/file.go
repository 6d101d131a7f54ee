package statestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/orbital-sentinel/sentinel/internal/errors"
	"github.com/orbital-sentinel/sentinel/internal/logger"
)

// FileStore persists the write-state mapping as one JSON object on disk.
// Saves are atomic (temp file, fsync, rename) so a crash mid-save leaves the
// previous file intact. A missing or corrupt file loads as empty state: the
// on-chain duplicate check makes re-publishing safe, halting the cycle is not.
type FileStore struct {
	path string
	log  logger.Logger
}

// NewFileStore builds a FileStore for the given path.
func NewFileStore(path string, log logger.Logger) *FileStore {
	if log == nil {
		log = logger.NewNop()
	}
	return &FileStore{path: path, log: log}
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string { return s.path }

// Load reads the write-state file. Absence is a normal first run; corrupt
// content degrades to empty state with a warning. Only an unreadable file
// (permissions, I/O) is an error, which the orchestrator treats as fatal at
// startup.
func (s *FileStore) Load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.WithField("path", s.path).Debug("no write-state file, starting empty")
			return make(map[string]string), nil
		}
		return nil, errors.StateStoreError("load", s.path, err)
	}

	state := make(map[string]string)
	if err := json.Unmarshal(data, &state); err != nil {
		s.log.WithFields(map[string]interface{}{
			"path":  s.path,
			"error": err.Error(),
		}).Warn("write-state file is corrupt, starting empty")
		return make(map[string]string), nil
	}
	return state, nil
}

// Save writes the whole mapping atomically. The temp file lives in the
// target directory so the rename never crosses filesystems.
func (s *FileStore) Save(state map[string]string) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.StateStoreError("save", s.path, err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.StateStoreError("save", s.path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp.*")
	if err != nil {
		return errors.StateStoreError("save", s.path, err)
	}
	tmpName := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		os.Remove(tmpName)
		return errors.StateStoreError("save", s.path, err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.StateStoreError("save", s.path, err)
	}
	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	return f.Close()
}
