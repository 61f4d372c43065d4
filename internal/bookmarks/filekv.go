package bookmarks

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileKV is a KV backed by a single JSON file, reread on every access so
// the file stays the source of truth across processes.
type FileKV struct {
	path string
}

// NewFileKV creates a file-backed KV at path. The file is created on first
// write.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

func (f *FileKV) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	m := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.path, err)
		}
	}
	return m, nil
}

// Get returns the value for key and whether it was present.
func (f *FileKV) Get(key string) (string, bool, error) {
	m, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

// Set writes key=value, creating parent directories as needed. The write
// goes through a temp file and rename so a crash never truncates the store.
func (f *FileKV) Set(key, value string) error {
	m, err := f.read()
	if err != nil {
		return err
	}
	m[key] = value

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", f.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(f.path), err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
