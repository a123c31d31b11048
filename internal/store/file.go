package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File keeps all options in one JSON object on disk. Keys it does not know about
// are preserved on every write.
type File struct {
	mu   sync.Mutex
	path string
}

// OpenFile opens (without creating) a JSON options file.
func OpenFile(path string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("options file path is empty")
	}
	return &File{path: path}, nil
}

// Path returns the options file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) load() (map[string]json.RawMessage, error) {
	options := make(map[string]json.RawMessage)

	// Check if file exists
	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		return options, nil
	}

	data, err := os.ReadFile(f.path) // #nosec G304 - controlled options path
	if err != nil {
		return nil, fmt.Errorf("failed to read options file: %w", err)
	}
	if len(data) == 0 {
		return options, nil
	}
	if err := json.Unmarshal(data, &options); err != nil {
		return nil, fmt.Errorf("failed to parse options JSON: %w", err)
	}
	// a literal null document decodes to a nil map
	if options == nil {
		options = make(map[string]json.RawMessage)
	}
	return options, nil
}

func (f *File) save(options map[string]json.RawMessage) error {
	// Ensure directory exists
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(options, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal options: %w", err)
	}

	// Write to a sibling file and rename so readers never see a partial document.
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write options file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write options file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to set options file mode: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("failed to replace options file: %w", err)
	}
	return nil
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	options, err := f.load()
	if err != nil {
		return nil, err
	}
	v, ok := options[key]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	options, err := f.load()
	if err != nil {
		return err
	}
	options[key] = append(json.RawMessage(nil), value...)
	return f.save(options)
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	options, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := options[key]; !ok {
		return nil
	}
	delete(options, key)
	return f.save(options)
}

func (f *File) Close() error { return nil }
