package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileEntry struct {
	Value     string     `json:"value"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// FileKV keeps all keys in one JSON document on disk, the terminal client's
// equivalent of the browser's local storage.  Writes go through a temp file
// and a rename so a crash never leaves a truncated document.
type FileKV struct {
	Path string
	Now  func() time.Time

	mu sync.Mutex
}

func NewFileKV(path string) *FileKV { return &FileKV{Path: path, Now: time.Now} }

func (f *FileKV) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

func (f *FileKV) load() (map[string]fileEntry, error) {
	data := map[string]fileEntry{}
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, unavailable("file read", err)
	}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, unavailable("file decode", err)
	}
	return data, nil
}

func (f *FileKV) store(data map[string]fileEntry) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return unavailable("file encode", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return unavailable("file mkdir", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".kv-*")
	if err != nil {
		return unavailable("file write", err)
	}
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return unavailable("file write", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return unavailable("file write", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		os.Remove(tmp.Name())
		return unavailable("file rename", err)
	}
	return nil
}

func (f *FileKV) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return "", err
	}
	e, ok := data[key]
	if !ok {
		return "", ErrNotFound
	}
	if e.ExpiresAt != nil && !f.now().Before(*e.ExpiresAt) {
		return "", ErrNotFound
	}
	return e.Value, nil
}

func (f *FileKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	e := fileEntry{Value: value}
	if ttl > 0 {
		exp := f.now().Add(ttl).UTC()
		e.ExpiresAt = &exp
	}
	data[key] = e
	return f.store(data)
}

func (f *FileKV) SetNX(_ context.Context, key, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return false, err
	}
	if e, ok := data[key]; ok && (e.ExpiresAt == nil || f.now().Before(*e.ExpiresAt)) {
		return false, nil
	}
	data[key] = fileEntry{Value: value}
	return true, f.store(data)
}

func (f *FileKV) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := f.load()
	if err != nil {
		return err
	}
	changed := false
	for _, k := range keys {
		if _, ok := data[k]; ok {
			delete(data, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return f.store(data)
}
