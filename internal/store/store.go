// Package store persists normalized series as one JSON file per key.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"PriceLineup/internal/model"
)

// ErrInvalidKey is returned for keys that would escape the output directory.
var ErrInvalidKey = errors.New("invalid key")

// BulkKey is the key of a symbol saved by a sweep: "{category}_{symbol}".
func BulkKey(category, symbol string) string {
	return category + "_" + symbol
}

// SymbolKey is the key of a symbol saved interactively: "{symbol}".
func SymbolKey(symbol string) string {
	return symbol
}

// PrepareOutputLocation makes sure dir exists. With reset, any existing
// directory and its contents are removed first.
func PrepareOutputLocation(dir string, reset bool) error {
	if dir == "" {
		return fmt.Errorf("output location is required")
	}
	if reset {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("reset %s: %w", dir, err)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// JSONStore writes series under Dir as <key>.json.
type JSONStore struct {
	Dir string
}

// NewJSONStore creates a store rooted at dir. The directory must already exist.
func NewJSONStore(dir string) *JSONStore {
	return &JSONStore{Dir: dir}
}

// Path returns the file backing a key.
func (s *JSONStore) Path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

func validKey(key string) bool {
	return key != "" && key != "." && key != ".." &&
		!strings.ContainsAny(key, `/\`) && !strings.ContainsRune(key, 0)
}

// Save replaces the file for key with the series. The data is written to a
// temporary file in the same directory and renamed over the target, so a
// reader sees either the old file or the new one.
func (s *JSONStore) Save(key string, series model.Series) error {
	if !validKey(key) {
		return &model.IOError{Key: key, Op: "save", Err: ErrInvalidKey}
	}
	data, err := json.Marshal(series)
	if err != nil {
		return &model.IOError{Key: key, Op: "encode", Err: err}
	}
	if err := writeAtomic(s.Dir, s.Path(key), data); err != nil {
		return &model.IOError{Key: key, Op: "save", Err: err}
	}
	return nil
}

// Load reads the series stored under key.
func (s *JSONStore) Load(key string) (model.Series, error) {
	if !validKey(key) {
		return model.Series{}, &model.IOError{Key: key, Op: "load", Err: ErrInvalidKey}
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		return model.Series{}, &model.IOError{Key: key, Op: "load", Err: err}
	}
	var series model.Series
	if err := json.Unmarshal(data, &series); err != nil {
		return model.Series{}, &model.IOError{Key: key, Op: "decode", Err: err}
	}
	return series, nil
}

// Keys lists the stored keys in lexical order.
func (s *JSONStore) Keys() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, "*.json"))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(matches))
	for _, m := range matches {
		keys = append(keys, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	return keys, nil
}

func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".lineup-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	err = os.Rename(tmpName, path)
	return err
}
