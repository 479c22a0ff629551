// Package cache stores analysis reports as zstd-compressed JSON so repeat
// runs over an unchanged tree skip parsing.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/klauspost/compress/zstd"

	"github.com/phobologic/rsinspect/internal/discover"
	"github.com/phobologic/rsinspect/internal/model"
)

// entry is the on-disk layout.
type entry struct {
	Key    string        `json:"key"`
	Files  []string      `json:"files"`
	Report *model.Report `json:"report"`
}

// Key derives a cache key from everything that changes analysis output
// besides the sources themselves (tool version, effective configuration).
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Load returns the cached report when the cache at path is fresh: written
// with the same key, over the same file set, and newer than every file.
func Load(path, key string, files []discover.FileEntry) (*model.Report, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	cacheMtime := info.ModTime()
	for _, f := range files {
		if !f.ModTime.Before(cacheMtime) {
			return nil, false
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, false
	}
	defer dec.Close()
	data, err := dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil || e.Report == nil {
		return nil, false
	}
	if e.Key != key || !slices.Equal(e.Files, paths(files)) {
		return nil, false
	}
	return e.Report, true
}

// Save writes report to path, replacing any previous cache atomically.
func Save(path, key string, files []discover.FileEntry, report *model.Report) error {
	data, err := json.Marshal(entry{Key: key, Files: paths(files), Report: report})
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("creating encoder: %w", err)
	}
	compressed := enc.EncodeAll(data, nil)
	if err := enc.Close(); err != nil {
		return fmt.Errorf("closing encoder: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(compressed); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	return nil
}

func paths(files []discover.FileEntry) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Path
	}
	return out
}
