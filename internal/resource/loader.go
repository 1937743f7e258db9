package resource

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/catalogbuilder/internal/diagnostics"
	"git.home.luguber.info/inful/catalogbuilder/internal/logfields"
)

// Index maps page keys to descriptors in discovery order.
type Index struct {
	keys  []string
	byKey map[string][]*Descriptor
	total int
}

func newIndex() *Index {
	return &Index{byKey: map[string][]*Descriptor{}}
}

func (ix *Index) add(d *Descriptor) {
	key := d.Key()
	if _, seen := ix.byKey[key]; !seen {
		ix.keys = append(ix.keys, key)
	}
	ix.byKey[key] = append(ix.byKey[key], d)
	ix.total++
}

// Lookup returns the descriptors attached to key, in discovery order.
func (ix *Index) Lookup(key string) []*Descriptor {
	if ix == nil || key == "" {
		return nil
	}
	return ix.byKey[key]
}

// Keys returns the page keys in the order they were first seen.
func (ix *Index) Keys() []string {
	if ix == nil {
		return nil
	}
	return append([]string(nil), ix.keys...)
}

// Len returns the number of indexed descriptors.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.total
}

// IsDescriptorFile reports whether name has a descriptor extension.
func IsDescriptorFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

// Load walks dir recursively in lexical order and indexes every descriptor.
//
// Unparseable files and descriptors without a page key are skipped with a
// diagnostic. A missing directory yields an empty index.
func Load(dir string, diags *diagnostics.Collector) (*Index, error) {
	ix := newIndex()
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			slog.Info("Resource directory not found; no resources loaded", logfields.Path(dir))
			return ix, nil
		}
		return nil, fmt.Errorf("stat resource directory: %w", err)
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			diags.Add(diagnostics.KindDescriptorParse, path, "cannot read: %v", walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !IsDescriptorFile(d.Name()) {
			return nil
		}
		desc, err := ParseFile(path)
		if err != nil {
			diags.Add(diagnostics.KindDescriptorParse, path, "skipping unparseable descriptor: %v", err)
			return nil
		}
		if desc.Key() == "" {
			diags.Add(diagnostics.KindDescriptorNoKey, path, "descriptor has neither topic_page_id nor topic; skipping")
			return nil
		}
		ix.add(desc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk resource directory: %w", err)
	}
	slog.Debug("Loaded resources", logfields.Path(dir), logfields.Count(ix.Len()))
	return ix, nil
}

// ParseFile reads and normalizes one descriptor file.
func ParseFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(path, stem, data)
}

// Parse normalizes descriptor YAML. An empty document yields a descriptor with
// only the stem-derived title.
func Parse(path, stem string, data []byte) (*Descriptor, error) {
	var raw rawDescriptor
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}
	return raw.migrate(path, stem), nil
}
