// Package footprint loads KiCad 4 footprint libraries: .pretty directories
// holding one (module ...) statement per .kicad_mod file.
package footprint

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/OpenTraceLab/OpenTraceKB/pkg/kicad/pcb"
)

// Extension is the file extension of a footprint file.
const Extension = ".kicad_mod"

// Library reads footprints from a directory and caches the parsed modules.
// It is safe for concurrent use; every returned module is a private copy.
type Library struct {
	dir    string
	logger *slog.Logger

	mu      sync.RWMutex
	modules map[string]*pcb.Module
}

// Open returns a library over dir. Pass nil for logger to disable logging.
func Open(dir string, logger *slog.Logger) (*Library, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("footprint: open library: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("footprint: %s is not a directory", dir)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Library{
		dir:     dir,
		logger:  logger.With(slog.String("library", filepath.Base(dir))),
		modules: make(map[string]*pcb.Module),
	}, nil
}

// Dir returns the library directory.
func (l *Library) Dir() string {
	return l.dir
}

// Names lists the footprints in the library, sorted, without extension.
func (l *Library) Names() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("footprint: list %s: %w", l.dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isFootprintFile(e.Name()) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

// Load returns a copy of the named footprint, parsing it on first use.
func (l *Library) Load(name string) (*pcb.Module, error) {
	l.mu.RLock()
	m, ok := l.modules[name]
	l.mu.RUnlock()
	if ok {
		l.logger.Debug("footprint cache hit", slog.String("name", name))
		return m.Clone(), nil
	}

	path := filepath.Join(l.dir, name+Extension)
	m, err := pcb.ParseModuleFile(path)
	if err != nil {
		l.logger.Warn("footprint failed to parse", slog.String("name", name), slog.Any("error", err))
		return nil, fmt.Errorf("footprint: load %s: %w", name, err)
	}
	l.logger.Debug("footprint loaded", slog.String("name", name), slog.Int("items", len(m.Items)))

	l.mu.Lock()
	if cached, ok := l.modules[name]; ok {
		m = cached
	} else {
		l.modules[name] = m
	}
	l.mu.Unlock()
	return m.Clone(), nil
}

// LoadAll parses every footprint in the library, stopping at the first
// error or when ctx is cancelled.
func (l *Library) LoadAll(ctx context.Context) (map[string]*pcb.Module, error) {
	names, err := l.Names()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*pcb.Module, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, err := l.Load(name)
		if err != nil {
			return nil, err
		}
		out[name] = m
	}
	l.logger.Info("footprint library loaded", slog.Int("count", len(out)))
	return out, nil
}

// Cached reports how many footprints have been parsed so far.
func (l *Library) Cached() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.modules)
}

// Find walks root and returns the .pretty library directories below it.
func Find(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pretty") {
			dirs = append(dirs, path)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("footprint: find libraries: %w", err)
	}
	return dirs, nil
}

func isFootprintFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}
