package fonts

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Registry maps scene font families and weights to loaded font sources.
// The embedded Go fonts are the fallback for any family the registry does
// not know, so face lookup never fails. Safe for concurrent use; sources
// are heavyweight and shared, faces are cheap per-call values.
type Registry struct {
	mu      sync.RWMutex
	regular map[string]*text.FontSource
	bold    map[string]*text.FontSource

	fallbackRegular *text.FontSource
	fallbackBold    *text.FontSource
}

// NewRegistry builds a registry backed by the embedded Go fonts.
func NewRegistry() (*Registry, error) {
	reg, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded regular font: %w", err)
	}
	bold, err := text.NewFontSource(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded bold font: %w", err)
	}
	return &Registry{
		regular:         make(map[string]*text.FontSource),
		bold:            make(map[string]*text.FontSource),
		fallbackRegular: reg,
		fallbackBold:    bold,
	}, nil
}

// LoadDir registers every TTF/OTF file under dir. Files that fail to parse
// are skipped with a warning; the directory being unreadable is an error.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read font dir: %w", err)
	}

	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}

		src, err := text.NewFontSourceFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			slog.Warn("skip unparseable font file", "file", entry.Name(), "error", err)
			continue
		}
		r.Register(src)
		loaded++
	}

	slog.Info("fonts loaded", "dir", dir, "count", loaded)
	return nil
}

// Register adds a font source under the family derived from its name.
// A name containing "bold" registers the bold face for that family.
func (r *Registry) Register(src *text.FontSource) {
	family, bold := splitFontName(src.Name())
	r.RegisterFamily(family, bold, src)
}

// RegisterFamily adds a font source under an explicit family and weight.
func (r *Registry) RegisterFamily(family string, bold bool, src *text.FontSource) {
	key := normalizeFamily(family)

	r.mu.Lock()
	defer r.mu.Unlock()
	if bold {
		r.bold[key] = src
	} else {
		r.regular[key] = src
	}
}

// Face returns a face for the requested family, weight, and size. Unknown
// families fall back to the embedded Go fonts; a family registered without
// a bold face serves its regular face for bold requests.
func (r *Registry) Face(family, weight string, size float64) text.Face {
	key := normalizeFamily(family)
	wantBold := boldWeight(weight)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if wantBold {
		if src, ok := r.bold[key]; ok {
			return src.Face(size)
		}
		if src, ok := r.regular[key]; ok {
			return src.Face(size)
		}
		return r.fallbackBold.Face(size)
	}

	if src, ok := r.regular[key]; ok {
		return src.Face(size)
	}
	return r.fallbackRegular.Face(size)
}

// boldWeight reports whether a CSS-style font weight selects a bold face:
// the "bold"/"bolder" keywords or a numeric weight of 600 and up.
func boldWeight(weight string) bool {
	w := strings.ToLower(strings.TrimSpace(weight))
	if w == "bold" || w == "bolder" {
		return true
	}
	if n, err := strconv.Atoi(w); err == nil {
		return n >= 600
	}
	return false
}

// splitFontName derives the registry family key from a font's full name,
// e.g. "DejaVu Sans Bold" registers family "dejavu sans" as bold.
func splitFontName(name string) (family string, bold bool) {
	lower := strings.ToLower(name)
	bold = strings.Contains(lower, "bold")
	for _, style := range []string{"bold", "italic", "oblique", "regular"} {
		lower = strings.ReplaceAll(lower, style, "")
	}
	family = strings.Join(strings.Fields(lower), " ")
	if family == "" {
		family = normalizeFamily(name)
	}
	return family, bold
}

func normalizeFamily(family string) string {
	return strings.Join(strings.Fields(strings.ToLower(family)), " ")
}
