package output

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// Store persists rendered PNGs in a flat directory and serves them back.
// File names derive from the render ID, which is unique per render, so a
// stored file never changes after it is written.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the PNG under the render ID and returns its public URL path.
func (s *Store) Save(renderID string, data []byte) (string, error) {
	filename := renderID + ".png"
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write render file: %w", err)
	}
	return "/renders/" + filename, nil
}

// Serve returns an http.Handler for GET /renders/{file}. Outputs are
// immutable once written, so clients may cache them forever.
func (s *Store) Serve() http.Handler {
	fs := http.FileServer(http.Dir(s.dir))
	return http.StripPrefix("/renders/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		fs.ServeHTTP(w, r)
	}))
}
