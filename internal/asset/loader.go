package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const maxImageBytes = 10 << 20 // 10MB per scene image

// ErrTooLarge is returned when a scene image exceeds the per-image size cap.
var ErrTooLarge = errors.New("image exceeds 10MB limit")

// Loader fetches and decodes the bitmaps a scene references. A src may be a
// data: URI, an http(s) URL, or a path resolved inside the asset directory
// ("/assets/x.png" or a bare file name). Loader is stateless and safe for
// concurrent use; remote fetches honor ctx and carry no timeout of their
// own, so the caller decides how long a render may wait.
type Loader struct {
	dir    string
	client *http.Client
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir, client: &http.Client{}}
}

// Load resolves src to a decoded image.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetch(ctx, src)
	default:
		return l.readFile(src)
	}
}

func decodeDataURI(src string) (image.Image, error) {
	meta, payload, ok := strings.Cut(src[len("data:"):], ",")
	if !ok {
		return nil, errors.New("malformed data uri")
	}

	var raw []byte
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode base64 payload: %w", err)
		}
		raw = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("unescape payload: %w", err)
		}
		raw = []byte(unescaped)
	}

	if len(raw) > maxImageBytes {
		return nil, ErrTooLarge
	}
	return decode(bytes.NewReader(raw))
}

func (l *Loader) fetch(ctx context.Context, src string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch image: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, ErrTooLarge
	}
	return decode(bytes.NewReader(data))
}

func (l *Loader) readFile(src string) (image.Image, error) {
	if l.dir == "" {
		return nil, errors.New("no asset directory configured")
	}

	// Resolve inside the asset directory only; "/assets/x" and "x" both map
	// to dir/x, and ".." segments cannot escape it.
	name := strings.TrimPrefix(src, "/assets/")
	name = filepath.Clean("/" + name)[1:]
	path := filepath.Join(l.dir, name)

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open asset: %w", err)
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil && st.Size() > maxImageBytes {
		return nil, ErrTooLarge
	}
	return decode(f)
}

func decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}
