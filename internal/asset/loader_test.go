package asset

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestLoadDataURI(t *testing.T) {
	l := NewLoader("")
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(encodePNG(t, 6, 4))

	img, err := l.Load(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 6, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
}

func TestLoadDataURIMalformed(t *testing.T) {
	l := NewLoader("")
	cases := []string{
		"data:image/png;base64",
		"data:image/png;base64,%%%%",
		"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("junk")),
	}
	for _, src := range cases {
		_, err := l.Load(context.Background(), src)
		assert.Error(t, err, "src %q", src)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pic.png"), encodePNG(t, 3, 3), 0o644))

	l := NewLoader(dir)
	for _, src := range []string{"pic.png", "/assets/pic.png"} {
		img, err := l.Load(context.Background(), src)
		require.NoError(t, err, "src %q", src)
		assert.Equal(t, 3, img.Bounds().Dx())
	}
}

func TestLoadFileMissing(t *testing.T) {
	l := NewLoader(t.TempDir())
	_, err := l.Load(context.Background(), "nope.png")
	assert.Error(t, err)
}

func TestLoadFileNoDirConfigured(t *testing.T) {
	l := NewLoader("")
	_, err := l.Load(context.Background(), "pic.png")
	assert.Error(t, err)
}

func TestLoadFileTraversalBlocked(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(parent, "outside.png"), encodePNG(t, 2, 2), 0o644))
	assets := filepath.Join(parent, "assets")
	require.NoError(t, os.MkdirAll(assets, 0o755))

	l := NewLoader(assets)
	_, err := l.Load(context.Background(), "../outside.png")
	assert.Error(t, err, "dot segments must not escape the asset dir")
}

func TestLoadHTTP(t *testing.T) {
	data := encodePNG(t, 5, 5)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer srv.Close()

	l := NewLoader("")
	img, err := l.Load(context.Background(), srv.URL+"/img.png")
	require.NoError(t, err)
	assert.Equal(t, 5, img.Bounds().Dx())

	_, err = l.Load(context.Background(), srv.URL+"/absent.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoadHTTPCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := NewLoader("")
	_, err := l.Load(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadHTTPTooLarge(t *testing.T) {
	chunk := make([]byte, 1<<20)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 11; i++ {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	l := NewLoader("")
	_, err := l.Load(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrTooLarge)
}
