package fonts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gg/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

func TestBoldWeight(t *testing.T) {
	cases := []struct {
		weight string
		want   bool
	}{
		{"bold", true},
		{"Bold", true},
		{"bolder", true},
		{"700", true},
		{"600", true},
		{" 800 ", true},
		{"599", false},
		{"400", false},
		{"normal", false},
		{"lighter", false},
		{"", false},
		{"heavy", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, boldWeight(tc.weight), "weight %q", tc.weight)
	}
}

func TestSplitFontName(t *testing.T) {
	cases := []struct {
		name       string
		wantFamily string
		wantBold   bool
	}{
		{"DejaVu Sans Bold", "dejavu sans", true},
		{"DejaVu Sans", "dejavu sans", false},
		{"Go", "go", false},
		{"Inter Regular", "inter", false},
		{"Roboto Bold Italic", "roboto", true},
		{"  Noto  Sans  ", "noto sans", false},
	}
	for _, tc := range cases {
		family, bold := splitFontName(tc.name)
		assert.Equal(t, tc.wantFamily, family, "name %q", tc.name)
		assert.Equal(t, tc.wantBold, bold, "name %q", tc.name)
	}
}

func TestFaceLookup(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	custom, err := text.NewFontSource(goregular.TTF)
	require.NoError(t, err)
	reg.RegisterFamily("Inter", false, custom)

	face := reg.Face("Inter", "normal", 16)
	require.Same(t, custom, face.Source())
	assert.Equal(t, 16.0, face.Size())

	// Lookup is case and whitespace insensitive.
	require.Same(t, custom, reg.Face("  INTER ", "400", 12).Source())

	// A bold request against a family with only a regular face stays in
	// family rather than falling back.
	require.Same(t, custom, reg.Face("Inter", "bold", 16).Source())

	boldSrc, err := text.NewFontSource(gobold.TTF)
	require.NoError(t, err)
	reg.RegisterFamily("Inter", true, boldSrc)

	require.Same(t, boldSrc, reg.Face("Inter", "700", 16).Source())
	require.Same(t, custom, reg.Face("Inter", "normal", 16).Source())
}

func TestFaceFallsBackToEmbedded(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	normal := reg.Face("No Such Family", "normal", 14)
	require.Same(t, reg.fallbackRegular, normal.Source())

	bold := reg.Face("No Such Family", "bold", 14)
	require.Same(t, reg.fallbackBold, bold.Source())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.ttf"), goregular.TTF, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbage.ttf"), []byte("not a font"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("ignored"), 0o644))

	reg, err := NewRegistry()
	require.NoError(t, err)
	require.NoError(t, reg.LoadDir(dir), "unparseable files are skipped, not fatal")

	// The valid file registered under its reported family, served by a
	// source distinct from the embedded fallback.
	probe, err := text.NewFontSource(goregular.TTF)
	require.NoError(t, err)
	family, _ := splitFontName(probe.Name())

	face := reg.Face(family, "normal", 16)
	assert.NotSame(t, reg.fallbackRegular, face.Source())
}

func TestLoadDirMissing(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)
	assert.Error(t, reg.LoadDir(filepath.Join(t.TempDir(), "absent")))
}
