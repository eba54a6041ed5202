package theme

import (
	"testing"

	tint "github.com/lrstanley/bubbletint/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaletteFromTint(t *testing.T) {
	src := &tint.Tint{
		ID:          "Sample_Theme",
		DisplayName: " Sample Theme ",
		Fg:          tint.FromHex("#e6e9ef"),
		Bg:          tint.FromHex("#14161e"),
		BrightBlack: tint.FromHex("#7c8298"),
		Cyan:        tint.FromHex("#4cc2ff"),
		Green:       tint.FromHex("#50c878"),
		Yellow:      tint.FromHex("#e8b339"),
		Red:         tint.FromHex("#e05c5c"),
		BrightWhite: tint.FromHex("#f8f8f8"),
	}

	p := paletteFromTint(src)
	assert.Equal(t, "sample_theme", p.Name)
	assert.Equal(t, "Sample Theme", p.DisplayName)
	assert.Equal(t, "#4CC2FF", p.Color(ColorAccent).Dark)
	assert.Equal(t, "#E05C5C", p.Color(ColorDanger).Light)
}

func TestPaletteFromTintToleratesMissingSlots(t *testing.T) {
	// Many registry tints leave color slots unset; those fall back to the
	// default palette at lookup time.
	p := paletteFromTint(&tint.Tint{ID: "sparse", Fg: tint.FromHex("#ffffff")})
	require.Equal(t, "sparse", p.Name)

	c := p.Color(ColorAccent)
	assert.NotEmpty(t, c.Light)
	assert.NotEmpty(t, c.Dark)

	require.Equal(t, Palette{}, paletteFromTint(nil))
}

func TestRegistrySeedsFromDefaultTints(t *testing.T) {
	names := Available()
	require.Contains(t, names, DefaultName)
	require.Contains(t, names, "guard-light")
	assert.Greater(t, len(names), 2, "bubbletint registry tints are registered alongside the built-ins")
}

func TestSetCurrentRejectsUnknownTheme(t *testing.T) {
	require.Error(t, SetCurrent("no-such-theme"))
	require.NoError(t, SetCurrent(DefaultName))
	assert.Equal(t, DefaultName, CurrentName())
}
