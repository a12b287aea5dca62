package logoasset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptionsMatchesBootSplashDimensions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, 320, opts.Width)
	assert.Equal(t, 200, opts.Height)
	assert.Equal(t, "petos", opts.Title)
	assert.NotEmpty(t, opts.Subtitle)
}

func TestRenderProducesAnImageOfTheRequestedSize(t *testing.T) {
	opts := DefaultOptions()

	img := Render(opts)
	require.NotNil(t, img)

	bounds := img.Bounds()
	assert.Equal(t, opts.Width, bounds.Dx())
	assert.Equal(t, opts.Height, bounds.Dy())
}

func TestRenderHonorsCustomDimensions(t *testing.T) {
	opts := Options{Width: 64, Height: 32, Title: "x", Subtitle: "y"}

	img := Render(opts)

	bounds := img.Bounds()
	assert.Equal(t, 64, bounds.Dx())
	assert.Equal(t, 32, bounds.Dy())
}
