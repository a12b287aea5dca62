package bootimg

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBuildsTheStandardFixtureLayout(t *testing.T) {
	img, err := New()
	require.Nil(t, err)
	require.NotNil(t, img)

	assert.Equal(t, SectorSize, img.SuperBlock.BlockSize)
}

func TestNewEmbedsADecodablePNGSplash(t *testing.T) {
	img, err := New()
	require.Nil(t, err)

	data, rerr := img.ReadFile("/boot/splash.png")
	require.Nil(t, rerr)
	require.NotEmpty(t, data)

	decoded, derr := png.Decode(bytes.NewReader(data))
	require.NoError(t, derr)
	assert.Equal(t, 320, decoded.Bounds().Dx())
	assert.Equal(t, 200, decoded.Bounds().Dy())
}

func TestReadFileRejectsMissingPath(t *testing.T) {
	img, err := New()
	require.Nil(t, err)

	_, rerr := img.ReadFile("/nope")
	assert.NotNil(t, rerr)
}

func TestDataDirectoryExistsAndIsEmpty(t *testing.T) {
	img, err := New()
	require.Nil(t, err)

	node, lerr := img.SuperBlock.Lookup("/data")
	require.Nil(t, lerr)

	names, lsErr := img.SuperBlock.List(node)
	require.Nil(t, lsErr)
	assert.Empty(t, names)
}
