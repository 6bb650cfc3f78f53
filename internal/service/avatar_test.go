package service

import (
	"bytes"
	"image/jpeg"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAvatar_DownscalesLargeImage(t *testing.T) {
	out, err := normalizeAvatar(bytes.NewReader(testPNG(t, 1024, 600)), avatarMaxEdge)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, 512, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestNormalizeAvatar_DownscalesTallImage(t *testing.T) {
	out, err := normalizeAvatar(bytes.NewReader(testPNG(t, 200, 800)), avatarMaxEdge)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 512, img.Bounds().Dy())
}

func TestNormalizeAvatar_KeepsSmallImage(t *testing.T) {
	out, err := normalizeAvatar(bytes.NewReader(testPNG(t, 100, 80)), avatarMaxEdge)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())
}

func TestNormalizeAvatar_RejectsGarbage(t *testing.T) {
	_, err := normalizeAvatar(strings.NewReader("not an image at all"), avatarMaxEdge)
	assert.Error(t, err)
}
