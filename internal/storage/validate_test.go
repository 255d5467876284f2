package storage

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	jpegHeader = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	gifHeader  = []byte("GIF89a\x01\x00\x01\x00")
	exeHeader  = []byte{'M', 'Z', 0x90, 0x00, 0x03, 0x00, 0x00, 0x00, 0x04, 0x00}
)

func newTestValidator(maxSize int64) *Validator {
	return NewValidator(maxSize,
		[]string{"image/jpeg", "image/png", "image/gif"},
		[]string{"jpg", "jpeg", "png", "gif"},
	)
}

func TestValidate_AcceptsGenuineImages(t *testing.T) {
	v := newTestValidator(1 << 20)

	require.NoError(t, v.Validate("sunset.png", pngHeader))
	require.NoError(t, v.Validate("sunset.jpg", jpegHeader))
	require.NoError(t, v.Validate("SUNSET.JPEG", jpegHeader))
	require.NoError(t, v.Validate("loop.gif", gifHeader))
}

func TestValidate_RejectsOversizedFirst(t *testing.T) {
	v := newTestValidator(16)

	// Oversized AND wrong type: the size check runs first and wins.
	big := bytes.Repeat([]byte{0x00}, 64)
	err := v.Validate("huge.bin", big)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "exceeds maximum allowed size")
}

func TestValidate_RejectsSpoofedContentType(t *testing.T) {
	v := newTestValidator(1 << 20)

	// Executable bytes behind an allowed extension must still fail.
	err := v.Validate("innocent.jpg", exeHeader)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "invalid file type")

	// Plain text with an image extension fails the same way.
	err = v.Validate("notes.png", []byte("just some text"))
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "invalid file type")
}

func TestValidate_RejectsDisallowedExtension(t *testing.T) {
	v := newTestValidator(1 << 20)

	// Genuine PNG bytes but an extension outside the allowed set.
	err := v.Validate("sunset.webp", pngHeader)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "invalid file extension")

	err = v.Validate("noextension", pngHeader)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestValidate_ReportsOffendingValue(t *testing.T) {
	v := newTestValidator(1 << 20)

	err := v.Validate("cat.bmp", pngHeader)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "bmp"))
}

func TestKindOf_NonStorageError(t *testing.T) {
	assert.Equal(t, KindTransient, KindOf(assert.AnError))
	assert.Equal(t, KindValidation, KindOf(NewValidationError("bad")))
	assert.False(t, IsValidation(assert.AnError))
}
