package sniff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetect_KnownSignatures(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want Type
	}{
		{"pdf", []byte("%PDF-1.7 rest of document"), TypePDF},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0x00, 0x00}, TypePNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00}, TypeJPEG},
		{"gif87a", []byte("GIF87a......"), TypeGIF},
		{"gif89a", []byte("GIF89a......"), TypeGIF},
		{"tiff little endian", []byte{'I', 'I', 0x2A, 0x00, 0x08}, TypeTIFF},
		{"tiff big endian", []byte{'M', 'M', 0x00, 0x2A, 0x08}, TypeTIFF},
		{"zip", []byte{'P', 'K', 0x03, 0x04, 0x14}, TypeZIP},
		{"plain text", []byte("hello world"), TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.buf))
		})
	}
}

func TestDetect_ShortBuffersNeverMatch(t *testing.T) {
	// Truncated prefixes of real signatures must not match and must not read
	// out of bounds.
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"zero length", []byte{}},
		{"one byte of pdf", []byte("%")},
		{"partial png", []byte{0x89, 'P', 'N'}},
		{"partial zip", []byte{'P', 'K'}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, TypeUnknown, Detect(tt.buf))
		})
	}
}

func TestDetect_IgnoresDeclaredType(t *testing.T) {
	// Detection only looks at bytes; a PDF body is a PDF no matter what the
	// client claims elsewhere.
	assert.Equal(t, TypePDF, Detect([]byte("%PDF-1.4")))
}

func TestFromDeclared(t *testing.T) {
	assert.Equal(t, TypePDF, FromDeclared("application/pdf"))
	assert.Equal(t, TypeZIP, FromDeclared("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.Equal(t, TypeUnknown, FromDeclared("text/html"))
	assert.Equal(t, TypeUnknown, FromDeclared(""))
}
