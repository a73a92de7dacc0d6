// Package sniff determines a buffer's true content type from its header
// bytes, independent of whatever type the client declared. It is the sole
// source of truth for type-gated upload validation.
package sniff

import "bytes"

// Type tags the detected content format.
type Type string

const (
	TypePDF     Type = "pdf"
	TypePNG     Type = "png"
	TypeJPEG    Type = "jpeg"
	TypeGIF     Type = "gif"
	TypeTIFF    Type = "tiff"
	TypeZIP     Type = "zip"
	TypeUnknown Type = "unknown"
)

// magic holds one header signature. Offset is always zero for the formats we
// gate on, but kept explicit so additions stay honest about it.
type magic struct {
	prefix []byte
	typ    Type
}

// Signature table, checked in order. GIF has two on-disk variants; TIFF has
// both byte orders. ZIP covers DOCX and friends, which are ZIP containers.
var magics = []magic{
	{[]byte("%PDF-"), TypePDF},
	{[]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, TypePNG},
	{[]byte{0xFF, 0xD8, 0xFF}, TypeJPEG},
	{[]byte("GIF87a"), TypeGIF},
	{[]byte("GIF89a"), TypeGIF},
	{[]byte{'I', 'I', 0x2A, 0x00}, TypeTIFF},
	{[]byte{'M', 'M', 0x00, 0x2A}, TypeTIFF},
	{[]byte{'P', 'K', 0x03, 0x04}, TypeZIP},
}

// maxHeader bounds how much of the buffer Detect ever examines, keeping
// detection O(1) in file size.
const maxHeader = 16

// Detect inspects the buffer's header against the signature table. A buffer
// shorter than a signature never matches that signature; a zero-length buffer
// matches nothing.
func Detect(buf []byte) Type {
	header := buf
	if len(header) > maxHeader {
		header = header[:maxHeader]
	}
	for _, m := range magics {
		if len(header) >= len(m.prefix) && bytes.Equal(header[:len(m.prefix)], m.prefix) {
			return m.typ
		}
	}
	return TypeUnknown
}

// declaredTypes maps client-declared MIME types onto the tag space so the
// grant service can test declared-vs-detected agreement.
var declaredTypes = map[string]Type{
	"application/pdf": TypePDF,
	"image/png":       TypePNG,
	"image/jpeg":      TypeJPEG,
	"image/gif":       TypeGIF,
	"image/tiff":      TypeTIFF,
	"application/zip": TypeZIP,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": TypeZIP,
}

// FromDeclared maps a declared MIME type to a tag, or TypeUnknown when the
// declaration is not one we recognize.
func FromDeclared(mime string) Type {
	if t, ok := declaredTypes[mime]; ok {
		return t
	}
	return TypeUnknown
}
