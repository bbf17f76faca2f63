package constants

import "strings"

// Format is the coarse document class the acquisition stage switches on.
type Format string

const (
	PDF   Format = "PDF"
	IMAGE Format = "IMAGE"
)

// MediaTypes maps declared media types to a Format.
var MediaTypes = map[string]Format{
	"application/pdf": PDF,
	"image/jpeg":      IMAGE,
	"image/jpg":       IMAGE,
	"image/png":       IMAGE,
	"image/bmp":       IMAGE,
	"image/tiff":      IMAGE,
}

// ExtToMediaType maps file extensions (no dot, lowercase) to media types,
// used by the one-shot CLI and the ingress endpoint when no content type
// was declared.
var ExtToMediaType = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
}

// MapMediaType returns the Format for a declared media type, or "" when the
// type is not supported.
func MapMediaType(mediaType string) Format {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return MediaTypes[mt]
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
