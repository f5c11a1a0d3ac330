package constants

import "strings"

const (
	// FileTypeImage marks inputs that need OCR before the pipeline runs.
	FileTypeImage = "IMAGE"
	// FileTypeText marks plain-text inputs that skip OCR.
	FileTypeText = "TXT"
)

// FileTypes holds the allowed input kinds for a document job.
var FileTypes = []string{FileTypeImage, FileTypeText}

// AllowedExtensions holds the default allowed file extensions for document ingestion.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"bmp":  {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsTextExt reports whether the extension carries plain text that can skip OCR.
func IsTextExt(ext string) bool {
	return NormalizeExt(ext) == "txt"
}

// FormatForExt maps a file extension onto one of FileTypes. The second
// return is false for extensions outside AllowedExtensions.
func FormatForExt(ext string) (string, bool) {
	e := NormalizeExt(ext)
	if _, ok := AllowedExtensions[e]; !ok {
		return "", false
	}
	if IsTextExt(e) {
		return FileTypeText, true
	}
	return FileTypeImage, true
}
