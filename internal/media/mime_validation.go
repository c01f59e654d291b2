package media

import (
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// sniffImage detects the content type from the file header and rejects
// anything that is not an accepted image.
func sniffImage(data []byte) (*mimetype.MIME, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if slices.Contains(allowedImageTypes, m.String()) {
			return m, nil
		}
	}
	return nil, fmt.Errorf("unsupported image type %s; allowed: %s", detected.String(), strings.Join(allowedImageTypes, ", "))
}

// extensionFor keeps the original file extension, falling back to the detected one.
func extensionFor(fileName string, detected *mimetype.MIME) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	ext = strings.TrimPrefix(ext, ".")
	if ext != "" && isSafeExt(ext) {
		return ext
	}
	return strings.TrimPrefix(detected.Extension(), ".")
}

func isSafeExt(ext string) bool {
	if len(ext) > 10 {
		return false
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
