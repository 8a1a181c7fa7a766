package content

import (
	"fmt"
	"os"

	"github.com/skillscan/skillscan/internal/model"
)

// MaxFileBytes is the hard read cap for local files; larger files are
// skipped with no error.
const MaxFileBytes = 5 * 1024 * 1024

const probeWindow = 512

// substituteBinaryContent is what a file typed "binary" scans as once the
// byte-level probe confirms it actually looks binary.
const substituteBinaryContent = "binary"

// ErrSkipped signals that a file was deliberately not read (too large, an
// archive extension, or binary content that failed the probe). Callers
// should treat it as "zero ContentItems", not an error.
var ErrSkipped = fmt.Errorf("content: file skipped")

// ReadLocalFile turns a local file into a ContentItem, or returns
// ErrSkipped when the file is an archive, oversized, or probed-binary text.
func ReadLocalFile(path string) (model.ContentItem, error) {
	if Skipped(path) {
		return model.ContentItem{}, ErrSkipped
	}

	info, err := os.Stat(path)
	if err != nil {
		return model.ContentItem{}, err
	}
	if info.Size() > MaxFileBytes {
		return model.ContentItem{}, ErrSkipped
	}

	fileType := Classify(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return model.ContentItem{}, err
	}

	if fileType == model.FileTypeBinary {
		if looksBinary(data) {
			return model.ContentItem{
				VirtualPath: path,
				FileType:    model.FileTypeBinary,
				Content:     substituteBinaryContent,
			}, nil
		}
		return model.ContentItem{}, ErrSkipped
	}

	if looksBinary(data) {
		return model.ContentItem{}, ErrSkipped
	}

	return model.ContentItem{
		VirtualPath: path,
		FileType:    fileType,
		Content:     string(data),
	}, nil
}

// looksBinary applies the 512-byte probe: a null byte anywhere in the
// window, or more than 20% of the window in the suspicious control-byte
// range, marks the content as binary.
func looksBinary(data []byte) bool {
	window := data
	if len(window) > probeWindow {
		window = window[:probeWindow]
	}
	if len(window) == 0 {
		return false
	}

	suspicious := 0
	for _, b := range window {
		if b == 0 {
			return true
		}
		if isSuspiciousByte(b) {
			suspicious++
		}
	}
	return float64(suspicious)/float64(len(window)) > 0.20
}

func isSuspiciousByte(b byte) bool {
	return b < 9 || (b > 13 && b < 32) || b == 127
}
