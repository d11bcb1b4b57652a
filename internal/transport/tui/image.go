package tui

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/sandevgo/cropadvisor/internal/core"
)

// MaxImageSize caps photos attached from disk.
const MaxImageSize = 10 << 20

// LoadImage reads an image file for attaching to the next question.
func LoadImage(path string) (*core.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > MaxImageSize {
		return nil, fmt.Errorf("%s is larger than %d MB", path, MaxImageSize>>20)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%s is not an image (%s)", path, mime)
	}
	return &core.Image{MIMEType: mime, Data: data}, nil
}
