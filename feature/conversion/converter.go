package conversion

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Converter turns the ebook at src into dst, inferring formats from the
// file extensions.
type Converter interface {
	Convert(ctx context.Context, src, dst string) error
}

// CalibreConverter shells out to calibre's ebook-convert.
type CalibreConverter struct {
	Binary string
}

// NewCalibreConverter creates a converter for the given executable.
func NewCalibreConverter(binary string) *CalibreConverter {
	if binary == "" {
		binary = "ebook-convert"
	}
	return &CalibreConverter{Binary: binary}
}

// Convert runs the conversion and returns the tool output on failure.
func (c *CalibreConverter) Convert(ctx context.Context, src, dst string) error {
	out, err := exec.CommandContext(ctx, c.Binary, src, dst).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", c.Binary, err, strings.TrimSpace(lastLines(string(out), 5)))
	}
	return nil
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
