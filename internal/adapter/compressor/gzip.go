package compressor

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// GzipVerifier validates that a backup artifact is a well-formed gzip
// stream. The dump pipeline compresses through gzip, so a dump tool that
// died mid-stream leaves a truncated member the reader rejects.
type GzipVerifier struct{}

func NewGzipVerifier() *GzipVerifier {
	return &GzipVerifier{}
}

// Verify decodes the whole stream and discards it. Returns an error for a
// missing file, a non-gzip file, or a truncated/corrupt stream.
func (g *GzipVerifier) Verify(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	reader, err := gzip.NewReader(file)
	if err != nil {
		return fmt.Errorf("failed to read gzip header: %w", err)
	}
	defer reader.Close()

	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("corrupt gzip stream: %w", err)
	}

	return nil
}
