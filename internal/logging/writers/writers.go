// Package writers turns a log output spec into an io.Writer.
package writers

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedOutput is returned for specs that are neither a stream nor a file path.
var ErrUnsupportedOutput = errors.New("unsupported log output")

// WriterType is the kind of writer a spec resolves to.
type WriterType string

const (
	WriterTypeStdout WriterType = "stdout"
	WriterTypeStderr WriterType = "stderr"
	WriterTypeFile   WriterType = "file"
)

// CreateWriter resolves an output spec:
//   - "stdout"
//   - "stderr" or "" (stdout carries the stdio protocol, so it is never the default)
//   - "file:///path/to/file" or any path containing a separator
//
// File outputs are opened for append and their parent directories are created.
func CreateWriter(output string) (io.Writer, error) {
	switch ParseWriterType(output) {
	case WriterTypeStdout:
		return os.Stdout, nil
	case WriterTypeStderr:
		return os.Stderr, nil
	case WriterTypeFile:
		return openFile(strings.TrimPrefix(output, "file://"))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOutput, output)
	}
}

// ParseWriterType classifies an output spec. Unrecognized specs return an empty type.
func ParseWriterType(output string) WriterType {
	switch {
	case output == "stdout":
		return WriterTypeStdout
	case output == "" || output == "stderr":
		return WriterTypeStderr
	case strings.HasPrefix(output, "file://"):
		return WriterTypeFile
	case strings.Contains(output, "://"):
		return ""
	case strings.ContainsAny(output, `/\`):
		return WriterTypeFile
	default:
		return ""
	}
}

func openFile(path string) (io.Writer, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
