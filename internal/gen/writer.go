package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Write stores the file in dir under its Filename, creating dir if needed.
func (f *GeneratedFile) Write(dir string) error {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, f.Filename), f.Content, filePerm); err != nil {
		return fmt.Errorf("writing %s: %w", f.Filename, err)
	}

	return nil
}

// unformattedName is the sidecar name for source that gofmt rejected. It keeps
// the .go suffix for editors but cannot collide with the real output.
func unformattedName(filename string) string {
	return strings.TrimSuffix(filename, ".go") + ".unformatted.go"
}

// writeUnformatted saves raw template output next to the intended file. It is
// skipped when no directory is configured.
func writeUnformatted(dir, filename string, content []byte) error {
	if dir == "" || filename == "" {
		return nil
	}

	sidecar := &GeneratedFile{Filename: unformattedName(filename), Content: content}

	return sidecar.Write(dir)
}
