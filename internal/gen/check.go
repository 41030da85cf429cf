package gen

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ErrStale is returned by Check when the file on disk differs from the
// freshly generated content.
var ErrStale = errors.New("generated file is out of date")

// Check compares file with the content at path. It returns nil when they are
// identical, and an error wrapping ErrStale together with a line diff when
// they are not. A missing file is stale.
func Check(path string, file *GeneratedFile) (string, error) {
	current, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return LineDiff("", string(file.Content)), fmt.Errorf("%s: %w (file does not exist)", path, ErrStale)
	}

	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	if bytes.Equal(current, file.Content) {
		return "", nil
	}

	return LineDiff(string(current), string(file.Content)), fmt.Errorf("%s: %w", path, ErrStale)
}

// LineDiff renders a unified-style line diff from old to new. Unchanged
// lines are prefixed with a space, removed with "-" and added with "+".
func LineDiff(oldText, newText string) string {
	dmp := diffmatchpatch.New()

	a, b, lines := dmp.DiffLinesToChars(oldText, newText)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder

	for _, d := range diffs {
		prefix := " "

		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}

		for line := range strings.SplitSeq(strings.TrimSuffix(d.Text, "\n"), "\n") {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}
