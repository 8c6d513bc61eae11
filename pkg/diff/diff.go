// Package diff turns raw unified-diff text into per-file patches.
package diff

import (
	"fmt"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
)

// Op tags a single diff line.
type Op int

const (
	Context Op = iota
	Added
	Removed
)

type Line struct {
	Op   Op
	Text string
}

type Hunk struct {
	Lines []Line
}

// Patch is one file's worth of diff.
type Patch struct {
	// NewPath is the post-image path exactly as written in the diff,
	// including the diff tool's "b/" prefix.
	NewPath string
	Hunks   []Hunk
}

// SyntaxError reports raw text that is not a well-formed unified diff.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("failed to parse diff: %v", e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Parse splits raw unified-diff text into per-file patches, preserving the
// file and hunk order of the input. Non-blank input that contains no file
// headers at all is a syntax error: an arbitrary blob must not parse as an
// empty change set.
func Parse(raw string) ([]Patch, error) {
	files, err := godiff.ParseMultiFileDiff([]byte(raw))
	if err != nil {
		return nil, &SyntaxError{Err: err}
	}
	if len(files) == 0 && strings.TrimSpace(raw) != "" {
		return nil, &SyntaxError{Err: fmt.Errorf("no file headers found")}
	}

	patches := make([]Patch, 0, len(files))
	for _, f := range files {
		p := Patch{NewPath: f.NewName}
		for _, h := range f.Hunks {
			p.Hunks = append(p.Hunks, parseHunkBody(string(h.Body)))
		}
		patches = append(patches, p)
	}
	return patches, nil
}

func parseHunkBody(body string) Hunk {
	var hunk Hunk
	for _, line := range strings.Split(strings.TrimSuffix(body, "\n"), "\n") {
		if line == "" {
			continue
		}
		switch line[0] {
		case '+':
			hunk.Lines = append(hunk.Lines, Line{Op: Added, Text: line[1:]})
		case '-':
			hunk.Lines = append(hunk.Lines, Line{Op: Removed, Text: line[1:]})
		case ' ':
			hunk.Lines = append(hunk.Lines, Line{Op: Context, Text: line[1:]})
		case '\\':
			// "\ No newline at end of file" carries no content.
		default:
			hunk.Lines = append(hunk.Lines, Line{Op: Context, Text: line})
		}
	}
	return hunk
}
