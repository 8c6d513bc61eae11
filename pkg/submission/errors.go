package submission

import "fmt"

// BadPrefixError reports a patched path outside the diff's "b/" new-file
// convention or the index root.
type BadPrefixError struct {
	Path string
}

func (e *BadPrefixError) Error() string {
	return fmt.Sprintf("expected new files to start with \"b/github\", got %q", e.Path)
}

// MissingOrgError reports an index path with no organization component.
type MissingOrgError struct {
	Path string
}

func (e *MissingOrgError) Error() string {
	return fmt.Sprintf("missing org, got %q", e.Path)
}

// MissingRepoError reports an index path with no repository component.
type MissingRepoError struct {
	Path string
}

func (e *MissingRepoError) Error() string {
	return fmt.Sprintf("missing repo, got %q", e.Path)
}

// TooDeepError reports an index path nested deeper than org/name/subdir.
type TooDeepError struct {
	Path string
}

func (e *TooDeepError) Error() string {
	return fmt.Sprintf("path too deep: expected github/org/name or github/org/name/subdir, got %q", e.Path)
}

// DeletionError reports a removed line. This pipeline only ever validates
// additions to the index; a deletion has to be handled by a human.
type DeletionError struct {
	Line string
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("you can't delete a line: %q", e.Line)
}

// DescriptorError reports an added line that does not deserialize into a
// well-formed package descriptor.
type DescriptorError struct {
	Path string
	Err  error
}

func (e *DescriptorError) Error() string {
	return fmt.Sprintf("invalid package spec: %v", e.Err)
}

func (e *DescriptorError) Unwrap() error { return e.Err }

// PathMismatchError reports a descriptor whose self-declared identity does
// not agree with the file it was added to.
type PathMismatchError struct {
	Path    string
	Package string
}

func (e *PathMismatchError) Error() string {
	return fmt.Sprintf("org/name mismatch: path was %q, package was %q", e.Path, e.Package)
}
