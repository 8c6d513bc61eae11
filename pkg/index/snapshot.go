package index

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkgsmith/index-checker/internal/semver"
)

// Snapshot is a read-only view of every version known to the index. It is
// loaded once per run, before any package processing, and never refreshed.
type Snapshot struct {
	versions map[string][]semver.Version
}

// Load walks the index checkout under root and collects the published
// versions of every entry. Descriptor lines that fail to parse make the
// whole load fail: a corrupt index cannot be trusted to answer dependency
// queries.
func Load(root string) (*Snapshot, error) {
	snapshot := &Snapshot{versions: make(map[string][]semver.Version)}

	dir := filepath.Join(root, Root)
	err := filepath.WalkDir(dir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		return snapshot.loadFile(p)
	})
	if err != nil {
		return nil, fmt.Errorf("loading index at %s: %w", dir, err)
	}

	for _, versions := range snapshot.versions {
		semver.Sort(versions)
	}
	return snapshot, nil
}

func (s *Snapshot) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	// Descriptor lines carry the full metadata block and can get long.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		d, err := ParseDescriptor(line)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		id := d.ID.IndexPath()
		s.versions[id] = append(s.versions[id], d.Version)
	}
	return scanner.Err()
}

// AvailableVersions returns the published versions for a dependency
// identity (an index path like "github/acme/widgets"), sorted ascending.
// Unknown identities yield an empty set, not an error.
func (s *Snapshot) AvailableVersions(id string) ([]semver.Version, error) {
	return s.versions[id], nil
}
