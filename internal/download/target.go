// Package download implements the MRF fetch pipeline: target naming,
// existence-based dedup, streaming retrieval, and gzip expansion.
package download

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jonathan/mrf-harvester/internal/types"
)

// Target is one download destination derived from a candidate URL, the
// hospital system name, and the candidate's 1-based position in the
// ordered list.
type Target struct {
	URL    string
	Format types.Format
	System string
	Index  int
	Path   string
}

// FinalPath is where the payload ends up after any gzip expansion: the
// output path with a trailing .gz stripped, or the output path itself.
func (t Target) FinalPath() string {
	return strings.TrimSuffix(t.Path, ".gz")
}

// Compressed reports whether the target's payload arrives gzipped.
func (t Target) Compressed() bool {
	return strings.HasSuffix(t.Path, ".gz")
}

// Satisfied reports whether the target is already on disk: either the
// final (decompressed) path or the still-compressed original exists.
// Completeness of the existing file is not verified.
func (t Target) Satisfied() bool {
	if pathExists(t.FinalPath()) {
		return true
	}
	return t.Compressed() && pathExists(t.Path)
}

// TargetFor derives the on-disk destination for a candidate. The file
// name is the URL's basename with query parameters stripped and every
// character outside [A-Za-z0-9._-] replaced by an underscore; when that
// sanitizes to nothing a synthetic {system}_mrf_{index}.{ext} name is
// substituted. The system name prefixes the file so one output
// directory can hold every domain's files without collisions.
func TargetFor(candidate types.MrfCandidate, system string, index int, outputDir string) Target {
	systemSlug := strings.ReplaceAll(system, " ", "_")

	base := candidate.URL
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.Index(base, "?"); i >= 0 {
		base = base[:i]
	}
	name := sanitizeName(base)

	if name == "" || name == "_" {
		name = fmt.Sprintf("%s_mrf_%d.%s", systemSlug, index, candidate.Format.Ext())
	}
	if !strings.Contains(name, ".") {
		name = name + "." + candidate.Format.Ext()
	}

	return Target{
		URL:    candidate.URL,
		Format: candidate.Format,
		System: system,
		Index:  index,
		Path:   filepath.Join(outputDir, systemSlug+"_"+name),
	}
}

// sanitizeName replaces every character outside [A-Za-z0-9._-] with an
// underscore.
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
