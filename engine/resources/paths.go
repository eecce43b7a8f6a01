package resources

import (
	"os"
	"path/filepath"
)

// SearchPaths is the ordered list of root directories resource names are
// resolved against. Resolution scans in reverse insertion order, so a root
// added later (a project's own asset folder) shadows one added earlier (the
// engine's built-in assets) without any priority bookkeeping.
type SearchPaths struct {
	roots []string
}

func NewSearchPaths(roots ...string) *SearchPaths {
	sp := &SearchPaths{}
	for _, root := range roots {
		sp.Add(root)
	}
	return sp
}

func (sp *SearchPaths) Add(root string) {
	sp.roots = append(sp.roots, root)
}

func (sp *SearchPaths) Roots() []string {
	out := make([]string, len(sp.roots))
	copy(out, sp.roots)
	return out
}

// Resolve builds root/subfolder/name for every root, most recently added
// first, and returns the first candidate that exists. Exact filename match
// only; no extension inference.
func (sp *SearchPaths) Resolve(name, subfolder string) (string, bool) {
	for i := len(sp.roots) - 1; i >= 0; i-- {
		candidate := filepath.Join(sp.roots[i], subfolder, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}
