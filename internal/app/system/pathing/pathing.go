// Package pathing computes and inspects the denormalized folder paths
// stored on shared files and folders.
//
// Every mutation that changes an item's parent or name must go through
// Join so there is exactly one code path producing stored paths, keeping
// the invariant "stored path matches the parent chain" checkable in one
// place.
package pathing

import "strings"

// Root is the path of the team root. The root is synthetic: no folder
// document carries it.
const Root = "/"

// Join returns the stored path for an item named name under a parent with
// the given path. Root items get "/name". Duplicate separators collapse.
func Join(parentPath, name string) string {
	name = strings.Trim(name, "/")
	parentPath = strings.TrimRight(parentPath, "/")
	if parentPath == "" {
		return "/" + name
	}
	return parentPath + "/" + name
}

// Segments splits a stored path into its folder names, root first.
// Segments("/") is empty.
func Segments(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Prefixes returns every ancestor path of path including path itself,
// shortest first: "/a/b" -> ["/a", "/a/b"].
func Prefixes(path string) []string {
	segs := Segments(path)
	out := make([]string, 0, len(segs))
	cur := ""
	for _, s := range segs {
		cur = cur + "/" + s
		out = append(out, cur)
	}
	return out
}

// IsWithin reports whether candidate is ancestor itself or a descendant
// of it. Used to reject moves that would place an item under its own
// subtree.
func IsWithin(candidate, ancestor string) bool {
	if candidate == ancestor {
		return true
	}
	return strings.HasPrefix(candidate, strings.TrimRight(ancestor, "/")+"/")
}

// Rebase rewrites path, which must be within oldPrefix, to sit under
// newPrefix instead. Used for cascading descendant updates on folder
// moves.
func Rebase(path, oldPrefix, newPrefix string) string {
	if !IsWithin(path, oldPrefix) {
		return path
	}
	rest := strings.TrimPrefix(path, strings.TrimRight(oldPrefix, "/"))
	return strings.TrimRight(newPrefix, "/") + rest
}
