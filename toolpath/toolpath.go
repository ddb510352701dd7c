// Package toolpath locates the external binaries bcvi shells out to:
// the editor launcher, scp, and the user's pager. These are opaque
// processes invoked by name; this package is only responsible for
// finding them.
//
// Directly grounded on blitter.com/go/xs's GetTool helper (auth.go),
// generalized to also fall back to a PATH search via exec.LookPath so
// a tool installed somewhere other than the three hardcoded prefixes
// is still found.
package toolpath

import (
	"os"
	"os/exec"
)

var searchPrefixes = []string{"/usr/local/bin/", "/usr/bin/", "/bin/"}

// Resolve returns the absolute path to name, preferring the fixed
// prefixes (in the order a sysadmin would expect a local override to
// win) and falling back to a $PATH search.
func Resolve(name string) (path string, ok bool) {
	for _, prefix := range searchPrefixes {
		candidate := prefix + name
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	if p, err := exec.LookPath(name); err == nil {
		return p, true
	}
	return "", false
}

// ResolvePager resolves the user's preferred pager: $PAGER if set and
// findable, else "less", else "more".
func ResolvePager() (path string, ok bool) {
	if p := os.Getenv("PAGER"); p != "" {
		if path, ok := Resolve(p); ok {
			return path, true
		}
		if path, err := exec.LookPath(p); err == nil {
			return path, true
		}
	}
	if path, ok := Resolve("less"); ok {
		return path, true
	}
	return Resolve("more")
}
