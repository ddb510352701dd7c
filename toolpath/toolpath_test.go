package toolpath

import "testing"

func TestResolveFindsShOnPath(t *testing.T) {
	// "sh" is not in our fixed prefixes reliably on every platform, but
	// it is always on $PATH in a test environment; exercises the
	// exec.LookPath fallback.
	if _, ok := Resolve("sh"); !ok {
		t.Skip("no 'sh' on PATH in this environment")
	}
}

func TestResolveUnknownToolFails(t *testing.T) {
	if _, ok := Resolve("definitely-not-a-real-bcvi-tool"); ok {
		t.Fatal("expected Resolve to fail for a nonexistent tool")
	}
}
