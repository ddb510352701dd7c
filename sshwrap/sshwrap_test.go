package sshwrap

import (
	"reflect"
	"testing"
)

// TestRewriteLiteralExample verifies the reverse-forward prepend and
// alias computation against a literal example.
func TestRewriteLiteralExample(t *testing.T) {
	res := Rewrite([]string{"-l", "alice", "pluto"}, Config{RemotePort: 9, LocalPort: 5009})
	want := []string{"-R", "9:localhost:5009", "-l", "alice", "pluto"}
	if !reflect.DeepEqual(res.Args, want) {
		t.Fatalf("got args %v, want %v", res.Args, want)
	}
	if res.Alias != "alice@pluto" {
		t.Fatalf("got alias %q, want alice@pluto", res.Alias)
	}
	if res.Warning != "" {
		t.Fatalf("unexpected warning: %q", res.Warning)
	}
}

func TestRewriteHostAlreadyHasUser(t *testing.T) {
	res := Rewrite([]string{"-l", "alice", "bob@pluto"}, Config{RemotePort: 1, LocalPort: 2})
	if res.Alias != "bob@pluto" {
		t.Fatalf("got alias %q, want bob@pluto (no double-prefix)", res.Alias)
	}
}

func TestRewriteNoHostCandidateWarns(t *testing.T) {
	res := Rewrite([]string{"-v"}, Config{RemotePort: 1, LocalPort: 2})
	if res.Warning == "" {
		t.Fatal("expected a warning when no host candidate is found")
	}
	if !reflect.DeepEqual(res.Args, []string{"-v"}) {
		t.Fatalf("expected original args unchanged, got %v", res.Args)
	}
}

func TestRewriteMultipleHostCandidatesWarns(t *testing.T) {
	res := Rewrite([]string{"hostA", "hostB"}, Config{RemotePort: 1, LocalPort: 2})
	if res.Warning == "" {
		t.Fatal("expected a warning for ambiguous host candidates")
	}
}

func TestRewriteOptionWithInlineValueSkipsCorrectly(t *testing.T) {
	// "-oStrictHostKeyChecking=no" must not be mistaken for a host.
	res := Rewrite([]string{"-oStrictHostKeyChecking=no", "pluto"}, Config{RemotePort: 1, LocalPort: 2})
	if res.Warning != "" {
		t.Fatalf("unexpected warning: %q", res.Warning)
	}
	if res.Alias != "pluto" {
		t.Fatalf("got alias %q, want pluto", res.Alias)
	}
}
