package client

import "testing"

func TestParseConf(t *testing.T) {
	c, err := ParseConf("pluto:localhost:5009:deadbeef")
	if err != nil {
		t.Fatal(err)
	}
	if c.HostAlias != "pluto" || c.GatewayAddress != "localhost" || c.Port != 5009 || c.AuthKey != "deadbeef" {
		t.Fatalf("got %+v", c)
	}
}

func TestParseConfMalformed(t *testing.T) {
	cases := []string{
		"",
		"pluto:localhost:5009",
		"pluto:localhost:notaport:deadbeef",
		"pluto:localhost::deadbeef",
	}
	for _, raw := range cases {
		if _, err := ParseConf(raw); err == nil {
			t.Errorf("ParseConf(%q): expected error, got none", raw)
		}
	}
}

// TestTranslatePathIdempotence verifies translating an already-absolute
// path yields itself, and "+N" tokens pass through unchanged.
func TestTranslatePathIdempotence(t *testing.T) {
	if got := TranslatePath("/etc/hosts", "/home/me", false); got != "/etc/hosts" {
		t.Fatalf("got %q, want /etc/hosts", got)
	}
	if got := TranslatePath("+42", "/home/me", false); got != "+42" {
		t.Fatalf("got %q, want +42", got)
	}
}

func TestTranslatePathRelative(t *testing.T) {
	got := TranslatePath("README", "/home/me", false)
	if got != "/home/me/README" {
		t.Fatalf("got %q, want /home/me/README", got)
	}
}

func TestTranslatePathNoXlate(t *testing.T) {
	got := TranslatePath("README", "/home/me", true)
	if got != "README" {
		t.Fatalf("got %q, want README unchanged", got)
	}
}

// TestBuildBodyLiteralExample verifies the LF-per-path, +N-passthrough
// body framing against a literal example.
func TestBuildBodyLiteralExample(t *testing.T) {
	got := string(buildBody([]string{"+42", "README"}, "/home/me", false))
	want := "+42\n/home/me/README\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
