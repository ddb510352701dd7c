package termpack

import "testing"

func TestPackUnpackRoundTrip(t *testing.T) {
	term := "xterm"
	conf := "pluto:localhost:5009:deadbeef"
	packed := Pack(term, conf)
	gotTerm, vars := Unpack(packed)
	if gotTerm != term {
		t.Fatalf("got term %q, want %q", gotTerm, term)
	}
	if vars["BCVI_CONF"] != conf {
		t.Fatalf("got BCVI_CONF %q, want %q", vars["BCVI_CONF"], conf)
	}
}

func TestUnpackSingleLineEmitsNothing(t *testing.T) {
	if out := UnpackShell("xterm"); out != "" {
		t.Fatalf("expected empty output for unpacked TERM, got %q", out)
	}
}

func TestUnpackShellLiteralExample(t *testing.T) {
	got := UnpackShell("xterm\nBCVI_CONF=pluto:localhost:5009:deadbeef")
	want := "TERM=xterm\nexport BCVI_CONF=\"pluto:localhost:5009:deadbeef\"\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestUnpackCRLF(t *testing.T) {
	_, vars := Unpack("xterm\r\nBCVI_CONF=abc")
	if vars["BCVI_CONF"] != "abc" {
		t.Fatalf("CRLF split failed: %+v", vars)
	}
}
