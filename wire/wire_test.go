package wire

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestWriteReadGreeting(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGreeting(&buf, "1.2.3"); err != nil {
		t.Fatal(err)
	}
	v, err := ReadGreeting(bufio.NewReader(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if v != "1.2.3" {
		t.Fatalf("got version %q, want 1.2.3", v)
	}
}

func TestReadGreetingMalformed(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("not a greeting\n"))
	if _, err := ReadGreeting(r); err == nil {
		t.Fatal("expected ProtocolError for malformed greeting")
	}
}

func TestRequestRoundTrip(t *testing.T) {
	req := &Request{
		AuthKey:   "deadbeef",
		HostAlias: "pluto",
		Command:   "vi",
		Body:      []byte("/etc/hosts\n"),
	}
	var buf bytes.Buffer
	if err := WriteRequest(&buf, req); err != nil {
		t.Fatal(err)
	}
	got, err := ReadRequest(bufio.NewReader(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if got.AuthKey != req.AuthKey || got.HostAlias != req.HostAlias || got.Command != req.Command {
		t.Fatalf("got %+v, want %+v", got, req)
	}
	if string(got.Body) != string(req.Body) {
		t.Fatalf("body mismatch: got %q want %q", got.Body, req.Body)
	}
}

// TestHeaderCanonicalization verifies a request with header
// HOST-ALIAS is treated identically to host_alias.
func TestHeaderCanonicalization(t *testing.T) {
	raw := "AUTH-KEY: k\nHOST-ALIAS: pluto\nCOMMAND: vi\nContent-Length: 0\n\n"
	req, err := ReadRequest(bufio.NewReader(strings.NewReader(raw)))
	if err != nil {
		t.Fatal(err)
	}
	if req.HostAlias != "pluto" || req.AuthKey != "k" || req.Command != "vi" {
		t.Fatalf("canonicalization failed: %+v", req)
	}
}

func TestReadRequestTruncatedBody(t *testing.T) {
	raw := "Auth-Key: k\nHost-Alias: a\nCommand: vi\nContent-Length: 10\n\nshort"
	_, err := ReadRequest(bufio.NewReader(strings.NewReader(raw)))
	if err == nil {
		t.Fatal("expected error for truncated body")
	}
}

func TestResponseRoundTripSimple(t *testing.T) {
	var buf bytes.Buffer
	resp := &Response{Code: CodeSuccess}
	if err := WriteResponse(&buf, resp); err != nil {
		t.Fatal(err)
	}
	got, err := ReadResponse(bufio.NewReader(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if got.Code != CodeSuccess {
		t.Fatalf("got code %d, want %d", got.Code, CodeSuccess)
	}
}

func TestResponseRoundTripWithBody(t *testing.T) {
	var buf bytes.Buffer
	resp := &Response{Code: CodeBodyFollows, ContentType: "text/pod", Body: []byte("=head1 vi\n")}
	if err := WriteResponse(&buf, resp); err != nil {
		t.Fatal(err)
	}
	got, err := ReadResponse(bufio.NewReader(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if got.ContentType != "text/pod" || string(got.Body) != string(resp.Body) {
		t.Fatalf("got %+v", got)
	}
}

func TestReadResponseNonNumericCode(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("OK Success\n"))
	if _, err := ReadResponse(r); err == nil {
		t.Fatal("expected error for non-numeric code")
	}
}
