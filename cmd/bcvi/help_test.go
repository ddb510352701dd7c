package main

import "testing"

func TestPodSectionExtractsNamedBlock(t *testing.T) {
	doc := "=head1 vi\n\nOpens a file.\n\n=head1 scpd\n\nCopies a file.\n\n"
	got, ok := podSection(doc, "vi")
	if !ok {
		t.Fatal("expected vi section to be found")
	}
	want := "=head1 vi\n\nOpens a file.\n\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPodSectionLastBlock(t *testing.T) {
	doc := "=head1 vi\n\nOpens a file.\n\n=head1 scpd\n\nCopies a file.\n\n"
	got, ok := podSection(doc, "scpd")
	if !ok {
		t.Fatal("expected scpd section to be found")
	}
	want := "=head1 scpd\n\nCopies a file.\n\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPodSectionMissing(t *testing.T) {
	doc := "=head1 vi\n\nOpens a file.\n\n"
	if _, ok := podSection(doc, "nosuch"); ok {
		t.Fatal("expected nosuch section to be absent")
	}
}
