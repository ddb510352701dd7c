package main

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
)

const (
	aliasBlockStart = "## START-BCVI"
	aliasBlockEnd   = "## END-BCVI"
)

// aliasBlock is the shell-alias block bcvi writes into a user's rc
// file, delimited exactly by aliasBlockStart/aliasBlockEnd. Each alias
// is guarded by BCVI_CONF so it's a no-op outside a bcvi-wrapped SSH
// session.
const aliasBlock = aliasBlockStart + `
if [ -n "$BCVI_CONF" ]; then
  alias vi='bcvi --command=vi'
  alias sudoedit='bcvi --command=viwait'
  alias scp2desktop='bcvi --command=scpd'
fi
` + aliasBlockEnd + "\n"

// rcFiles returns the shell startup files --add-aliases edits. Grounded
// in the common bash/zsh convention: both rc files are edited, and a
// missing one is created, since which one a login shell sources
// depends on the user's shell and invocation mode.
func rcFiles(home string) []string {
	return []string{
		filepath.Join(home, ".bashrc"),
		filepath.Join(home, ".zshrc"),
	}
}

// applyAliasBlock returns contents with the bcvi alias block inserted
// or replaced in place: an existing START/END-delimited block is
// replaced verbatim; if none is found, the block is appended. Applying
// it twice is therefore idempotent.
func applyAliasBlock(contents string) string {
	start := strings.Index(contents, aliasBlockStart)
	if start < 0 {
		if contents != "" && !strings.HasSuffix(contents, "\n") {
			contents += "\n"
		}
		return contents + aliasBlock
	}
	endMarker := strings.Index(contents[start:], aliasBlockEnd)
	if endMarker < 0 {
		// Unterminated existing block: treat everything from
		// aliasBlockStart onward as the stale block and replace it.
		return contents[:start] + aliasBlock
	}
	end := start + endMarker + len(aliasBlockEnd)
	if end < len(contents) && contents[end] == '\n' {
		end++
	}
	return contents[:start] + aliasBlock + contents[end:]
}

func runAddAliases() {
	home := homeDir()
	for _, path := range rcFiles(home) {
		existing, err := ioutil.ReadFile(path) // nolint: gosec
		if err != nil {
			if !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "bcvi: %v\n", err) // nolint: errcheck
				continue
			}
			existing = nil
		}
		updated := applyAliasBlock(string(existing))
		if updated == string(existing) {
			continue
		}
		if err := ioutil.WriteFile(path, []byte(updated), 0644); err != nil { // nolint: gosec
			fmt.Fprintf(os.Stderr, "bcvi: writing %s: %v\n", path, err) // nolint: errcheck
			continue
		}
		fmt.Printf("bcvi: updated %s\n", path)
	}
}
