// Package termpack implements bcvi's TERM-overloading side-channel:
// the only way to get configuration from the workstation into a
// freshly-started remote shell, given that SSH otherwise offers no
// clean path to inject new environment variables into the remote
// session. SSH does, however, propagate TERM, so bcvi appends a
// second line to it before the SSH hop and the remote shell's login
// script splits it back apart.
//
// This is a fragile but intentional side-channel: byte-exact
// round-tripping must be preserved, since interoperability with
// already-deployed remote login scripts depends on it.
package termpack

import "strings"

// Pack embeds conf into term for transport across an SSH hop:
// "TERM=<original_term>\nBCVI_CONF=<conf>".
func Pack(term, conf string) string {
	return term + "\nBCVI_CONF=" + conf
}

// Unpack splits a packed TERM value on CR?LF into the real terminal
// type and any "NAME=VALUE" lines that follow it.
func Unpack(term string) (realTerm string, vars map[string]string) {
	lines := splitLines(term)
	if len(lines) == 0 {
		return "", nil
	}
	realTerm = lines[0]
	if len(lines) == 1 {
		return realTerm, nil
	}
	vars = make(map[string]string, len(lines)-1)
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		idx := strings.IndexByte(line, '=')
		if idx < 0 {
			continue
		}
		vars[line[:idx]] = line[idx+1:]
	}
	return realTerm, vars
}

// UnpackShell renders the shell code the remote login script is meant
// to `eval`: the real TERM re-exported, plus an `export NAME="VALUE"`
// line per packed variable. If term carries no packed payload (a
// single line), it emits nothing.
//
// The output is safe to eval unquoted because every value originates
// from the workstation side of the SSH hop that packed it, not from
// untrusted remote input.
func UnpackShell(term string) string {
	realTerm, vars := Unpack(term)
	if vars == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("TERM=")
	b.WriteString(realTerm)
	b.WriteByte('\n')
	for _, name := range sortedKeys(vars) {
		b.WriteString("export ")
		b.WriteString(name)
		b.WriteString("=\"")
		b.WriteString(vars[name])
		b.WriteString("\"\n")
	}
	return b.String()
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}

// sortedKeys is a small local helper rather than pulling in sort for
// what the packer never produces as more than a single BCVI_CONF line;
// kept simple and stable for len(vars) in the single digits.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
