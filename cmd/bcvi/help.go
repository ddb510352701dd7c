package main

import (
	"fmt"
	"os"
	"strings"

	"blitter.com/go/bcvi/client"
	"blitter.com/go/bcvi/toolpath"
)

// builtinDoc is bcvi's own top-level documentation, shown by --help
// before any listener-supplied plugin documentation.
const builtinDoc = `bcvi - back-channel command proxy

bcvi forwards file-open and file-copy requests from a remote SSH
session back to the workstation you connected from, over a reverse
tunnel established by "bcvi --wrap-ssh".

Modes:
  bcvi [paths...]       remote client (default); see --command
  bcvi --listener        workstation listener
  bcvi --wrap-ssh -- ... rewrite and exec ssh with the back-channel tunnel
  bcvi --unpack-term      emit shell code unpacking a TERM-carried BCVI_CONF
  bcvi --install HOST...  install bcvi and aliases on remote hosts
  bcvi --add-aliases      add the bcvi alias block to local shell rc files
  bcvi --plugin-help NAME documentation for a listener-registered command
`

// runHelp implements --help: render builtinDoc, then (if a listener
// is reachable) append its commands_pod output, all through the
// user's pager when stdout is a terminal.
func runHelp() {
	text := builtinDoc
	if doc := fetchCommandsPod(); doc != "" {
		text += "\nListener commands:\n\n" + doc
	}
	page(text)
}

// runPluginHelp implements --plugin-help <plugin>: fetch the listener's
// commands_pod listing and show only the named command's section, so
// the client reflects plugins installed only on the listener. The
// client has no direct access to the listener's Registry, so a lookup
// of a single command's docs is realized by asking for the full POD
// body and picking out its "=head1 <plugin>" section.
func runPluginHelp(name string) {
	doc := fetchCommandsPod()
	if doc == "" {
		fmt.Fprintf(os.Stderr, "bcvi: no listener reachable; cannot show help for %q\n", name) // nolint: errcheck
		os.Exit(1)
	}
	section, ok := podSection(doc, name)
	if !ok {
		fmt.Fprintf(os.Stderr, "bcvi: no such command %q\n", name) // nolint: errcheck
		os.Exit(1)
	}
	page(section)
}

// podSection extracts the "=head1 name\n\n...\n\n" block for name out
// of a commands_pod body holding one such block per registered command
// (see listener.Registry.DocAll).
func podSection(doc, name string) (string, bool) {
	marker := "=head1 " + name + "\n"
	start := strings.Index(doc, marker)
	if start < 0 {
		return "", false
	}
	rest := doc[start+len(marker):]
	end := strings.Index(rest, "\n=head1 ")
	if end < 0 {
		return doc[start:], true
	}
	return doc[start : start+len(marker)+end+1], true
}

// fetchCommandsPod asks the listener for its commands_pod body, or
// returns "" if no listener is reachable (e.g. BCVI_CONF unset).
func fetchCommandsPod() string {
	raw := os.Getenv("BCVI_CONF")
	if raw == "" {
		return ""
	}
	conf, err := client.ParseConf(raw)
	if err != nil {
		return ""
	}
	res, err := client.Run(client.Options{Conf: conf, Command: "commands_pod"})
	if err != nil {
		return ""
	}
	return string(res.Body)
}

// page writes text to the user's pager when stdout is a terminal,
// else dumps it raw.
func page(text string) {
	if !shouldPage() {
		fmt.Print(text)
		return
	}
	pagerPath, ok := toolpath.ResolvePager()
	if !ok {
		fmt.Print(text)
		return
	}
	runPager(pagerPath, text)
}
