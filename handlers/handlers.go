// Package handlers implements bcvi's command handlers: vi, viwait,
// scpd, and commands_pod, each registered into a listener.Registry
// under its Command-header name.
//
// Grounded on xsd/xsd.go's runShellAs/runClientToServerCopyAs family:
// a handler resolves the external tool via toolpath, builds an
// exec.Cmd, and either fires-and-forgets it (vi) or waits on it
// (viwait, scpd) before reporting back to the caller.
package handlers

import (
	"fmt"
	"os"
	"os/exec"
	"path"
	"strings"

	"blitter.com/go/bcvi/listener"
	"blitter.com/go/bcvi/toolpath"
	"blitter.com/go/bcvi/wire"
)

// PathPrefixer rewrites an absolute remote path into something the
// local editor/copy target can open, as a configurable strategy: the
// default is the documented scp://<alias>/<path> form; the source
// tool's /tmp/<alias>/... local-mount convention remains available
// for deployments that rely on it.
type PathPrefixer interface {
	Prefix(alias, absPath string) string
}

// ScpURLPrefixer is the default PathPrefixer, producing the
// documented scp://<alias>/<path> URI form.
type ScpURLPrefixer struct{}

func (ScpURLPrefixer) Prefix(alias, absPath string) string {
	return fmt.Sprintf("scp://%s%s", alias, absPath)
}

// TmpAliasPrefixer reproduces the source tool's /tmp/<alias>/...
// local-mount convention: a remote filesystem mounted locally under
// /tmp/<alias> lets the editor open the file as though it were local.
type TmpAliasPrefixer struct{}

func (TmpAliasPrefixer) Prefix(alias, absPath string) string {
	return "/tmp/" + alias + absPath
}

func isLineDirective(tok string) bool {
	if len(tok) < 2 || tok[0] != '+' {
		return false
	}
	for _, c := range tok[1:] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// splitBody splits the LF-separated path list bodies carry, dropping
// the trailing empty element left by the client's trailing-LF-per-path
// framing.
func splitBody(body []byte) []string {
	lines := strings.Split(string(body), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// prefixPaths rewrites every non-+N token in paths via prefixer,
// leaving +N line-number directives untouched so the editor still
// sees them positioned immediately before the path they apply to.
func prefixPaths(paths []string, alias string, prefixer PathPrefixer) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if isLineDirective(p) {
			out[i] = p
			continue
		}
		out[i] = prefixer.Prefix(alias, p)
	}
	return out
}

// ViHandler implements the "vi" command: launch the editor detached
// and return immediately, so the remote caller's shell isn't blocked
// on the workstation user closing their editor window.
type ViHandler struct {
	Editor   string // binary name resolved via toolpath; default "gvim"
	Prefixer PathPrefixer

	// Start defaults to (*exec.Cmd).Start; tests substitute a fake.
	Start func(*exec.Cmd) error
}

func (h *ViHandler) Name() string { return "vi" }

func (h *ViHandler) Doc() string {
	return "Opens one or more remote paths in the workstation's editor. " +
		"Does not wait for the editor to exit."
}

func (h *ViHandler) Invoke(ctx *listener.Context, req *wire.Request, conn listener.Conn) error {
	cmd, err := h.buildCmd(ctx, req)
	if err != nil {
		return err
	}
	start := h.Start
	if start == nil {
		start = (*exec.Cmd).Start
	}
	if err := start(cmd); err != nil {
		return err
	}
	// The editor runs detached from this request, but its process
	// still needs reaping once it exits or it accumulates as a
	// zombie under the long-running listener.
	go func() { _ = cmd.Wait() }()
	return nil
}

func (h *ViHandler) buildCmd(ctx *listener.Context, req *wire.Request) (*exec.Cmd, error) {
	editor := h.Editor
	if editor == "" {
		editor = "gvim"
	}
	bin, ok := toolpath.Resolve(editor)
	if !ok {
		return nil, fmt.Errorf("handlers: cannot locate editor %q", editor)
	}
	prefixer := h.Prefixer
	if prefixer == nil {
		prefixer = ScpURLPrefixer{}
	}
	paths := prefixPaths(splitBody(req.Body), ctx.HostAlias, prefixer)
	cmd := exec.Command(bin, paths...) // nolint: gosec
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd, nil
}

// ViWaitHandler is identical to ViHandler except it waits for the
// editor to exit before the engine's 200 is sent: used by the remote
// shell's sudoedit-equivalent alias so the remote side doesn't release
// its temp file until the workstation user is done editing it.
type ViWaitHandler struct {
	ViHandler
	// Run defaults to (*exec.Cmd).Run; tests substitute a fake.
	Run func(*exec.Cmd) error
}

func (h *ViWaitHandler) Name() string { return "viwait" }

func (h *ViWaitHandler) Doc() string {
	return "Opens one or more remote paths in the workstation's editor " +
		"and waits for the editor to exit before replying."
}

func (h *ViWaitHandler) Invoke(ctx *listener.Context, req *wire.Request, conn listener.Conn) error {
	cmd, err := h.buildCmd(ctx, req)
	if err != nil {
		return err
	}
	run := h.Run
	if run == nil {
		run = (*exec.Cmd).Run
	}
	// Handler failures (non-zero editor exit) don't fail the
	// connection: the back-channel reports transport success, not
	// application success.
	_ = run(cmd)
	return nil
}

// ScpdHandler implements the "scpd" command: copy each path from the
// remote host to the workstation user's Desktop via scp(1).
type ScpdHandler struct {
	// Run defaults to (*exec.Cmd).Run; tests substitute a fake.
	Run func(*exec.Cmd) error
}

func (h *ScpdHandler) Name() string { return "scpd" }

func (h *ScpdHandler) Doc() string {
	return "Copies one or more remote paths to the workstation user's Desktop via scp."
}

func (h *ScpdHandler) Invoke(ctx *listener.Context, req *wire.Request, conn listener.Conn) error {
	bin, ok := toolpath.Resolve("scp")
	if !ok {
		return fmt.Errorf("handlers: cannot locate scp")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	desktop := path.Join(home, "Desktop")

	paths := splitBody(req.Body)
	args := make([]string, 0, len(paths)+4)
	args = append(args, "-q", "--")
	for _, p := range paths {
		args = append(args, ctx.HostAlias+":"+p)
	}
	args = append(args, desktop)

	cmd := exec.Command(bin, args...) // nolint: gosec
	run := h.Run
	if run == nil {
		run = (*exec.Cmd).Run
	}
	return run(cmd)
}

// CommandsPodHandler implements the registry introspection command: it
// streams the registry's combined documentation back as a 300
// response with Content-Type text/pod, so --help and --plugin-help on
// the client can render docs for handlers (including plugins) that
// only the listener knows about.
type CommandsPodHandler struct{}

func (h *CommandsPodHandler) Name() string { return "commands_pod" }

func (h *CommandsPodHandler) Doc() string {
	return "Lists documentation for every command this listener knows, in POD format."
}

func (h *CommandsPodHandler) Invoke(ctx *listener.Context, req *wire.Request, conn listener.Conn) error {
	doc := ctx.Registry.DocAll()
	return wire.WriteResponse(conn, &wire.Response{
		Code:        wire.CodeBodyFollows,
		ContentType: "text/pod",
		Body:        []byte(doc),
	})
}
