// Package client implements bcvi's remote-side client engine: load
// BCVI_CONF, dial the back-channel, translate paths, send a request,
// and interpret the response.
//
// The shape of Run mirrors xs/xs.go's main(): parse options, connect,
// send, read the reply, map the result to a process exit status.
package client

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"blitter.com/go/bcvi/wire"
)

// Conf is the parsed BCVI_CONF connection descriptor.
type Conf struct {
	HostAlias      string
	GatewayAddress string
	Port           int
	AuthKey        string
}

// ParseConf parses the colon-separated "alias:gateway:port:auth_key"
// tuple. A missing or malformed value is reported as an error so the
// caller can fail fast before opening any socket.
func ParseConf(raw string) (*Conf, error) {
	fields := strings.Split(raw, ":")
	if len(fields) != 4 {
		return nil, fmt.Errorf("malformed BCVI_CONF (want 4 colon-separated fields, got %d)", len(fields))
	}
	port, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("malformed BCVI_CONF port %q: %w", fields[2], err)
	}
	for i, name := range []string{"alias", "gateway", "port", "auth_key"} {
		if fields[i] == "" {
			return nil, fmt.Errorf("malformed BCVI_CONF: %s is empty", name)
		}
	}
	return &Conf{
		HostAlias:      fields[0],
		GatewayAddress: fields[1],
		Port:           port,
		AuthKey:        fields[3],
	}, nil
}

// Options configures a single client invocation.
type Options struct {
	Conf          *Conf
	Command       string // default "vi"
	NoPathXlate   bool
	Cwd           string // working directory for path translation; os.Getwd() if empty
	Paths         []string
	VersionOnly   bool

	Stdout io.Writer
	Stderr io.Writer

	// Dial allows tests to substitute a fake connection.
	Dial func(network, addr string) (net.Conn, error)
}

// Result is what Run found out, for callers that want more than an
// exit code (e.g. --help rendering the server's 300 body).
type Result struct {
	ExitCode     int
	ServerVersion string
	BodyContentType string
	Body         []byte
}

// Run executes one client request/response cycle: dial, send, read.
func Run(opts Options) (Result, error) {
	if opts.Dial == nil {
		opts.Dial = net.Dial
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	addr := net.JoinHostPort(opts.Conf.GatewayAddress, strconv.Itoa(opts.Conf.Port))
	conn, err := opts.Dial("tcp", addr)
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close() // nolint: errcheck

	r := bufio.NewReader(conn)
	version, err := wire.ReadGreeting(r)
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("unexpected response: %w", err)
	}

	if opts.VersionOnly {
		return Result{ExitCode: 0, ServerVersion: version}, nil
	}

	command := opts.Command
	if command == "" {
		command = "vi"
	}

	body := buildBody(opts.Paths, opts.Cwd, opts.NoPathXlate)

	req := &wire.Request{
		AuthKey:   opts.Conf.AuthKey,
		HostAlias: opts.Conf.HostAlias,
		Command:   command,
		Body:      body,
	}
	if err := wire.WriteRequest(conn, req); err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("send request: %w", err)
	}

	resp, err := wire.ReadResponse(r)
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("unexpected response: %w", err)
	}

	switch resp.Code {
	case wire.CodeSuccess:
		return Result{ExitCode: 0, ServerVersion: version}, nil
	case wire.CodeBodyFollows:
		return Result{
			ExitCode:        0,
			ServerVersion:   version,
			BodyContentType: resp.ContentType,
			Body:            resp.Body,
		}, nil
	default:
		msg := resp.Message
		if msg == "" {
			msg = wire.Message(resp.Code)
		}
		return Result{ExitCode: 1}, fmt.Errorf("%d %s", resp.Code, msg)
	}
}

// buildBody joins the translated path list with a trailing LF per
// path. A "+N" line-number directive is passed through unchanged and
// never translated.
func buildBody(paths []string, cwd string, noXlate bool) []byte {
	var b strings.Builder
	for _, p := range paths {
		b.WriteString(TranslatePath(p, cwd, noXlate))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

// TranslatePath converts p to an absolute path against cwd, unless
// noXlate is set or p is a "+N" line-number directive. An
// already-absolute path is returned unchanged (idempotent).
func TranslatePath(p string, cwd string, noXlate bool) string {
	if isLineDirective(p) {
		return p
	}
	if noXlate {
		return p
	}
	if filepath.IsAbs(p) {
		return p
	}
	if cwd == "" {
		cwd, _ = os.Getwd() // nolint: errcheck
	}
	return filepath.Join(cwd, p)
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
