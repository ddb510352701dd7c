// Package listener implements bcvi's workstation-side back-channel
// engine: a single-threaded accept loop that authenticates each
// connection against a process-wide auth key and dispatches to a
// registered command handler in its own goroutine.
//
// Grounded on xsd/xsd.go's main(): flag-driven startup, a syslog
// Writer plus a stdlib log.Logger silenced unless debugging, and an
// accept loop that spawns one goroutine per connection so a handler
// that blocks (or crashes) never stalls the next Accept().
package listener

import (
	"bufio"
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sys/unix"

	"blitter.com/go/bcvi"
	"blitter.com/go/bcvi/bcviconf"
	"blitter.com/go/bcvi/insult"
	"blitter.com/go/bcvi/wire"
)

// Conn is the subset of net.Conn a Handler needs to stream a body
// response (commands_pod's 300) or block on a child process. Kept
// narrow so tests can hand handlers a bytes.Buffer-backed fake.
type Conn interface {
	Write(p []byte) (int, error)
}

// Context is the immutable-after-startup state shared by every
// connection's handler invocation: the current auth key, the bound
// port, and the handler registry. Every per-connection goroutine gets
// the same pointer, which is never mutated after Start builds it;
// serveConn takes its own per-request copy before setting HostAlias,
// so no lock is needed between workers.
type Context struct {
	AuthKey   string
	Port      int
	HostAlias string // set per-request from the client's Host-Alias header, not here
	Registry  *Registry
	Log       func(format string, args ...interface{})
}

// Options configures Start.
type Options struct {
	BindAddress string // default "127.0.0.1"
	Port        int    // 0 selects bcvi.DefaultPort(os.Getuid())
	ReuseAuth   bool
	Registry    *Registry
	Store       *bcviconf.Store
	Log         func(format string, args ...interface{})

	// Listen allows tests to substitute a fake listener.
	Listen func(network, address string) (net.Listener, error)
	// Kill allows tests to substitute a fake signal sender.
	Kill func(pid int, sig unix.Signal) error
}

// Start runs bcvi's listener startup sequence and then the accept
// loop. It returns only on a fatal startup error (bind failure after
// killing the prior listener) or when lis is closed.
func Start(opts Options) error {
	if opts.BindAddress == "" {
		opts.BindAddress = "127.0.0.1"
	}
	if opts.Port == 0 {
		opts.Port = bcvi.DefaultPort(os.Getuid())
	}
	if opts.Listen == nil {
		opts.Listen = net.Listen
	}
	if opts.Kill == nil {
		opts.Kill = unix.Kill
	}
	if opts.Log == nil {
		opts.Log = func(string, ...interface{}) {}
	}
	if opts.Registry == nil {
		opts.Registry = NewRegistry()
	}

	killPreviousListener(opts.Store, opts.Kill, opts.Log)

	if err := writePID(opts.Store); err != nil {
		return fmt.Errorf("write listener pid: %w", err)
	}

	key, err := resolveAuthKey(opts.Store, opts.ReuseAuth)
	if err != nil {
		return fmt.Errorf("generate auth key: %w", err)
	}
	if opts.Store != nil {
		if err := opts.Store.WriteKey(key); err != nil {
			return fmt.Errorf("write listener key: %w", err)
		}
	}

	addr := net.JoinHostPort(opts.BindAddress, strconv.Itoa(opts.Port))
	lis, err := opts.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	defer lis.Close() // nolint: errcheck

	if opts.Store != nil {
		if err := opts.Store.WritePort(strconv.Itoa(opts.Port)); err != nil {
			return fmt.Errorf("write listener port: %w", err)
		}
	}

	ctx := &Context{
		AuthKey:  key,
		Port:     opts.Port,
		Registry: opts.Registry,
		Log:      opts.Log,
	}

	opts.Log("bcvi-listener: ready on %s, pid %d", addr, os.Getpid())
	return acceptLoop(lis, ctx)
}

// killPreviousListener signals any prior listener recorded in the
// config store to exit before this one binds: SIGHUP, wait 1s, SIGHUP
// again, then SIGKILL twice with 1s waits. An absent process is
// success; "no such process" or permission-denied both mean the
// recorded pid is stale and can be ignored.
func killPreviousListener(store *bcviconf.Store, kill func(int, unix.Signal) error, log func(string, ...interface{})) {
	if store == nil {
		return
	}
	pidStr, ok := store.ReadPID()
	if !ok {
		return
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || pid <= 0 {
		return
	}

	signals := []unix.Signal{unix.SIGHUP, unix.SIGHUP, unix.SIGKILL, unix.SIGKILL}
	for _, sig := range signals {
		if err := kill(pid, sig); err != nil {
			return // ESRCH/EPERM: prior listener already gone or stale
		}
		log("bcvi-listener: sent %v to prior listener pid %d", sig, pid)
		time.Sleep(time.Second)
	}
}

func writePID(store *bcviconf.Store) error {
	if store == nil {
		return nil
	}
	return store.WritePID(strconv.Itoa(os.Getpid()))
}

// resolveAuthKey generates a fresh key (blake2b-256 over self-address,
// pid, wall-clock, and a random nonce) unless reuse is requested and a
// previous key is present on disk.
func resolveAuthKey(store *bcviconf.Store, reuse bool) (string, error) {
	if reuse && store != nil {
		if prev, ok := store.ReadKey(); ok && prev != "" {
			return prev, nil
		}
	}

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	seed := fmt.Sprintf("%s|%d|%d|%x", selfAddress(), os.Getpid(), time.Now().UnixNano(), nonce)
	sum := blake2b.Sum256([]byte(seed))
	return fmt.Sprintf("%x", sum), nil
}

func selfAddress() string {
	host, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return host
}

// acceptLoop is the single-threaded accept loop: each connection is
// handed to an isolated goroutine immediately, so a slow or crashing
// handler never blocks the next Accept(). Transient accept errors are
// logged and retried; permanent ones end the loop.
func acceptLoop(lis net.Listener, ctx *Context) error {
	for {
		conn, err := lis.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Temporary() { // nolint: staticcheck
				ctx.Log("bcvi-listener: transient accept error: %v", err)
				continue
			}
			return err
		}
		go serveConn(conn, ctx)
	}
}

// serveConn implements the per-connection sequence: greeting, header
// read, auth check, dispatch, final response. Any failure ends this
// connection only and never propagates to the accept loop.
func serveConn(conn net.Conn, ctx *Context) {
	defer conn.Close() // nolint: errcheck

	if err := wire.WriteGreeting(conn, bcvi.Version); err != nil {
		ctx.Log("bcvi-listener: greeting write failed: %v", err)
		return
	}

	r := bufio.NewReader(conn)
	req, err := wire.ReadRequest(r)
	if err != nil {
		ctx.Log("bcvi-listener: request read failed: %v", err)
		return
	}

	if !authKeyEqual(req.AuthKey, ctx.AuthKey) {
		_ = wire.WriteResponse(conn, &wire.Response{Code: wire.CodeAuthDenied})
		if isatty.IsTerminal(os.Stderr.Fd()) {
			fmt.Fprintf(os.Stderr, "bcvi: rejected request from %q: bad auth key. %s\n",
				req.HostAlias, insult.GetSentence())
		}
		ctx.Log("bcvi-listener: auth denied for host-alias %q", req.HostAlias)
		return
	}

	handler, ok := ctx.Registry.Lookup(req.Command)
	if !ok {
		_ = wire.WriteResponse(conn, &wire.Response{Code: wire.CodeUnknownCommand})
		ctx.Log("bcvi-listener: unrecognised command %q from %q", req.Command, req.HostAlias)
		return
	}

	reqCtx := *ctx
	reqCtx.HostAlias = req.HostAlias

	terminal := &terminalResponse{}
	if err := handler.Invoke(&reqCtx, req, &terminalConn{Conn: conn, sent: terminal}); err != nil {
		ctx.Log("bcvi-listener: handler %q failed for %q: %v", req.Command, req.HostAlias, err)
		return
	}
	if !terminal.sent {
		_ = wire.WriteResponse(conn, &wire.Response{Code: wire.CodeSuccess})
	}
}

// authKeyEqual compares keys in constant time: the keys are
// equal-length hex digests in the normal case, but a length mismatch
// (wrong key entirely) must not short-circuit the comparison time in
// a way that leaks length.
func authKeyEqual(a, b string) bool {
	diff := len(a) ^ len(b)
	for i := 0; i < len(b); i++ {
		var c byte
		if i < len(a) {
			c = a[i]
		}
		diff |= int(c ^ b[i])
	}
	return diff == 0
}

// terminalResponse tracks whether a handler has already written its
// own terminal response (a 300/body), so serveConn knows whether to
// still send the default 200 after Invoke returns.
type terminalResponse struct {
	sent bool
}

// terminalConn wraps a net.Conn so a handler's WriteResponse call
// marks the terminal-response flag the engine checks afterward.
type terminalConn struct {
	net.Conn
	sent *terminalResponse
}

func (c *terminalConn) Write(p []byte) (int, error) {
	c.sent.sent = true
	return c.Conn.Write(p)
}
