// Package sshwrap implements the SSH argument rewriting bcvi's
// --wrap-ssh mode performs before exec'ing the real ssh(1): find the
// target host, compute the host alias to embed in BCVI_CONF, and
// prepend a reverse port forward built from the caller-chosen
// local/remote back-channel ports.
package sshwrap

import (
	"strconv"
	"strings"
)

// optsWithArg is the fixed set of SSH option letters that consume a
// following argument.
var optsWithArg = map[byte]bool{
	'b': true, 'c': true, 'D': true, 'e': true, 'F': true, 'i': true,
	'L': true, 'l': true, 'm': true, 'O': true, 'o': true, 'p': true,
	'R': true, 'S': true,
}

// Config carries the values the rewrite needs beyond the raw argv:
// the caller-chosen remote/local ports (already resolved from
// --port/the config store/the default formula).
type Config struct {
	RemotePort int
	LocalPort  int
}

// Result is the outcome of a rewrite: on success, a new argv with
// "-R <RemotePort>:localhost:<LocalPort>" prepended (the original
// host/-l tokens are left exactly as the user typed them — ssh itself
// still needs -l to know the remote username) plus the Alias to embed
// in BCVI_CONF (user@host when a username was captured and the host
// token didn't already carry one). On zero or more than one host
// candidate, Args is the original argv unchanged and Warning is set
// (the caller execs ssh as given).
type Result struct {
	Args    []string
	Alias   string
	Warning string
}

// Rewrite scans args as the user typed them to ssh and identifies the
// single host candidate.
func Rewrite(args []string, cfg Config) Result {
	var user string
	var hosts []int

	i := 0
	for i < len(args) {
		a := args[i]
		switch {
		case a == "--":
			i++
		case len(a) >= 2 && a[0] == '-' && a != "-":
			letter := a[1]
			if letter == 'l' {
				if len(a) > 2 {
					user = a[2:]
					i++
					continue
				}
				if i+1 < len(args) {
					user = args[i+1]
					i += 2
					continue
				}
			}
			if optsWithArg[letter] {
				if len(a) > 2 {
					// "-oFoo" style inline value
					i++
					continue
				}
				i += 2
				continue
			}
			i++
		default:
			hosts = append(hosts, i)
			i++
		}
	}

	if len(hosts) != 1 {
		return Result{Args: args, Warning: warnHostCount(len(hosts))}
	}

	host := args[hosts[0]]
	alias := host
	if user != "" && !strings.Contains(host, "@") {
		alias = user + "@" + host
	}

	out := make([]string, 0, 2+len(args))
	out = append(out, "-R", formatForward(cfg.RemotePort, cfg.LocalPort))
	out = append(out, args...)

	return Result{Args: out, Alias: alias}
}

func formatForward(remotePort, localPort int) string {
	return strconv.Itoa(remotePort) + ":localhost:" + strconv.Itoa(localPort)
}

func warnHostCount(n int) string {
	if n == 0 {
		return "bcvi: could not identify an SSH target host; passing arguments through unchanged"
	}
	return "bcvi: found multiple possible SSH target hosts; passing arguments through unchanged"
}
