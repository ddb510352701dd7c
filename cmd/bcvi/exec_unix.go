// +build linux darwin freebsd

package main

import "syscall"

// syscallExec replaces the current process image with argv[0]:
// --wrap-ssh never returns on success, it becomes ssh.
func syscallExec(path string, argv []string, envv []string) error {
	return syscall.Exec(path, argv, envv) // nolint: gosec
}
