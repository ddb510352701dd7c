package main

import (
	"fmt"
	"os"
	"os/exec"
)

// runInstall implements --install: copy this executable to each given
// host and invoke --add-aliases remotely over ssh. Both scp and ssh
// are opaque collaborators invoked by name — this is pure process
// plumbing, no protocol of its own.
func runInstall(hosts []string) {
	if len(hosts) == 0 {
		fmt.Fprintln(os.Stderr, "bcvi: --install requires at least one host")
		os.Exit(1)
	}

	self, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "bcvi: cannot locate own executable: %v\n", err) // nolint: errcheck
		os.Exit(1)
	}

	status := 0
	for _, host := range hosts {
		if err := installOnHost(self, host); err != nil {
			fmt.Fprintf(os.Stderr, "bcvi: install on %s: %v\n", host, err) // nolint: errcheck
			status = 1
			continue
		}
		fmt.Printf("bcvi: installed on %s\n", host)
	}
	os.Exit(status)
}

func installOnHost(self, host string) error {
	scpBin, err := exec.LookPath("scp")
	if err != nil {
		return err
	}
	cp := exec.Command(scpBin, "-q", self, host+":bin/bcvi") // nolint: gosec
	cp.Stdout = os.Stdout
	cp.Stderr = os.Stderr
	if err := cp.Run(); err != nil {
		return fmt.Errorf("copy executable: %w", err)
	}

	sshBin, err := exec.LookPath("ssh")
	if err != nil {
		return err
	}
	remote := exec.Command(sshBin, host, "bin/bcvi", "--add-aliases") // nolint: gosec
	remote.Stdout = os.Stdout
	remote.Stderr = os.Stderr
	if err := remote.Run(); err != nil {
		return fmt.Errorf("install aliases: %w", err)
	}
	return nil
}
