package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// runPager pipes text into pagerPath's stdin and waits for it to
// exit, falling back to a raw dump if the pager itself can't start.
func runPager(pagerPath, text string) {
	cmd := exec.Command(pagerPath) // nolint: gosec
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		fmt.Print(text)
	}
}
