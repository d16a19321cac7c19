// +build !windows

package cmd

import (
	"os"

	"golang.org/x/sys/unix"
)

var signals = []os.Signal{os.Interrupt, unix.SIGQUIT, unix.SIGTERM}
