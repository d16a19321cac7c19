package cmd

import "os"

var signals = []os.Signal{os.Interrupt}
