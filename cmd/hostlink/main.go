// Command hostlink runs the remote-access host without a window: POSIX
// signals stand in for the host's lifecycle events and the browser is the
// presentation surface.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
