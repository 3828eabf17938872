// Rescale Browse - terminal browser for a Rescale file service.
//
// - No args + interactive terminal → interactive browser
// - No args + piped/redirected → CLI help
// - Subcommands/flags → CLI mode
package main

import (
	"os"

	"golang.org/x/term"

	"github.com/rescale/rescale-browse/internal/cli"
)

func main() {
	if err := cli.Execute(resolveArgs(os.Args[1:], isInteractive())); err != nil {
		os.Exit(1)
	}
}

// resolveArgs chooses the command to run. With no arguments an interactive
// terminal opens the browser; anything else goes to the CLI unchanged.
func resolveArgs(args []string, interactive bool) []string {
	if len(args) == 0 && interactive {
		return []string{"browse"}
	}
	return args
}

// isInteractive reports whether both stdin and stdout are terminals.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
