package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"
)

// copyToClipboard prints value on stdout and, when stderr is a terminal,
// asks the terminal to place it on the system clipboard.
func copyToClipboard(value string, enabled bool) {
	fmt.Println(value)
	if !enabled || !term.IsTerminal(int(os.Stderr.Fd())) {
		return
	}
	writeOSC52(os.Stderr, value, os.Getenv("TERM"), os.Getenv("TMUX") != "")
}

func writeOSC52(w io.Writer, value, termName string, inTmux bool) {
	seq := osc52.New(value)
	switch {
	case inTmux:
		seq = seq.Tmux()
	case len(termName) >= 6 && termName[:6] == "screen":
		seq = seq.Screen()
	}
	_, _ = seq.WriteTo(w)
}
