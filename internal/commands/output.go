package commands

import (
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/term"
)

const defaultWidth = 80

func (c Commands) output(content string) error {
	if c.config.Pager == "false" || !isTerminal(c.out) {
		_, err := io.WriteString(c.out, content)
		return err
	}

	return outputToPager(c.config.Pager, content)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func termWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultWidth
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}

	return width
}

func outputToPager(pager string, content string) error {
	if pager == "" {
		pager = os.Getenv("PAGER")
	}
	if pager == "" {
		pager = "less -r"
	}

	pa := strings.Fields(pager)
	if len(pa) == 0 {
		_, err := io.WriteString(os.Stdout, content)
		return err
	}

	cmd := exec.Command(pa[0], pa[1:]...)
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout

	return cmd.Run()
}
