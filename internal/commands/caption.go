package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/klabast/wb-services/event-timeline/internal/caption"
)

const defaultTerminalWidth = 80

func newCaptionCmd() *cobra.Command {
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "caption",
		Short: "Print the dashboard caption centered in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			return printCaption(out, terminalWidth(out), delay)
		},
	}

	cmd.Flags().DurationVar(&delay, "delay", 0, "Pause between lines, e.g. 2s")
	return cmd
}

func printCaption(w io.Writer, width int, delay time.Duration) error {
	for i, line := range caption.Produce(0) {
		if i > 0 && delay > 0 {
			time.Sleep(delay)
		}
		if _, err := fmt.Fprintln(w, center(line.Text(), width)); err != nil {
			return err
		}
	}
	return nil
}

// terminalWidth returns the column count of w when it is a terminal.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols > 0 {
			return cols
		}
	}
	return defaultTerminalWidth
}

// center pads s on the left so that it sits in the middle of width columns.
// Wide characters count as two columns.
func center(s string, width int) string {
	pad := (width - runewidth.StringWidth(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
