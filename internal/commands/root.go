// Package commands implements the event-timeline command line.
package commands

import (
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/event-timeline/internal/config"
)

// NewRootCmd creates the root command. Without a subcommand it serves the
// dashboard; static holds the embedded page files.
func NewRootCmd(static fs.FS) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "event-timeline",
		Short: "Interactive timeline dashboard for dated events",
		Long: `event-timeline serves a single-page dashboard that plots dated events by
category, accepts spreadsheet uploads that replace the shown events and offers
a template spreadsheet for download.

Examples:
  event-timeline                                # Serve on 0.0.0.0:6005
  event-timeline --addr :8080 --locale en       # Serve on :8080 with English labels
  event-timeline template -o events.xlsx        # Write the template spreadsheet
  event-timeline render events.xlsx -f png      # Render a spreadsheet to timeline.png`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, configPath, static)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	config.AddFlags(cmd.Flags())

	cmd.AddCommand(newTemplateCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newCaptionCmd())

	return cmd
}
