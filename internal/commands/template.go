package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/event-timeline/internal/locale"
	"github.com/klabast/wb-services/event-timeline/internal/spreadsheet"
)

func newTemplateCmd() *cobra.Command {
	var output, lang string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the template spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := spreadsheet.EncodeTemplateFor(locale.Lookup(lang))
			if err != nil {
				return fmt.Errorf("encode template: %w", err)
			}
			return writeOutput(cmd, output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", spreadsheet.TemplateFilename, "Output file, - for stdout")
	cmd.Flags().StringVar(&lang, "lang", "zh", "Template language (zh, en)")
	return cmd
}
