package commands

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/event-timeline/internal/chartimg"
	"github.com/klabast/wb-services/event-timeline/internal/locale"
	"github.com/klabast/wb-services/event-timeline/internal/spreadsheet"
	"github.com/klabast/wb-services/event-timeline/internal/timeline"
)

func newRenderCmd() *cobra.Command {
	var output, format, lang string
	var width int

	cmd := &cobra.Command{
		Use:   "render <file.xlsx>",
		Short: "Render a spreadsheet as chart JSON, PNG or SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			if format != "json" && format != "png" && format != "svg" {
				return fmt.Errorf("invalid format: %s (must be 'json', 'png' or 'svg')", format)
			}

			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read spreadsheet: %w", err)
			}
			table, err := spreadsheet.Decode(raw)
			if err != nil {
				return err
			}
			chart := timeline.Render(table, timeline.WithLabels(locale.Lookup(lang).Chart))

			data, err := encodeChart(chart, format, width)
			if err != nil {
				return err
			}
			if output == "" {
				output = "timeline." + format
				if format == "json" {
					output = "-"
				}
			}
			return writeOutput(cmd, output, data)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json, png or svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default stdout for json, timeline.<format> otherwise)")
	cmd.Flags().StringVar(&lang, "lang", "zh", "Chart label language (zh, en)")
	cmd.Flags().IntVar(&width, "width", chartimg.DefaultWidth, "Image width in pixels")
	return cmd
}

func encodeChart(chart timeline.Chart, format string, width int) ([]byte, error) {
	if format == "json" {
		data, err := sonic.MarshalIndent(chart, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode chart: %w", err)
		}
		return append(data, '\n'), nil
	}

	var buf bytes.Buffer
	if err := chartimg.Render(&buf, chart, chartimg.Format(format), width); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// writeOutput writes data to path, or to the command output for "-".
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
