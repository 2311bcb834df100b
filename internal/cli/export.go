package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gzhole/faultcorpus/internal/console"
	"github.com/gzhole/faultcorpus/internal/fault"
	"github.com/gzhole/faultcorpus/internal/fixture"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the case catalog for downstream tools",
	Long: `Write the case catalog, with boundaries and probes, as YAML, JSON or
MessagePack. Text is not an export format; it is treated as YAML.

  faultcorpus export --format json --out cases.json
  faultcorpus export --format msgpack --out cases.msgpack`,
	Args: cobra.NoArgs,
	RunE: exportCommand,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(exportCmd)
}

func exportCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg, fixture.Default())
	if err != nil {
		return err
	}

	f := cfg.Format
	if f == fault.FormatText {
		f = fault.FormatYAML
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		file, err := os.OpenFile(exportOut, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer file.Close()
		w = file
	} else if f == fault.FormatMsgpack && console.IsTerminal(w) {
		return errors.New("refusing to write msgpack to a terminal; use --out")
	}

	if err := fault.Encode(w, f, cat); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return nil
}
