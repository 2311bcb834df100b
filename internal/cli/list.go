package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gzhole/faultcorpus/internal/catalog"
	"github.com/gzhole/faultcorpus/internal/config"
	"github.com/gzhole/faultcorpus/internal/fault"
	"github.com/gzhole/faultcorpus/internal/fixture"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the fixture cases in the catalog",
	Long: `List every fixture case: its category, CWE mapping, boundary and trigger.

  faultcorpus list
  faultcorpus list --format yaml`,
	Args: cobra.NoArgs,
	RunE: listCommand,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func listCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cat, err := loadCatalog(cfg, fixture.Default())
	if err != nil {
		return err
	}

	if cfg.Format != fault.FormatText {
		return fault.Encode(cmd.OutOrStdout(), cfg.Format, cat)
	}

	out := cmd.OutOrStdout()
	for _, fc := range cat.Cases {
		boundary := "none"
		if fc.Boundary != nil {
			boundary = fmt.Sprintf("%d", *fc.Boundary)
		}
		fmt.Fprintf(out, "%-17s %-26s %s\n", fc.ID, fc.Category, strings.Join(fc.CWE, ","))
		fmt.Fprintf(out, "    boundary: %s\n", boundary)
		fmt.Fprintf(out, "    trigger:  %s\n", fc.TriggerCondition)
		fmt.Fprintf(out, "    effect:   %s\n", fc.ObservableEffect)
		fmt.Fprintf(out, "    probes:   %d\n", len(fc.Probes))
	}
	return nil
}

// loadCatalog loads the configured catalog and checks that it agrees with
// the registered fixtures.
func loadCatalog(cfg *config.Config, reg *fixture.Registry) (*catalog.Catalog, error) {
	load := catalog.Load
	if cfg.DefaultCatalog() {
		load = catalog.LoadOptional
	}
	cat, err := load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if err := cat.ValidateAgainst(reg.Categories()); err != nil {
		return nil, fmt.Errorf("catalog does not match fixtures: %w", err)
	}
	return cat, nil
}
