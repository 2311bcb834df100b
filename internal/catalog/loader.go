package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/gzhole/faultcorpus/internal/fault"
)

//go:embed cases.yaml
var defaultCases []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCases)
}

// Load reads a catalog file. An empty path yields the built-in catalog; a
// missing file is an error.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return cat, nil
}

// LoadOptional is Load for a default location the user may never have
// created: a missing file yields the built-in catalog.
func LoadOptional(path string) (*Catalog, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default()
	}
	return Load(path)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	cat.index()
	return &cat, nil
}

// Validate checks the catalog on its own: known categories, unique IDs,
// and at least one probe per case.
func (c *Catalog) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Cases))
	for _, fc := range c.Cases {
		switch {
		case fc.ID == "":
			errs = append(errs, fmt.Errorf("%w: case without id", ErrInvalidCatalog))
			continue
		case seen[fc.ID]:
			errs = append(errs, fmt.Errorf("%w: duplicate case %q", ErrInvalidCatalog, fc.ID))
		}
		seen[fc.ID] = true

		if !fc.Category.Valid() {
			errs = append(errs, fmt.Errorf("%w: case %q: unknown category %q", ErrInvalidCatalog, fc.ID, fc.Category))
		}
		if len(fc.Probes) == 0 {
			errs = append(errs, fmt.Errorf("%w: case %q has no probes", ErrInvalidCatalog, fc.ID))
		}
	}
	return errors.Join(errs...)
}

// ValidateAgainst checks that every registered fixture has exactly one
// case and that each case declares the fixture's own category.
func (c *Catalog) ValidateAgainst(fixtures map[string]fault.Category) error {
	var errs []error
	covered := make(map[string]bool, len(c.Cases))
	for _, fc := range c.Cases {
		want, ok := fixtures[fc.ID]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: case %q has no fixture", ErrInvalidCatalog, fc.ID))
			continue
		}
		if fc.Category != want {
			errs = append(errs, fmt.Errorf("%w: case %q declares %s, fixture encodes %s",
				ErrInvalidCatalog, fc.ID, fc.Category, want))
		}
		covered[fc.ID] = true
	}
	for id := range fixtures {
		if !covered[id] {
			errs = append(errs, fmt.Errorf("%w: fixture %q has no case", ErrInvalidCatalog, id))
		}
	}
	return errors.Join(errs...)
}
