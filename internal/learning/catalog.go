package learning

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Concept is one study topic in the catalog. Tags connect it to the
// libraries it is relevant for.
type Concept struct {
	ID      string   `yaml:"id"`
	Title   string   `yaml:"title"`
	Level   Level    `yaml:"level"`
	Tags    []string `yaml:"tags"`
	Summary string   `yaml:"summary"`
}

// Catalog is the set of concepts available for matching.
type Catalog struct {
	Concepts []Concept `yaml:"concepts"`
}

// DefaultCatalog returns the catalog compiled into the binary.
func DefaultCatalog() (Catalog, error) {
	return parseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog from the given YAML file. An empty path
// yields the built-in default.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from config
	if err != nil {
		return Catalog{}, fmt.Errorf("reading concept catalog %s: %w", path, err)
	}
	catalog, err := parseCatalog(data)
	if err != nil {
		return Catalog{}, fmt.Errorf("parsing concept catalog %s: %w", path, err)
	}
	return catalog, nil
}

func parseCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("unmarshaling catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(catalog.Concepts))
	for i, concept := range catalog.Concepts {
		if concept.ID == "" {
			return Catalog{}, fmt.Errorf("concept %d: missing id", i)
		}
		if _, dup := seen[concept.ID]; dup {
			return Catalog{}, fmt.Errorf("concept %q: duplicate id", concept.ID)
		}
		seen[concept.ID] = struct{}{}
		if _, err := ParseLevel(string(concept.Level)); err != nil {
			return Catalog{}, fmt.Errorf("concept %q: %w", concept.ID, err)
		}
	}
	return catalog, nil
}
