package service

import (
	_ "embed"
	"fmt"

	"github.com/softmind/personabot/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed archetypes.yaml
var archetypesYAML []byte

// ArchetypeCatalog holds the preset personality templates new characters
// are seeded from.
type ArchetypeCatalog struct {
	ordered []domain.Archetype
	byKey   map[string]domain.Archetype
}

func LoadArchetypes() (*ArchetypeCatalog, error) {
	var file struct {
		Archetypes []domain.Archetype `yaml:"archetypes"`
	}
	if err := yaml.Unmarshal(archetypesYAML, &file); err != nil {
		return nil, fmt.Errorf("parse archetypes: %w", err)
	}
	if len(file.Archetypes) == 0 {
		return nil, fmt.Errorf("archetype catalog is empty")
	}

	c := &ArchetypeCatalog{
		ordered: file.Archetypes,
		byKey:   make(map[string]domain.Archetype, len(file.Archetypes)),
	}
	for _, a := range file.Archetypes {
		if a.Key == "" || a.Personality == "" {
			return nil, fmt.Errorf("archetype %q missing key or personality", a.Title)
		}
		c.byKey[a.Key] = a
	}
	return c, nil
}

func (c *ArchetypeCatalog) Get(key string) (domain.Archetype, error) {
	a, ok := c.byKey[key]
	if !ok {
		return domain.Archetype{}, domain.ErrArchetypeUnknown
	}
	return a, nil
}

// List returns the archetypes in catalog order.
func (c *ArchetypeCatalog) List() []domain.Archetype {
	return c.ordered
}
