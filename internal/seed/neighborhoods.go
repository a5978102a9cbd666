package seed

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"vecinu/internal/middleware"
	"vecinu/internal/models"
	"vecinu/internal/repository"
	"vecinu/internal/validation"

	"gopkg.in/yaml.v3"
)

//go:embed neighborhoods.yaml
var neighborhoodsYAML []byte

// NeighborhoodSpec is one entry of the neighborhood catalogue.
type NeighborhoodSpec struct {
	// Slug defaults to the slugified name.
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	City        string `yaml:"city"`
	Description string `yaml:"description"`
	// Active defaults to true when omitted.
	Active *bool `yaml:"active"`
}

type catalogue struct {
	Neighborhoods []NeighborhoodSpec `yaml:"neighborhoods"`
}

// ParseCatalogue decodes a neighborhood catalogue document.
func ParseCatalogue(raw []byte) ([]NeighborhoodSpec, error) {
	var c catalogue
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse neighborhood catalogue: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Neighborhoods))
	for i := range c.Neighborhoods {
		n := &c.Neighborhoods[i]
		if n.Name == "" || n.City == "" {
			return nil, fmt.Errorf("neighborhood catalogue entry %d: name and city are required", i)
		}
		if n.Slug == "" {
			n.Slug = validation.Slugify(n.Name)
		}
		if err := validation.ValidateNeighborhoodSlug(n.Slug); err != nil {
			return nil, fmt.Errorf("neighborhood catalogue entry %d: %w", i, err)
		}
		if _, dup := seen[n.Slug]; dup {
			return nil, fmt.Errorf("neighborhood catalogue: duplicate slug %q", n.Slug)
		}
		seen[n.Slug] = struct{}{}
	}
	return c.Neighborhoods, nil
}

// Catalogue returns the built-in neighborhood catalogue.
func Catalogue() []NeighborhoodSpec {
	specs, err := ParseCatalogue(neighborhoodsYAML)
	if err != nil {
		panic(err)
	}
	return specs
}

// Model converts the catalogue entry to a persistable neighborhood.
func (s NeighborhoodSpec) Model() *models.Neighborhood {
	n := &models.Neighborhood{
		Name:     s.Name,
		Slug:     s.Slug,
		City:     s.City,
		IsActive: s.Active == nil || *s.Active,
	}
	if s.Description != "" {
		desc := s.Description
		n.Description = &desc
	}
	return n
}

// Neighborhoods upserts every catalogue entry by slug. It is safe to run
// repeatedly: member counts are left alone.
func Neighborhoods(ctx context.Context, repo repository.NeighborhoodRepository, specs []NeighborhoodSpec) error {
	for _, spec := range specs {
		if err := repo.Upsert(ctx, spec.Model()); err != nil {
			return fmt.Errorf("upsert neighborhood %s: %w", spec.Slug, err)
		}
	}
	middleware.Logger.Info("neighborhoods seeded", slog.Int("count", len(specs)))
	return nil
}
