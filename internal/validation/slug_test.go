package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateNeighborhoodSlug(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		slug string
		ok   bool
	}{
		{name: "simple", slug: "centru", ok: true},
		{name: "with hyphen and digit", slug: "sector-3", ok: true},
		{name: "too short", slug: "a", ok: false},
		{name: "uppercase", slug: "Centru", ok: false},
		{name: "underscore", slug: "gheorgheni_nord", ok: false},
		{name: "leading hyphen", slug: "-centru", ok: false},
		{name: "trailing hyphen", slug: "centru-", ok: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateNeighborhoodSlug(tc.slug)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "manastur", Slugify("Mănăștur"))
	assert.Equal(t, "gheorgheni-nord", Slugify("  Gheorgheni Nord "))
	assert.Equal(t, "sector-3", Slugify("Sector 3!"))
}
