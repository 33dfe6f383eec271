package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerocode/internal/catalog"
	"aerocode/internal/domain"
)

func TestCatalogShape(t *testing.T) {
	require.Equal(t, 36, catalog.Len())
	total := 0
	for _, g := range catalog.Groups {
		n := len(catalog.ByGroup(g))
		assert.NotZero(t, n, g)
		total += n
	}
	assert.Equal(t, 36, total)
	assert.Equal(t, 36, len(catalog.ByOrigin(domain.OriginDomestic))+len(catalog.ByOrigin(domain.OriginImported)))

	for i, e := range catalog.All() {
		assert.Equal(t, i, e.Index)
	}
}

func TestGet(t *testing.T) {
	e, ok := catalog.Get(0)
	require.True(t, ok)
	assert.Equal(t, "Pratt & Whitney", e.Supplier)
	assert.Equal(t, domain.OriginImported, e.Origin)

	_, ok = catalog.Get(36)
	assert.False(t, ok)
	_, ok = catalog.Get(-1)
	assert.False(t, ok)
}

func TestSearch(t *testing.T) {
	assert.Empty(t, catalog.Search("  "))

	hits := catalog.Search("honeywell")
	require.Len(t, hits, 3)
	assert.Equal(t, "Flight Control System", hits[0].Name)

	assert.Len(t, catalog.Search("landing gear"), 2)
	assert.True(t, catalog.Known("winglet", ""))
	assert.False(t, catalog.Known("winglet", "Boeing"))
}

func TestAllReturnsCopy(t *testing.T) {
	all := catalog.All()
	all[0].Name = "changed"
	e, _ := catalog.Get(0)
	assert.NotEqual(t, "changed", e.Name)
}
