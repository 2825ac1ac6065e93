package geo

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTable(t *testing.T) {
	fc := loadFixture(t, "companies.geojson")

	table, err := BuildTable(fc.Features)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "company", "employees", "manager"}, table.Columns)
	require.Len(t, table.Rows, 3)
	assert.Equal(t, []any{"Helvetia Location", "Helvetia Insurance", json.Number("150"), nil}, table.Rows[0].Values)
	assert.Equal(t, []any{"AXA Branch", "AXA <Services> & Co", nil, "Müller"}, table.Rows[2].Values)
	assert.Equal(t, 2, table.Rows[2].Index)
	assert.Equal(t, 0, table.DefaultFilterColumn())
}

func TestBuildTableNoProperties(t *testing.T) {
	_, err := BuildTable(nil)
	assert.True(t, errors.Is(err, ErrNoProperties))

	_, err = BuildTable([]*Feature{pointFeature(0, 0)})
	assert.True(t, errors.Is(err, ErrNoProperties))
}

func TestDefaultFilterColumnWithoutName(t *testing.T) {
	table, err := BuildTable([]*Feature{pointFeature(0, 0, "id", 1, "label", "x")})
	require.NoError(t, err)
	assert.Equal(t, 0, table.DefaultFilterColumn())

	table, err = BuildTable([]*Feature{pointFeature(0, 0, "id", 1, "name", "x")})
	require.NoError(t, err)
	assert.Equal(t, 1, table.DefaultFilterColumn())
}

func TestTableFilter(t *testing.T) {
	fc := loadFixture(t, "companies.geojson")
	table, err := BuildTable(fc.Features)
	require.NoError(t, err)

	filtered, count, err := table.Filter("company", "HELVETIA")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, "Helvetia Location", filtered.Rows[0].Values[0])

	all, count, err := table.Filter("company", "")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Same(t, table, all)

	none, count, err := table.Filter("nonexistent", "x")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, table.Columns, none.Columns)
	assert.Empty(t, none.Rows)

	_, _, err = table.Filter("company", "[")
	assert.True(t, errors.Is(err, ErrInvalidPattern))
}

func TestTableFilterMatchesFeatureFilter(t *testing.T) {
	fc := loadFixture(t, "companies.geojson")
	table, err := BuildTable(fc.Features)
	require.NoError(t, err)

	for _, pattern := range []string{"o", "^B", "200", "x{2}", "Group$"} {
		features, err := Filter(fc.Features, "company", pattern)
		require.NoError(t, err)
		_, count, err := table.Filter("company", pattern)
		require.NoError(t, err)
		assert.Equal(t, len(features), count, pattern)
	}
}

func TestTableSelect(t *testing.T) {
	fc := loadFixture(t, "companies.geojson")
	table, err := BuildTable(fc.Features)
	require.NoError(t, err)

	sel := table.Select([]string{"employees", "bogus", "name"})
	assert.Equal(t, []string{"employees", "name"}, sel.Columns)
	assert.Equal(t, []any{json.Number("200"), "Baloise Office"}, sel.Rows[1].Values)
	assert.Equal(t, []any{nil, "AXA Branch"}, sel.Rows[2].Values)
	assert.Equal(t, table.Rows[2].Index, sel.Rows[2].Index)
}
