package templates

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeblew999/geo-filter/internal/geo"
)

func sampleTable(t *testing.T) *geo.Table {
	t.Helper()
	fc, err := geo.DecodeCollection([]byte(`{"features": [
		{"type": "Feature", "geometry": null, "properties": {"name": "AXA <Geneva>", "employees": 120}},
		{"type": "Feature", "geometry": null, "properties": {"name": "Baloise", "employees": null}}
	]}`))
	require.NoError(t, err)
	table, err := geo.BuildTable(fc.Features)
	require.NoError(t, err)
	return table
}

func TestRenderPreview(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	table := sampleTable(t)
	html, err := r.Render("preview-table", NewPreviewData(table, 2, 2, false))
	require.NoError(t, err)

	assert.Contains(t, html, "All features: 2")
	assert.Contains(t, html, "<th>employees</th>")
	assert.Contains(t, html, "AXA &lt;Geneva&gt;")
	assert.Contains(t, html, "<td>120</td>")
	assert.Contains(t, html, `data-index="1"`)
}

func TestRenderPreviewEmpty(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	filtered, n, err := sampleTable(t).Filter("name", "zzz")
	require.NoError(t, err)

	html, err := r.Render("preview-table", NewPreviewData(filtered, n, 2, true))
	require.NoError(t, err)
	assert.Contains(t, html, "Filtered features: 0 / 2")
	assert.Contains(t, html, "No features match this filter.")
}

func TestRenderToBufferUnknownTemplate(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, r.RenderToBuffer(&buf, "missing", nil))
}

func TestReloadFromDir(t *testing.T) {
	r, err := NewFromDir(".")
	require.NoError(t, err)
	require.NoError(t, r.Reload("."))

	html, err := r.Render("select-option", map[string]string{"Value": "name", "Label": "name"})
	require.NoError(t, err)
	assert.Equal(t, "<option value=\"name\">name</option>\n", html)
}
