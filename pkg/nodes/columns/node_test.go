package columns_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfn/flowfn/pkg/dataset"
	"github.com/flowfn/flowfn/pkg/nodes/columns"
)

func table(t *testing.T) *dataset.Table {
	t.Helper()

	tbl, err := dataset.ReadCSV(strings.NewReader("a,b,c\n1,2,x\n3,4,y\n"))
	require.NoError(t, err)

	return tbl
}

func TestHandle_SelectsColumns(t *testing.T) {
	outputs, err := columns.Definition().Handler(context.Background(), map[string]any{
		"table":   table(t),
		"columns": " c , a ",
	})
	require.NoError(t, err)

	selected, err := dataset.FromAny(outputs["result"])
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, selected.Columns)
	assert.Equal(t, map[string]any{"c": "x", "a": 1.0}, selected.Rows[0])
}

func TestHandle_EmptySpecPassesThrough(t *testing.T) {
	tbl := table(t)

	outputs, err := columns.Definition().Handler(context.Background(), map[string]any{
		"table":   tbl,
		"columns": "",
	})
	require.NoError(t, err)
	assert.Same(t, tbl, outputs["result"])
}

func TestHandle_UnknownColumn(t *testing.T) {
	_, err := columns.Definition().Handler(context.Background(), map[string]any{
		"table":   table(t),
		"columns": "a,zz",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zz")
}

func TestHandle_NotATable(t *testing.T) {
	_, err := columns.Definition().Handler(context.Background(), map[string]any{
		"table": "not a table",
	})
	assert.Error(t, err)
}
