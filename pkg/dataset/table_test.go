package dataset_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowfn/flowfn/pkg/dataset"
)

const sampleCSV = `species,petal_length,petal_width,note
setosa,1.4,0.2,short
setosa,1.6,0.4,
virginica,5.1,1.9,long
virginica,5.9,2.1,long
`

func sampleTable(t *testing.T) *dataset.Table {
	t.Helper()

	table, err := dataset.ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	return table
}

func TestReadCSV(t *testing.T) {
	table := sampleTable(t)

	assert.Equal(t, []string{"species", "petal_length", "petal_width", "note"}, table.Columns)
	require.Len(t, table.Rows, 4)

	assert.Equal(t, "setosa", table.Rows[0]["species"])
	assert.Equal(t, 1.4, table.Rows[0]["petal_length"])
	assert.Nil(t, table.Rows[1]["note"])
}

func TestReadCSV_EmptyStream(t *testing.T) {
	_, err := dataset.ReadCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestSelect(t *testing.T) {
	table := sampleTable(t)

	selected, err := table.Select([]string{"petal_width", "species"})
	require.NoError(t, err)

	assert.Equal(t, []string{"petal_width", "species"}, selected.Columns)
	require.Len(t, selected.Rows, 4)
	assert.Equal(t, map[string]any{"petal_width": 0.2, "species": "setosa"}, selected.Rows[0])
}

func TestSelect_UnknownColumn(t *testing.T) {
	_, err := sampleTable(t).Select([]string{"species", "sepal_length"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sepal_length")
}

func TestGroupAggregate(t *testing.T) {
	table := sampleTable(t)

	cases := []struct {
		agg    dataset.Aggregation
		setosa float64
	}{
		{dataset.AggMin, 1.4},
		{dataset.AggMax, 1.6},
		{dataset.AggMean, 1.5},
		{dataset.AggSum, 3.0},
	}

	for _, tc := range cases {
		t.Run(string(tc.agg), func(t *testing.T) {
			out, err := table.GroupAggregate([]string{"species"}, tc.agg)
			require.NoError(t, err)

			assert.Equal(t, []string{"species", "petal_length", "petal_width"}, out.Columns)
			require.Len(t, out.Rows, 2)

			// Groups come out sorted by key.
			assert.Equal(t, "setosa", out.Rows[0]["species"])
			assert.Equal(t, "virginica", out.Rows[1]["species"])
			assert.InDelta(t, tc.setosa, out.Rows[0]["petal_length"].(float64), 1e-9)
		})
	}
}

func TestGroupAggregate_NoNumericColumns(t *testing.T) {
	table, err := dataset.ReadCSV(strings.NewReader("a,b\nx,y\n"))
	require.NoError(t, err)

	_, err = table.GroupAggregate([]string{"a"}, dataset.AggSum)
	assert.Error(t, err)
}

func TestGroupAggregate_UnknownAggregation(t *testing.T) {
	_, err := sampleTable(t).GroupAggregate([]string{"species"}, dataset.Aggregation("median"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "median")
}

func TestDescribe(t *testing.T) {
	out := sampleTable(t).Describe()

	assert.Equal(t, []string{"column", "count", "mean", "std", "min", "max"}, out.Columns)
	require.Len(t, out.Rows, 2)

	lengths := out.Rows[0]
	assert.Equal(t, "petal_length", lengths["column"])
	assert.Equal(t, 4.0, lengths["count"])
	assert.InDelta(t, 3.5, lengths["mean"].(float64), 1e-9)
	assert.Equal(t, 1.4, lengths["min"])
	assert.Equal(t, 5.9, lengths["max"])
	assert.Greater(t, lengths["std"].(float64), 0.0)
}
