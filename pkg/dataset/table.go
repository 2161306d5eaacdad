// Package dataset provides the small columnar table the built-in nodes
// pass between each other, plus CSV decoding and the group/aggregate and
// summary operations the catalog exposes.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Table is a column-ordered set of records. Cell values are float64 for
// anything that parses as a number and string otherwise, so downstream
// aggregation does not have to re-parse.
type Table struct {
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// ReadCSV decodes a CSV stream whose first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	table := &Table{Columns: header}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}

		row := make(map[string]any, len(header))
		for i, column := range header {
			row[column] = coerce(record[i])
		}

		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func coerce(value string) any {
	if value == "" {
		return nil
	}

	if number, err := strconv.ParseFloat(value, 64); err == nil {
		return number
	}

	return value
}

// FromAny casts a node input value to a Table.
func FromAny(value any) (*Table, error) {
	table, ok := value.(*Table)
	if !ok || table == nil {
		return nil, fmt.Errorf("expected a table, got %T", value)
	}

	return table, nil
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, column := range t.Columns {
		if column == name {
			return true
		}
	}

	return false
}

// Select returns a new table restricted to the named columns, in the
// requested order.
func (t *Table) Select(columns []string) (*Table, error) {
	for _, column := range columns {
		if !t.HasColumn(column) {
			return nil, fmt.Errorf("unknown column %q", column)
		}
	}

	out := &Table{Columns: append([]string(nil), columns...)}

	for _, row := range t.Rows {
		selected := make(map[string]any, len(columns))
		for _, column := range columns {
			selected[column] = row[column]
		}

		out.Rows = append(out.Rows, selected)
	}

	return out, nil
}

// numericColumns lists columns holding at least one float64 cell,
// excluding the given group keys.
func (t *Table) numericColumns(exclude map[string]bool) []string {
	var numeric []string

	for _, column := range t.Columns {
		if exclude[column] {
			continue
		}

		for _, row := range t.Rows {
			if _, ok := row[column].(float64); ok {
				numeric = append(numeric, column)

				break
			}
		}
	}

	return numeric
}

func columnValues(rows []map[string]any, column string) []float64 {
	var values []float64

	for _, row := range rows {
		if v, ok := row[column].(float64); ok {
			values = append(values, v)
		}
	}

	return values
}

// Aggregation names a reduction applied to each numeric column.
type Aggregation string

const (
	AggMin  Aggregation = "min"
	AggMax  Aggregation = "max"
	AggMean Aggregation = "mean"
	AggSum  Aggregation = "sum"
)

// Aggregations lists the supported reductions in catalog order.
func Aggregations() []string {
	return []string{string(AggMin), string(AggMax), string(AggMean), string(AggSum)}
}

func reduce(agg Aggregation, values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, fmt.Errorf("no numeric values to aggregate")
	}

	switch agg {
	case AggMin:
		min := values[0]
		for _, v := range values[1:] {
			if v < min {
				min = v
			}
		}

		return min, nil
	case AggMax:
		max := values[0]
		for _, v := range values[1:] {
			if v > max {
				max = v
			}
		}

		return max, nil
	case AggSum, AggMean:
		var sum float64
		for _, v := range values {
			sum += v
		}

		if agg == AggMean {
			return sum / float64(len(values)), nil
		}

		return sum, nil
	default:
		return 0, fmt.Errorf("unknown aggregation %q", agg)
	}
}

// GroupAggregate groups rows by the given key columns and reduces every
// remaining numeric column with the aggregation. Groups are emitted in
// sorted key order so repeated runs produce identical tables.
func (t *Table) GroupAggregate(groupBy []string, agg Aggregation) (*Table, error) {
	for _, column := range groupBy {
		if !t.HasColumn(column) {
			return nil, fmt.Errorf("unknown column %q", column)
		}
	}

	exclude := make(map[string]bool, len(groupBy))
	for _, column := range groupBy {
		exclude[column] = true
	}

	numeric := t.numericColumns(exclude)
	if len(numeric) == 0 {
		return nil, fmt.Errorf("no numeric columns to aggregate")
	}

	groups := make(map[string][]map[string]any)

	var keys []string

	for _, row := range t.Rows {
		key := groupKey(row, groupBy)
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}

		groups[key] = append(groups[key], row)
	}

	sort.Strings(keys)

	out := &Table{Columns: append(append([]string(nil), groupBy...), numeric...)}

	for _, key := range keys {
		rows := groups[key]
		aggregated := make(map[string]any, len(out.Columns))

		for _, column := range groupBy {
			aggregated[column] = rows[0][column]
		}

		for _, column := range numeric {
			values := columnValues(rows, column)
			if len(values) == 0 {
				aggregated[column] = nil

				continue
			}

			reduced, err := reduce(agg, values)
			if err != nil {
				return nil, err
			}

			aggregated[column] = reduced
		}

		out.Rows = append(out.Rows, aggregated)
	}

	return out, nil
}

func groupKey(row map[string]any, groupBy []string) string {
	parts := make([]string, 0, len(groupBy))
	for _, column := range groupBy {
		parts = append(parts, fmt.Sprintf("%v", row[column]))
	}

	return strings.Join(parts, "\x1f")
}

// Describe returns per-numeric-column summary statistics, one row per
// column.
func (t *Table) Describe() *Table {
	numeric := t.numericColumns(nil)
	out := &Table{Columns: []string{"column", "count", "mean", "std", "min", "max"}}

	for _, column := range numeric {
		values := columnValues(t.Rows, column)

		mean, _ := reduce(AggMean, values)
		min, _ := reduce(AggMin, values)
		max, _ := reduce(AggMax, values)

		out.Rows = append(out.Rows, map[string]any{
			"column": column,
			"count":  float64(len(values)),
			"mean":   mean,
			"std":    stddev(values, mean),
			"min":    min,
			"max":    max,
		})
	}

	return out
}

// stddev is the sample standard deviation, zero for fewer than two values.
func stddev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}

	var sum float64

	for _, v := range values {
		d := v - mean
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(values)-1))
}
