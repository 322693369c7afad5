// Package dataframe provides the small in-memory table the pipeline works on:
// named, typed, nullable columns with the handful of relational operations
// the cleaning, enrichment and reporting stages need.
package dataframe

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Frame is an ordered set of equal-length Series
type Frame struct {
	series []*Series
	index  map[string]int
	rows   int
}

// New builds a frame from series of equal length with unique names
func New(series ...*Series) (*Frame, error) {
	f := &Frame{index: make(map[string]int, len(series))}
	for i, s := range series {
		if i == 0 {
			f.rows = s.Len()
		} else if s.Len() != f.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", s.Name(), s.Len(), f.rows)
		}
		if _, dup := f.index[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate column %q", s.Name())
		}
		f.index[s.Name()] = i
		f.series = append(f.series, s)
	}
	return f, nil
}

// Empty returns a frame with no columns and no rows
func Empty() *Frame {
	return &Frame{index: map[string]int{}}
}

// FromRecords builds an all-string frame from a header row and data rows.
// Short rows are padded with nulls, blank header cells become "Unnamed: N"
// and repeated header names get ".1", ".2" suffixes.
func FromRecords(header []string, records [][]string) *Frame {
	names := normalizeHeader(header)
	cols := make([][]string, len(names))
	for c := range cols {
		cols[c] = make([]string, len(records))
	}
	for r, rec := range records {
		for c := range names {
			if c < len(rec) {
				cols[c][r] = strings.TrimSpace(rec[c])
			}
		}
	}

	series := make([]*Series, len(names))
	for c, name := range names {
		series[c] = NewStringSeries(name, cols[c], nil)
	}
	f, _ := New(series...)
	if len(series) == 0 {
		f.rows = 0
	}
	return f
}

func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := h
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[name]; dup {
			seen[name] = n + 1
			name = name + "." + strconv.Itoa(n+1)
		} else {
			seen[name] = 0
		}
		names[i] = name
	}
	return names
}

// Len returns the number of rows
func (f *Frame) Len() int { return f.rows }

// Width returns the number of columns
func (f *Frame) Width() int { return len(f.series) }

// Names returns the column names in order
func (f *Frame) Names() []string {
	names := make([]string, len(f.series))
	for i, s := range f.series {
		names[i] = s.Name()
	}
	return names
}

// Has reports whether a column exists
func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// HasAll reports whether every named column exists
func (f *Frame) HasAll(names ...string) bool {
	for _, n := range names {
		if !f.Has(n) {
			return false
		}
	}
	return true
}

// Present filters names down to the columns that exist, keeping order
func (f *Frame) Present(names ...string) []string {
	var out []string
	for _, n := range names {
		if f.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

// Column returns the named series or nil
func (f *Frame) Column(name string) *Series {
	if i, ok := f.index[name]; ok {
		return f.series[i]
	}
	return nil
}

// Columns returns the series in order
func (f *Frame) Columns() []*Series {
	return append([]*Series(nil), f.series...)
}

// Take returns a frame holding the rows at idx, in order
func (f *Frame) Take(idx []int) *Frame {
	out := &Frame{index: make(map[string]int, len(f.series)), rows: len(idx)}
	for i, s := range f.series {
		out.series = append(out.series, s.take(idx))
		out.index[s.Name()] = i
	}
	return out
}

// WithColumn returns a frame with s added, or replacing the column of the
// same name in place
func (f *Frame) WithColumn(s *Series) (*Frame, error) {
	if len(f.series) > 0 && s.Len() != f.rows {
		return nil, fmt.Errorf("column %q has %d rows, expected %d", s.Name(), s.Len(), f.rows)
	}
	series := f.Columns()
	if i, ok := f.index[s.Name()]; ok {
		series[i] = s
	} else {
		series = append(series, s)
	}
	return New(series...)
}

// DropNulls removes rows that are null in any of cols and reports how many
// were removed
func (f *Frame) DropNulls(cols ...string) (*Frame, int, error) {
	check := make([]*Series, 0, len(cols))
	for _, c := range cols {
		s := f.Column(c)
		if s == nil {
			return nil, 0, fmt.Errorf("column %q not found", c)
		}
		check = append(check, s)
	}

	keep := make([]int, 0, f.rows)
	for r := 0; r < f.rows; r++ {
		ok := true
		for _, s := range check {
			if s.IsNull(r) {
				ok = false
				break
			}
		}
		if ok {
			keep = append(keep, r)
		}
	}
	return f.Take(keep), f.rows - len(keep), nil
}

// DropDuplicates keeps the first row for each distinct value of col, in
// original order, and reports how many rows were removed
func (f *Frame) DropDuplicates(col string) (*Frame, int, error) {
	s := f.Column(col)
	if s == nil {
		return nil, 0, fmt.Errorf("column %q not found", col)
	}

	seen := make(map[string]struct{}, f.rows)
	keep := make([]int, 0, f.rows)
	for r := 0; r < f.rows; r++ {
		key := cellKey(s, r)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, r)
	}
	return f.Take(keep), f.rows - len(keep), nil
}

// cellKey identifies a cell value for hashing; nulls share one key
func cellKey(s *Series, r int) string {
	if s.IsNull(r) {
		return "\x00"
	}
	return s.Format(r)
}

// Records renders the frame as a header and formatted text rows
func (f *Frame) Records() ([]string, [][]string) {
	rows := make([][]string, f.rows)
	for r := range rows {
		row := make([]string, len(f.series))
		for c, s := range f.series {
			row[c] = s.Format(r)
		}
		rows[r] = row
	}
	return f.Names(), rows
}

// sortKeyLess orders two non-null cells of the same series
func sortKeyLess(s *Series, a, b int) bool {
	switch s.Kind() {
	case KindFloat:
		return s.nums[a] < s.nums[b]
	case KindTime:
		return s.times[a].Before(s.times[b])
	default:
		return s.strs[a] < s.strs[b]
	}
}

// sortKeyEqual reports whether two non-null cells of the same series are equal
func sortKeyEqual(s *Series, a, b int) bool {
	switch s.Kind() {
	case KindFloat:
		return s.nums[a] == s.nums[b]
	case KindTime:
		return s.times[a].Equal(s.times[b])
	default:
		return s.strs[a] == s.strs[b]
	}
}

// sortRowsByKeys orders representative rows by the key columns ascending
func sortRowsByKeys(rows []int, keys []*Series) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		for _, s := range keys {
			if sortKeyEqual(s, a, b) {
				continue
			}
			return sortKeyLess(s, a, b)
		}
		return false
	})
}

// sortGroupsBySize orders groups largest first, keeping ties stable
func sortGroupsBySize(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i].Rows) > len(groups[j].Rows)
	})
}
