package dataframe

import (
	"fmt"
	"strings"
)

// Group is one distinct key combination and the rows that carry it
type Group struct {
	Keys []string
	Rows []int
}

// Key joins the rendered group keys for single-key callers
func (g Group) Key() string {
	return strings.Join(g.Keys, " / ")
}

// First returns the first row of the group, used to read typed key values
func (g Group) First() int {
	return g.Rows[0]
}

// GroupBy partitions rows by the given key columns. Rows with a null in any
// key are left out. Groups come back in ascending key order, numeric keys
// compared as numbers and timestamps chronologically.
func (f *Frame) GroupBy(keys ...string) ([]Group, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("group by needs at least one key")
	}
	cols := make([]*Series, len(keys))
	for i, k := range keys {
		s := f.Column(k)
		if s == nil {
			return nil, fmt.Errorf("column %q not found", k)
		}
		cols[i] = s
	}

	byKey := map[string]int{}
	var groups []Group
	var reps []int
	for r := 0; r < f.rows; r++ {
		parts := make([]string, len(cols))
		null := false
		for i, s := range cols {
			if s.IsNull(r) {
				null = true
				break
			}
			parts[i] = s.Format(r)
		}
		if null {
			continue
		}
		key := strings.Join(parts, "\x1f")
		if gi, ok := byKey[key]; ok {
			groups[gi].Rows = append(groups[gi].Rows, r)
			continue
		}
		byKey[key] = len(groups)
		groups = append(groups, Group{Keys: parts, Rows: []int{r}})
		reps = append(reps, r)
	}

	order := make([]int, len(groups))
	repIndex := make(map[int]int, len(groups))
	for i, r := range reps {
		order[i] = r
		repIndex[r] = i
	}
	sortRowsByKeys(order, cols)

	sorted := make([]Group, len(groups))
	for i, r := range order {
		sorted[i] = groups[repIndex[r]]
	}
	return sorted, nil
}

// Sum adds the non-null values of a numeric series over rows. An empty or
// all-null selection sums to zero.
func (s *Series) Sum(rows []int) float64 {
	if s.kind != KindFloat {
		return 0
	}
	total := 0.0
	for _, r := range rows {
		if s.valid[r] {
			total += s.nums[r]
		}
	}
	return total
}

// SumAll adds every non-null value of a numeric series
func (s *Series) SumAll() float64 {
	_, rows := s.Floats()
	return s.Sum(rows)
}

// NUnique counts distinct non-null values over rows
func (s *Series) NUnique(rows []int) int {
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if s.valid[r] {
			seen[s.Format(r)] = struct{}{}
		}
	}
	return len(seen)
}

// ValueCounts returns the distinct non-null values with their counts, most
// frequent first and ties in first-seen order
func (s *Series) ValueCounts() []Group {
	byKey := map[string]int{}
	var groups []Group
	for r := 0; r < s.Len(); r++ {
		if !s.valid[r] {
			continue
		}
		k := s.Format(r)
		if gi, ok := byKey[k]; ok {
			groups[gi].Rows = append(groups[gi].Rows, r)
			continue
		}
		byKey[k] = len(groups)
		groups = append(groups, Group{Keys: []string{k}, Rows: []int{r}})
	}
	sortGroupsBySize(groups)
	return groups
}
