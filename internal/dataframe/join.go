package dataframe

import "fmt"

// JoinStats summarises a left join
type JoinStats struct {
	Matched       int
	Unmatched     int
	DuplicateKeys []string
	// Collisions lists the non-key column names present on both sides. Both
	// copies carry a suffix in the result.
	Collisions []string
}

// LeftJoin keeps every row of f in order and appends the columns of right,
// matched on the key column on. Keys compare by their rendered text, so a
// numeric code matches the same code stored as text. When right repeats a
// key the first entry wins and the key is listed in DuplicateKeys. A non-key
// column present on both sides is kept twice, as name+leftSuffix and
// name+rightSuffix, so neither copy keeps the bare name.
func (f *Frame) LeftJoin(right *Frame, on, leftSuffix, rightSuffix string) (*Frame, JoinStats, error) {
	var stats JoinStats

	leftKey := f.Column(on)
	if leftKey == nil {
		return nil, stats, fmt.Errorf("left frame has no column %q", on)
	}
	rightKey := right.Column(on)
	if rightKey == nil {
		return nil, stats, fmt.Errorf("right frame has no column %q", on)
	}

	first := make(map[string]int, right.Len())
	dupSeen := map[string]bool{}
	for r := 0; r < right.Len(); r++ {
		if rightKey.IsNull(r) {
			continue
		}
		key := rightKey.Format(r)
		if _, ok := first[key]; ok {
			if !dupSeen[key] {
				dupSeen[key] = true
				stats.DuplicateKeys = append(stats.DuplicateKeys, key)
			}
			continue
		}
		first[key] = r
	}

	idx := make([]int, f.Len())
	for r := 0; r < f.Len(); r++ {
		idx[r] = -1
		if leftKey.IsNull(r) {
			stats.Unmatched++
			continue
		}
		if m, ok := first[leftKey.Format(r)]; ok {
			idx[r] = m
			stats.Matched++
		} else {
			stats.Unmatched++
		}
	}

	collides := make(map[string]bool)
	for _, s := range right.series {
		if name := s.Name(); name != on && f.Has(name) {
			collides[name] = true
			stats.Collisions = append(stats.Collisions, name)
		}
	}

	used := make(map[string]bool, len(f.series)+len(right.series))
	for _, s := range f.series {
		if !collides[s.Name()] {
			used[s.Name()] = true
		}
	}
	unique := func(name string) string {
		for used[name] {
			name += "_"
		}
		used[name] = true
		return name
	}

	series := make([]*Series, 0, len(f.series)+len(right.series)-1)
	for _, s := range f.series {
		if collides[s.Name()] {
			s = s.Rename(unique(s.Name() + leftSuffix))
		}
		series = append(series, s)
	}
	for _, s := range right.series {
		if s.Name() == on {
			continue
		}
		col := s.take(idx)
		if collides[col.Name()] {
			col = col.Rename(unique(col.Name() + rightSuffix))
		} else {
			col = col.Rename(unique(col.Name()))
		}
		series = append(series, col)
	}

	out, err := New(series...)
	if err != nil {
		return nil, stats, err
	}
	return out, stats, nil
}
