package dataframe

import (
	"math"
	"strconv"
	"time"
)

// Kind is the storage type of a Series
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindTime:
		return "time"
	default:
		return "unknown"
	}
}

// Series is one named, typed, nullable column.
// Only the slice matching Kind is populated; valid[i] == false marks a null.
type Series struct {
	name  string
	kind  Kind
	strs  []string
	nums  []float64
	times []time.Time
	valid []bool
}

// NewStringSeries builds a string column. A nil valid slice treats every
// empty string as null.
func NewStringSeries(name string, values []string, valid []bool) *Series {
	if valid == nil {
		valid = make([]bool, len(values))
		for i, v := range values {
			valid[i] = v != ""
		}
	}
	return &Series{name: name, kind: KindString, strs: values, valid: valid}
}

// NewFloatSeries builds a numeric column. A nil valid slice treats NaN as null.
func NewFloatSeries(name string, values []float64, valid []bool) *Series {
	if valid == nil {
		valid = make([]bool, len(values))
		for i, v := range values {
			valid[i] = !math.IsNaN(v)
		}
	}
	return &Series{name: name, kind: KindFloat, nums: values, valid: valid}
}

// NewTimeSeries builds a timestamp column. A nil valid slice treats the zero
// time as null.
func NewTimeSeries(name string, values []time.Time, valid []bool) *Series {
	if valid == nil {
		valid = make([]bool, len(values))
		for i, v := range values {
			valid[i] = !v.IsZero()
		}
	}
	return &Series{name: name, kind: KindTime, times: values, valid: valid}
}

// Name returns the column name
func (s *Series) Name() string { return s.name }

// Kind returns the storage type
func (s *Series) Kind() Kind { return s.kind }

// Len returns the number of cells
func (s *Series) Len() int { return len(s.valid) }

// IsNull reports whether cell i is null
func (s *Series) IsNull(i int) bool { return !s.valid[i] }

// NullCount returns the number of null cells
func (s *Series) NullCount() int {
	n := 0
	for _, ok := range s.valid {
		if !ok {
			n++
		}
	}
	return n
}

// Text returns the raw value of a string cell
func (s *Series) Text(i int) (string, bool) {
	if s.kind != KindString || !s.valid[i] {
		return "", false
	}
	return s.strs[i], true
}

// Float returns the value of a numeric cell
func (s *Series) Float(i int) (float64, bool) {
	if s.kind != KindFloat || !s.valid[i] {
		return 0, false
	}
	return s.nums[i], true
}

// Time returns the value of a timestamp cell
func (s *Series) Time(i int) (time.Time, bool) {
	if s.kind != KindTime || !s.valid[i] {
		return time.Time{}, false
	}
	return s.times[i], true
}

// Format renders cell i as text; nulls render as the empty string.
// Whole numbers print without a decimal part and midnight timestamps print
// as a bare date.
func (s *Series) Format(i int) string {
	if !s.valid[i] {
		return ""
	}
	switch s.kind {
	case KindFloat:
		return strconv.FormatFloat(s.nums[i], 'f', -1, 64)
	case KindTime:
		t := s.times[i]
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05")
	default:
		return s.strs[i]
	}
}

// Rename returns a shallow copy of the series under a new name
func (s *Series) Rename(name string) *Series {
	cp := *s
	cp.name = name
	return &cp
}

// take returns a new series holding the cells at idx, in order.
// A negative index produces a null cell.
func (s *Series) take(idx []int) *Series {
	out := &Series{name: s.name, kind: s.kind, valid: make([]bool, len(idx))}
	switch s.kind {
	case KindFloat:
		out.nums = make([]float64, len(idx))
	case KindTime:
		out.times = make([]time.Time, len(idx))
	default:
		out.strs = make([]string, len(idx))
	}

	for j, i := range idx {
		if i < 0 {
			continue
		}
		out.valid[j] = s.valid[i]
		switch s.kind {
		case KindFloat:
			out.nums[j] = s.nums[i]
		case KindTime:
			out.times[j] = s.times[i]
		default:
			out.strs[j] = s.strs[i]
		}
	}
	return out
}

// Floats returns the non-null values of a numeric series with their row
// indices.
func (s *Series) Floats() (values []float64, rows []int) {
	if s.kind != KindFloat {
		return nil, nil
	}
	for i, ok := range s.valid {
		if ok {
			values = append(values, s.nums[i])
			rows = append(rows, i)
		}
	}
	return values, rows
}
