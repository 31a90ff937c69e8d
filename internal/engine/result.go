package engine

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/specialistvlad/metagrid/internal/value"
)

// TimeSuffix is appended to a metafeature name to form its timing key.
const TimeSuffix = "_Time"

// Entry is one column of a Result.
type Entry struct {
	Name  string
	Value value.Value
}

// Result is the single row produced by Compute. Entries keep request order,
// each metafeature immediately followed by its timing entry.
type Result struct {
	RunID   string
	entries []Entry
	index   map[string]int
}

func newResult(runID string, capacity int) *Result {
	return &Result{
		RunID:   runID,
		entries: make([]Entry, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

func (r *Result) set(name string, v value.Value) {
	if i, ok := r.index[name]; ok {
		r.entries[i].Value = v
		return
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, Entry{Name: name, Value: v})
}

// Get returns the value stored under name.
func (r *Result) Get(name string) (value.Value, bool) {
	i, ok := r.index[name]
	if !ok {
		return value.Value{}, false
	}
	return r.entries[i].Value, true
}

// Len returns the number of columns, two per metafeature.
func (r *Result) Len() int { return len(r.entries) }

// Names returns the column names in order.
func (r *Result) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Entries returns a copy of the columns in order.
func (r *Result) Entries() []Entry {
	return append([]Entry(nil), r.entries...)
}

// MarshalJSON encodes the row as a JSON object whose keys keep column order.
func (r *Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
