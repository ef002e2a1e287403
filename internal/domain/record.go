package domain

import (
	"fmt"
	"strings"
)

type Field struct {
	Name  string
	Value string
}

// FileRecord is an ordered set of named fields. The order fields were first
// set in is the order they are written out.
type FileRecord struct {
	fields []Field
	index  map[string]int
}

func NewFileRecord() FileRecord {
	return FileRecord{index: map[string]int{}}
}

// Set appends the field, or replaces its value in place when the name is
// already present.
func (r *FileRecord) Set(name, value string) {
	if r.index == nil {
		r.index = map[string]int{}
	}
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = value
		return
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: value})
}

func (r FileRecord) Get(name string) (string, bool) {
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.fields[i].Value, true
}

func (r *FileRecord) Delete(name string) {
	i, ok := r.index[name]
	if !ok {
		return
	}
	r.fields = append(r.fields[:i], r.fields[i+1:]...)
	delete(r.index, name)
	for j := i; j < len(r.fields); j++ {
		r.index[r.fields[j].Name] = j
	}
}

func (r *FileRecord) Merge(other FileRecord) {
	for _, f := range other.fields {
		r.Set(f.Name, f.Value)
	}
}

func (r FileRecord) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r FileRecord) Len() int {
	return len(r.fields)
}

// InfoKeyWidth is the column the field names of a .info file are padded to.
const InfoKeyWidth = 20

// InfoText renders the record as the contents of a .info file.
func (r FileRecord) InfoText() string {
	var b strings.Builder
	for _, f := range r.fields {
		fmt.Fprintf(&b, "%-*s: %s\n", InfoKeyWidth, f.Name, f.Value)
	}
	return b.String()
}
