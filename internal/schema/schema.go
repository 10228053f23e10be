// Package schema describes tables as plain values. Migration steps are lists
// of primitive edits over these values; the same edit both replays against an
// in-memory Schema and renders the SQL that changes a live database.
package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

type Type string

const (
	BigInt   Type = "bigint"
	Integer  Type = "integer"
	Varchar  Type = "varchar"
	Text     Type = "text"
	Boolean  Type = "boolean"
	Date     Type = "date"
	DateTime Type = "datetime"
	JSON     Type = "json"
)

// Reference is a foreign key from a column to the id of another table.
type Reference struct {
	Table    string
	OnDelete string
}

type Column struct {
	Name       string
	Type       Type
	Size       int
	Null       bool
	Default    *string // SQL literal
	Unique     bool
	PrimaryKey bool
	References *Reference
}

type Table struct {
	Name    string
	Columns []Column
	// Unique lists composite unique constraints.
	Unique [][]string
}

// Column returns the named column.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (t Table) clone() Table {
	out := Table{Name: t.Name}
	out.Columns = append([]Column(nil), t.Columns...)
	for _, u := range t.Unique {
		out.Unique = append(out.Unique, append([]string(nil), u...))
	}
	return out
}

// normalized orders columns and constraints by name so that two tables that
// differ only in column order compare equal.
func (t Table) normalized() Table {
	out := t.clone()
	sort.Slice(out.Columns, func(i, j int) bool { return out.Columns[i].Name < out.Columns[j].Name })
	for _, u := range out.Unique {
		sort.Strings(u)
	}
	sort.Slice(out.Unique, func(i, j int) bool {
		return strings.Join(out.Unique[i], ",") < strings.Join(out.Unique[j], ",")
	})
	if len(out.Unique) == 0 {
		out.Unique = nil
	}
	return out
}

// Schema is a set of tables keyed by name.
type Schema map[string]Table

// Empty is version 0.
func Empty() Schema {
	return Schema{}
}

func (s Schema) Clone() Schema {
	out := make(Schema, len(s))
	for name, t := range s {
		out[name] = t.clone()
	}
	return out
}

// TableNames returns the table names in sorted order.
func (s Schema) TableNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Equal compares table sets, column definitions and unique constraints,
// ignoring column order.
func (s Schema) Equal(other Schema) bool {
	return len(s.Diff(other)) == 0
}

// Diff describes every difference between s and other.
func (s Schema) Diff(other Schema) []string {
	var diffs []string
	for _, name := range s.TableNames() {
		o, ok := other[name]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("table %s: missing", name))
			continue
		}
		diffs = append(diffs, diffTable(s[name].normalized(), o.normalized())...)
	}
	for _, name := range other.TableNames() {
		if _, ok := s[name]; !ok {
			diffs = append(diffs, fmt.Sprintf("table %s: unexpected", name))
		}
	}
	return diffs
}

func diffTable(a, b Table) []string {
	var diffs []string
	for _, c := range a.Columns {
		oc, ok := b.Column(c.Name)
		switch {
		case !ok:
			diffs = append(diffs, fmt.Sprintf("table %s: column %s missing", a.Name, c.Name))
		case !reflect.DeepEqual(c, oc):
			diffs = append(diffs, fmt.Sprintf("table %s: column %s differs: %s != %s", a.Name, c.Name, describe(c), describe(oc)))
		}
	}
	for _, c := range b.Columns {
		if _, ok := a.Column(c.Name); !ok {
			diffs = append(diffs, fmt.Sprintf("table %s: column %s unexpected", a.Name, c.Name))
		}
	}
	if !reflect.DeepEqual(a.Unique, b.Unique) {
		diffs = append(diffs, fmt.Sprintf("table %s: unique constraints differ: %v != %v", a.Name, a.Unique, b.Unique))
	}
	return diffs
}

func describe(c Column) string {
	var b strings.Builder
	b.WriteString(string(c.Type))
	if c.Size > 0 {
		fmt.Fprintf(&b, "(%d)", c.Size)
	}
	if c.PrimaryKey {
		b.WriteString(" pk")
	}
	if c.Null {
		b.WriteString(" null")
	} else {
		b.WriteString(" not null")
	}
	if c.Default != nil {
		fmt.Fprintf(&b, " default %s", *c.Default)
	}
	if c.Unique {
		b.WriteString(" unique")
	}
	if c.References != nil {
		fmt.Fprintf(&b, " -> %s", c.References.Table)
	}
	return b.String()
}
