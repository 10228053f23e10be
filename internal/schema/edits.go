package schema

import (
	"fmt"
	"slices"
)

// Edit is one primitive schema change.
type Edit interface {
	// Apply replays the edit against an in-memory schema.
	Apply(s Schema) error
	// SQL renders the statements that perform the edit on a live database.
	SQL(d Dialect) []string
	String() string
}

type CreateTable struct {
	Table Table
}

func (e CreateTable) Apply(s Schema) error {
	if _, ok := s[e.Table.Name]; ok {
		return fmt.Errorf("create table %s: already exists", e.Table.Name)
	}
	seen := map[string]bool{}
	for _, c := range e.Table.Columns {
		if seen[c.Name] {
			return fmt.Errorf("create table %s: duplicate column %s", e.Table.Name, c.Name)
		}
		seen[c.Name] = true
		if c.References != nil {
			if _, ok := s[c.References.Table]; !ok && c.References.Table != e.Table.Name {
				return fmt.Errorf("create table %s: column %s references unknown table %s", e.Table.Name, c.Name, c.References.Table)
			}
		}
	}
	for _, u := range e.Table.Unique {
		for _, name := range u {
			if !seen[name] {
				return fmt.Errorf("create table %s: unique constraint on unknown column %s", e.Table.Name, name)
			}
		}
	}
	s[e.Table.Name] = e.Table.clone()
	return nil
}

func (e CreateTable) SQL(d Dialect) []string {
	return []string{createTableSQL(d, e.Table)}
}

func (e CreateTable) String() string {
	return "create table " + e.Table.Name
}

type DropTable struct {
	Name string
}

func (e DropTable) Apply(s Schema) error {
	if _, ok := s[e.Name]; !ok {
		return fmt.Errorf("drop table %s: does not exist", e.Name)
	}
	for _, t := range s {
		if t.Name == e.Name {
			continue
		}
		for _, c := range t.Columns {
			if c.References != nil && c.References.Table == e.Name {
				return fmt.Errorf("drop table %s: still referenced by %s.%s", e.Name, t.Name, c.Name)
			}
		}
	}
	delete(s, e.Name)
	return nil
}

func (e DropTable) SQL(Dialect) []string {
	return []string{"DROP TABLE " + quote(e.Name)}
}

func (e DropTable) String() string {
	return "drop table " + e.Name
}

// AddColumn appends a column. The column must be nullable or carry a default
// so existing rows stay valid; unique and key columns cannot be added later.
type AddColumn struct {
	Table  string
	Column Column
}

func (e AddColumn) Apply(s Schema) error {
	t, ok := s[e.Table]
	if !ok {
		return fmt.Errorf("add column %s.%s: table does not exist", e.Table, e.Column.Name)
	}
	if _, ok := t.Column(e.Column.Name); ok {
		return fmt.Errorf("add column %s.%s: already exists", e.Table, e.Column.Name)
	}
	if !e.Column.Null && e.Column.Default == nil {
		return fmt.Errorf("add column %s.%s: not null without default", e.Table, e.Column.Name)
	}
	if e.Column.PrimaryKey || e.Column.Unique || e.Column.References != nil {
		return fmt.Errorf("add column %s.%s: keys and unique columns must be declared with the table", e.Table, e.Column.Name)
	}
	t = t.clone()
	t.Columns = append(t.Columns, e.Column)
	s[e.Table] = t
	return nil
}

func (e AddColumn) SQL(d Dialect) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", quote(e.Table), columnSQL(d, e.Column))}
}

func (e AddColumn) String() string {
	return fmt.Sprintf("add column %s.%s", e.Table, e.Column.Name)
}

type DropColumn struct {
	Table  string
	Column string
}

func (e DropColumn) Apply(s Schema) error {
	t, ok := s[e.Table]
	if !ok {
		return fmt.Errorf("drop column %s.%s: table does not exist", e.Table, e.Column)
	}
	c, ok := t.Column(e.Column)
	if !ok {
		return fmt.Errorf("drop column %s.%s: does not exist", e.Table, e.Column)
	}
	if c.PrimaryKey || c.Unique || c.References != nil {
		return fmt.Errorf("drop column %s.%s: keys and unique columns cannot be dropped", e.Table, e.Column)
	}
	for _, u := range t.Unique {
		if slices.Contains(u, e.Column) {
			return fmt.Errorf("drop column %s.%s: part of a unique constraint", e.Table, e.Column)
		}
	}
	t = t.clone()
	t.Columns = slices.DeleteFunc(t.Columns, func(c Column) bool { return c.Name == e.Column })
	s[e.Table] = t
	return nil
}

func (e DropColumn) SQL(Dialect) []string {
	return []string{fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", quote(e.Table), quote(e.Column))}
}

func (e DropColumn) String() string {
	return fmt.Sprintf("drop column %s.%s", e.Table, e.Column)
}

// Replay applies edits in order to a copy of s.
func Replay(s Schema, edits []Edit) (Schema, error) {
	out := s.Clone()
	for _, e := range edits {
		if err := e.Apply(out); err != nil {
			return nil, err
		}
	}
	return out, nil
}
