package schema

import (
	"fmt"
	"strings"
)

// Dialect renders column types for one database engine.
type Dialect interface {
	Name() string
	ColumnType(c Column) string
}

// DialectFor returns the dialect registered under a gorm dialector name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "sqlite":
		return SQLite{}, nil
	case "postgres":
		return Postgres{}, nil
	}
	return nil, fmt.Errorf("schema: unsupported dialect %q", name)
}

type SQLite struct{}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) ColumnType(c Column) string {
	if c.PrimaryKey {
		return "integer PRIMARY KEY AUTOINCREMENT"
	}
	switch c.Type {
	case BigInt, Integer:
		return "integer"
	case Varchar:
		return fmt.Sprintf("varchar(%d)", c.Size)
	case Boolean:
		return "numeric"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	default:
		return "text"
	}
}

type Postgres struct{}

func (Postgres) Name() string { return "postgres" }

func (Postgres) ColumnType(c Column) string {
	if c.PrimaryKey {
		return "bigserial PRIMARY KEY"
	}
	switch c.Type {
	case BigInt:
		return "bigint"
	case Integer:
		return "integer"
	case Varchar:
		return fmt.Sprintf("varchar(%d)", c.Size)
	case Boolean:
		return "boolean"
	case Date:
		return "date"
	case DateTime:
		return "timestamptz"
	case JSON:
		return "jsonb"
	default:
		return "text"
	}
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func columnSQL(d Dialect, c Column) string {
	parts := []string{quote(c.Name), d.ColumnType(c)}
	if !c.PrimaryKey && !c.Null {
		parts = append(parts, "NOT NULL")
	}
	if c.Default != nil {
		parts = append(parts, "DEFAULT "+*c.Default)
	}
	if c.Unique {
		parts = append(parts, "UNIQUE")
	}
	return strings.Join(parts, " ")
}

func createTableSQL(d Dialect, t Table) string {
	defs := make([]string, 0, len(t.Columns)+len(t.Unique))
	for _, c := range t.Columns {
		defs = append(defs, columnSQL(d, c))
	}
	for _, u := range t.Unique {
		quoted := make([]string, len(u))
		for i, name := range u {
			quoted[i] = quote(name)
		}
		defs = append(defs, fmt.Sprintf("CONSTRAINT %s UNIQUE (%s)",
			quote("uq_"+t.Name+"_"+strings.Join(u, "_")), strings.Join(quoted, ",")))
	}
	for _, c := range t.Columns {
		if c.References == nil {
			continue
		}
		fk := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(%s)",
			quote("fk_"+t.Name+"_"+c.Name), quote(c.Name), quote(c.References.Table), quote("id"))
		if c.References.OnDelete != "" {
			fk += " ON DELETE " + c.References.OnDelete
		}
		defs = append(defs, fk)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quote(t.Name), strings.Join(defs, ","))
}
