package schema

import (
	"strconv"
	"strings"
)

// Column constructors used by the migration steps.

func ID() Column {
	return Column{Name: "id", Type: BigInt, PrimaryKey: true}
}

func Varchar100(name string) Column {
	return Column{Name: name, Type: Varchar, Size: 100}
}

func NullVarchar100(name string) Column {
	return Column{Name: name, Type: Varchar, Size: 100, Null: true}
}

func VarcharDefault(name, value string) Column {
	return Column{Name: name, Type: Varchar, Size: 100, Default: Literal(value)}
}

func NotNull(name string, t Type) Column {
	return Column{Name: name, Type: t}
}

func Nullable(name string, t Type) Column {
	return Column{Name: name, Type: t, Null: true}
}

func Flag(name string) Column {
	return Column{Name: name, Type: Boolean, Default: Bool(false)}
}

func ForeignKey(name, table string) Column {
	return Column{Name: name, Type: BigInt, References: &Reference{Table: table, OnDelete: "CASCADE"}}
}

// Literal quotes s as an SQL string literal.
func Literal(s string) *string {
	v := "'" + strings.ReplaceAll(s, "'", "''") + "'"
	return &v
}

func Bool(b bool) *string {
	v := strconv.FormatBool(b)
	return &v
}
