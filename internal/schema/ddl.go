package schema

import "strings"

// Dialect selects the SQL flavor for DDL rendering.
type Dialect uint8

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) typeName(t Type) string {
	if d == Postgres {
		switch t {
		case Int:
			return "BIGINT"
		case Bool:
			return "BOOLEAN"
		}
		return "TEXT"
	}
	switch t {
	case Int, Bool:
		return "INTEGER"
	}
	return "TEXT"
}

// quoteIdent double-quotes an identifier. Some column names (join,
// text) collide with SQL keywords.
func quoteIdent(s string) string {
	return `"` + s + `"`
}

// CreateTableSQL renders the CREATE TABLE statement for a table.
// Primary-key columns render as plain NOT NULL here: the key itself is
// built by PrimaryKeySQL after the load, so incremental maintenance
// never slows the bulk inserts and an aborted run leaves no constraint.
func CreateTableSQL(t Table, d Dialect) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(quoteIdent(t.Name))
	b.WriteString(" (")
	for i, c := range t.Columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(c.Name))
		b.WriteByte(' ')
		b.WriteString(d.typeName(c.Type))
		if c.PrimaryKey || c.NotNull {
			b.WriteString(" NOT NULL")
		}
	}
	b.WriteString(")")
	return b.String()
}

// PrimaryKeySQL renders the deferred key build for a table, or "" for
// tables without a primary key. Postgres grows a real constraint;
// SQLite cannot add one after the fact, so it gets the equivalent
// unique index.
func PrimaryKeySQL(t Table, d Dialect) string {
	var pk []string
	for _, c := range t.Columns {
		if c.PrimaryKey {
			pk = append(pk, quoteIdent(c.Name))
		}
	}
	if len(pk) == 0 {
		return ""
	}
	cols := strings.Join(pk, ", ")
	if d == Postgres {
		return "ALTER TABLE " + quoteIdent(t.Name) + " ADD PRIMARY KEY (" + cols + ")"
	}
	return "CREATE UNIQUE INDEX " + quoteIdent("uidx_"+t.Name+"_id") + " ON " + quoteIdent(t.Name) + " (" + cols + ")"
}

// DropTableSQL renders the drop statement run before recreating a
// table. Postgres cascades to dependent objects.
func DropTableSQL(t Table, d Dialect) string {
	if d == Postgres {
		return "DROP TABLE IF EXISTS " + quoteIdent(t.Name) + " CASCADE"
	}
	return "DROP TABLE IF EXISTS " + quoteIdent(t.Name)
}

// CreateIndexSQL renders a deferred index build.
func CreateIndexSQL(ix Index) string {
	cols := make([]string, len(ix.Columns))
	for i, c := range ix.Columns {
		cols[i] = quoteIdent(c)
	}
	return "CREATE INDEX " + quoteIdent(ix.Name) + " ON " + quoteIdent(ix.Table) +
		" (" + strings.Join(cols, ", ") + ")"
}

// InsertSQL renders a positional-placeholder insert for a table.
func InsertSQL(t Table) string {
	cols := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(c.Name)
		marks[i] = "?"
	}
	return "INSERT INTO " + quoteIdent(t.Name) +
		" (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}

// ColumnNames returns the column names in table order, for COPY.
func (t Table) ColumnNames() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}
