package sqlite

// DeclTypeLunarDate is the declared column type for lunar.Date values.
// Converters are looked up by this name.
const DeclTypeLunarDate = "lunardate"

// Schema DDL. Statements are idempotent so an existing database is reused.
const (
	createMembers = `CREATE TABLE IF NOT EXISTS members (
    pid INTEGER PRIMARY KEY AUTOINCREMENT,
    member_id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    birthday LUNARDATE NOT NULL,
    created_at TEXT NOT NULL
);`
)

// Index DDL for common queries.
const (
	idxMembersName = `CREATE INDEX IF NOT EXISTS idx_members_name ON members(name);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createMembers,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxMembersName,
}
