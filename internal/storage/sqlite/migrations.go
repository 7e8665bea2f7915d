package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist. Amounts are stored as TEXT
// and parsed as decimals on read; REAL would reintroduce the float drift
// the engine exists to avoid.
const schema = `
CREATE TABLE IF NOT EXISTS obligations (
    id TEXT PRIMARY KEY,
    group_id TEXT NOT NULL,
    debtor_id TEXT NOT NULL,
    creditor_id TEXT NOT NULL,
    amount TEXT NOT NULL,
    currency TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    note TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_obligations_group_id ON obligations(group_id);
CREATE INDEX IF NOT EXISTS idx_obligations_debtor_id ON obligations(debtor_id);
CREATE INDEX IF NOT EXISTS idx_obligations_creditor_id ON obligations(creditor_id);
`

// runMigrations applies the schema to the database.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
