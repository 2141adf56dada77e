// Package database handles database connections and schema inspection.
//
// It wraps GORM so the library can run on MySQL, PostgreSQL or SQLite selected
// purely by configuration.
//
// # Connect
//
// Connect builds the dialector for the configured driver, opens it with
// TranslateError enabled (so unique-key races surface as gorm.ErrDuplicatedKey)
// and pings it. SQLite connections are pinned to a single open connection so an
// in-memory database is shared by every query.
//
// # Schema Inspection
//
// GetTableColumns returns the live column list of a table. The integrity
// feature compares it against the GORM schema of the library models.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "formats")
package database
