// Package migration applies versioned SQL schema changes to SQLite databases.
//
// Migration files are named {version}_{description}.sql (for example
// "001_initial_schema.sql") and are read from any fs.FS, typically an
// embedded directory. Applied versions and their checksums are tracked in the
// schema_migrations table; each migration runs in its own transaction.
//
//	manager := migration.NewManager(migration.NewFileScanner(), migration.NewSQLiteExecutor(db), files, "migrations", logger)
//	if _, err := manager.RunMigrations(ctx); err != nil {
//		return err
//	}
package migration
