package history

// SetSchemaVersionForTest overwrites the stored schema version.
func SetSchemaVersionForTest(s *Store, version int) error {
	_, err := s.db.Exec("UPDATE schema_version SET version = ?", version)
	return err
}

// SchemaVersionRowsForTest counts the rows of the schema_version table.
func SchemaVersionRowsForTest(s *Store) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(1) FROM schema_version").Scan(&n)
	return n, err
}
