package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// ColumnType represents expected column schema
type ColumnType struct {
	Name     string
	DataType string
	Nullable bool
}

// TableSchema represents expected table structure
type TableSchema struct {
	Name    string
	Columns []ColumnType
}

// SchemaGuard validates database schema matches expectations
type SchemaGuard struct {
	db *sql.DB
}

// NewSchemaGuard creates a new schema guard
func NewSchemaGuard(db *sql.DB) *SchemaGuard {
	return &SchemaGuard{db: db}
}

// ExpectedSchemas lists the tables the repositories read and write. The
// guard runs at startup so a migration drift fails fast instead of
// surfacing as scan errors mid-request.
func ExpectedSchemas() []TableSchema {
	return []TableSchema{
		{
			Name: "users",
			Columns: []ColumnType{
				{Name: "id", DataType: "bigint"},
				{Name: "username", DataType: "varchar"},
				{Name: "name", DataType: "varchar"},
				{Name: "bio", DataType: "varchar"},
				{Name: "location", DataType: "varchar"},
				{Name: "link", DataType: "varchar"},
				{Name: "birth_day", DataType: "datetime", Nullable: true},
				{Name: "status", DataType: "varchar"},
				{Name: "last_seen_of_timeline", DataType: "datetime", Nullable: true},
				{Name: "created_at", DataType: "datetime"},
				{Name: "updated_at", DataType: "datetime"},
			},
		},
		{
			Name: "follows",
			Columns: []ColumnType{
				{Name: "actor_id", DataType: "bigint"},
				{Name: "subject_id", DataType: "bigint"},
				{Name: "status", DataType: "varchar"},
				{Name: "created_at", DataType: "datetime"},
			},
		},
		{
			Name: "tweets",
			Columns: []ColumnType{
				{Name: "id", DataType: "bigint"},
				{Name: "user_id", DataType: "bigint"},
				{Name: "text", DataType: "varchar"},
				{Name: "tweet_type", DataType: "varchar"},
				{Name: "reference_tweet_id", DataType: "bigint", Nullable: true},
				{Name: "created_at", DataType: "datetime"},
			},
		},
		{
			Name: "likes",
			Columns: []ColumnType{
				{Name: "user_id", DataType: "bigint"},
				{Name: "tweet_id", DataType: "bigint"},
				{Name: "created_at", DataType: "datetime"},
			},
		},
	}
}

// ValidateTable validates a table's schema
func (sg *SchemaGuard) ValidateTable(schema TableSchema) error {
	query := `
		SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE
		FROM INFORMATION_SCHEMA.COLUMNS
		WHERE TABLE_SCHEMA = DATABASE()
		AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`

	rows, err := sg.db.Query(query, schema.Name)
	if err != nil {
		return fmt.Errorf("failed to query table schema for %s: %w", schema.Name, err)
	}
	defer rows.Close()

	actualColumns := make(map[string]ColumnType)
	for rows.Next() {
		var colName, dataType, isNullable string
		if err := rows.Scan(&colName, &dataType, &isNullable); err != nil {
			return fmt.Errorf("failed to scan column info: %w", err)
		}
		actualColumns[colName] = ColumnType{
			Name:     colName,
			DataType: dataType,
			Nullable: isNullable == "YES",
		}
	}

	if len(actualColumns) == 0 {
		return fmt.Errorf("table %s does not exist or has no columns", schema.Name)
	}

	for _, expectedCol := range schema.Columns {
		actualCol, exists := actualColumns[expectedCol.Name]
		if !exists {
			return fmt.Errorf("table %s missing expected column: %s", schema.Name, expectedCol.Name)
		}

		if !matchesDataType(actualCol.DataType, expectedCol.DataType) {
			return fmt.Errorf("table %s column %s has type %s, expected %s",
				schema.Name, expectedCol.Name, actualCol.DataType, expectedCol.DataType)
		}
	}

	return nil
}

// matchesDataType checks if data types are compatible, allowing for size
// specifications like varchar(191) against varchar.
func matchesDataType(actual, expected string) bool {
	actual = strings.ToLower(actual)
	expected = strings.ToLower(expected)
	if actual == expected {
		return true
	}
	return strings.HasPrefix(actual, expected)
}

// ValidateTables validates multiple tables
func (sg *SchemaGuard) ValidateTables(schemas []TableSchema) error {
	for _, schema := range schemas {
		if err := sg.ValidateTable(schema); err != nil {
			return err
		}
	}
	return nil
}
