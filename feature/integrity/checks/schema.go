package checks

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"ogre/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SchemaReport strictly types the result of a schema integrity check.
type SchemaReport struct {
	Dialect string                 `json:"dialect"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "missing_table", "error"
}

// CheckSchema verifies the database schema using GORM models as the source of truth.
// Column types are compared by family, so "varchar(255)" and "character varying" match.
func CheckSchema(db *gorm.DB, models ...any) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Dialect: db.Dialector.Name(),
		Tables:  make(map[string]TableReport),
		Matched: true,
		Errors:  []string{},
	}

	cache := &sync.Map{}
	for _, model := range models {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}

		tbl := TableReport{
			MissingColumns: []string{},
			TypeMismatches: []string{},
			Status:         "ok",
		}

		if !db.Migrator().HasTable(s.Table) {
			tbl.Status = "missing_table"
			report.Tables[s.Table] = tbl
			report.Matched = false
			continue
		}

		actualCols, err := database.GetTableColumns(db, s.Table)
		if err != nil {
			tbl.Status = "error"
			report.Tables[s.Table] = tbl
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", s.Table, err))
			report.Matched = false
			continue
		}

		actual := make(map[string]string, len(actualCols))
		for _, col := range actualCols {
			actual[col.Field] = col.Type
		}

		for _, field := range s.Fields {
			if field.DBName == "" || field.IgnoreMigration {
				continue
			}
			actualType, ok := actual[strings.ToLower(field.DBName)]
			if !ok {
				tbl.MissingColumns = append(tbl.MissingColumns, field.DBName)
				continue
			}
			expected := expectedFamily(field)
			if got := typeFamily(actualType); expected != "" && got != "" && !compatible(expected, got) {
				tbl.TypeMismatches = append(tbl.TypeMismatches,
					fmt.Sprintf("%s: expected %s, got %s", field.DBName, expected, actualType))
			}
		}

		sort.Strings(tbl.MissingColumns)
		if len(tbl.MissingColumns) > 0 || len(tbl.TypeMismatches) > 0 {
			tbl.Status = "error"
			report.Matched = false
		}
		report.Tables[s.Table] = tbl
	}

	return report, nil
}

func expectedFamily(field *schema.Field) string {
	if t, ok := field.TagSettings["TYPE"]; ok {
		if fam := typeFamily(strings.ToLower(t)); fam != "" {
			return fam
		}
	}
	switch field.DataType {
	case schema.String:
		return "string"
	case schema.Int, schema.Uint:
		return "int"
	case schema.Bool:
		return "bool"
	case schema.Float:
		return "float"
	case schema.Time:
		return "time"
	case schema.Bytes:
		return "bytes"
	}
	if strings.Contains(strings.ToLower(string(field.DataType)), "json") {
		return "json"
	}
	return ""
}

// typeFamily maps a dialect column type to a coarse family. Unknown types yield "".
func typeFamily(t string) string {
	switch {
	case strings.HasPrefix(t, "tinyint(1)"), strings.HasPrefix(t, "bool"):
		return "bool"
	case strings.Contains(t, "json"):
		return "json"
	case strings.Contains(t, "char"), strings.Contains(t, "text"), strings.HasPrefix(t, "uuid"):
		return "string"
	case strings.Contains(t, "int"), strings.Contains(t, "serial"):
		return "int"
	case strings.Contains(t, "date"), strings.Contains(t, "time"):
		return "time"
	case strings.Contains(t, "real"), strings.Contains(t, "double"), strings.Contains(t, "float"),
		strings.Contains(t, "decimal"), strings.Contains(t, "numeric"):
		return "float"
	case strings.Contains(t, "blob"), strings.Contains(t, "bytea"), strings.Contains(t, "binary"):
		return "bytes"
	}
	return ""
}

// compatible accounts for dialects without native booleans or json columns.
func compatible(expected, got string) bool {
	if expected == got {
		return true
	}
	switch expected {
	case "bool":
		return got == "int" || got == "float"
	case "json":
		return got == "string" || got == "bytes"
	case "int":
		return got == "float"
	}
	return false
}
