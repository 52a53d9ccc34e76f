package identity

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// The repositories build SQL from these column lists; if the migration does
// not declare every column, profile reads and writes fail at runtime.

func tableDDL(t *testing.T, table string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "001_core.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	marker := "CREATE TABLE IF NOT EXISTS " + table + " ("
	start := strings.Index(string(raw), marker)
	if start < 0 {
		t.Fatalf("table %s not declared in migration", table)
	}
	rest := string(raw)[start:]
	end := strings.Index(rest, "\n);")
	if end < 0 {
		t.Fatalf("unterminated DDL for table %s", table)
	}
	return rest[:end]
}

func assertColumns(t *testing.T, table, colList string) {
	t.Helper()
	ddl := tableDDL(t, table)
	for _, col := range strings.Split(colList, ",") {
		col = strings.TrimSpace(col)
		if col == "" {
			continue
		}
		if !regexp.MustCompile(`(?m)^\s*` + col + `\s`).MatchString(ddl) {
			t.Errorf("column %q used by the repository is missing from table %s", col, table)
		}
	}
}

func TestMigrationDeclaresProfileColumns(t *testing.T) {
	assertColumns(t, "users", "id, email, role")
	assertColumns(t, "patients", patientCols)
	assertColumns(t, "doctors", doctorCols)
	assertColumns(t, "pharmacies", pharmacyCols)
}
