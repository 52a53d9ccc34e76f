package inventory

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// The repository builds SQL from the cols list; a column absent from the
// migration breaks every stock upsert and threshold query at runtime.
func TestMigrationDeclaresInventoryColumns(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "001_core.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	marker := "CREATE TABLE IF NOT EXISTS inventory_items ("
	start := strings.Index(string(raw), marker)
	if start < 0 {
		t.Fatal("inventory_items table not declared in migration")
	}
	ddl := string(raw)[start:]
	if end := strings.Index(ddl, "\n);"); end >= 0 {
		ddl = ddl[:end]
	}

	for _, col := range strings.Split(cols, ",") {
		col = strings.TrimSpace(col)
		if !regexp.MustCompile(`(?m)^\s*` + col + `\s`).MatchString(ddl) {
			t.Errorf("column %q used by the repository is missing from inventory_items", col)
		}
	}

	// The upsert relies on this arbiter.
	if !strings.Contains(ddl, "UNIQUE (pharmacy_id, medicine_name, batch_number)") {
		t.Error("inventory_items is missing the (pharmacy_id, medicine_name, batch_number) unique key")
	}
}
