package conversation

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// The repository builds SQL from the cols list; a column absent from the
// migration breaks every chat turn at runtime.
func TestMigrationDeclaresConversationColumns(t *testing.T) {
	raw, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "001_core.sql"))
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	marker := "CREATE TABLE IF NOT EXISTS ai_conversations ("
	start := strings.Index(string(raw), marker)
	if start < 0 {
		t.Fatal("ai_conversations table not declared in migration")
	}
	ddl := string(raw)[start:]
	if end := strings.Index(ddl, "\n);"); end >= 0 {
		ddl = ddl[:end]
	}

	for _, col := range strings.Split(cols, ",") {
		col = strings.TrimSpace(col)
		if !regexp.MustCompile(`(?m)^\s*` + col + `\s`).MatchString(ddl) {
			t.Errorf("column %q used by the repository is missing from ai_conversations", col)
		}
	}

	// AppendTurn's single-statement upsert depends on this arbiter.
	if !regexp.MustCompile(`user_id\s+UUID\s+NOT NULL\s+UNIQUE`).MatchString(ddl) {
		t.Error("ai_conversations is missing the UNIQUE constraint on user_id")
	}
}
