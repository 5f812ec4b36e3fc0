package database_test

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"testing"

	"github.com/keyxmakerx/inlineeditor/internal/plugins/campaigns"
)

// migrationsDir returns the absolute path to db/migrations/ from the project root.
func migrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	// thisFile is internal/database/migrate_test.go, project root is two dirs up.
	dir := filepath.Join(filepath.Dir(thisFile), "..", "..", "db", "migrations")
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("migrations directory not found at %s: %v", dir, err)
	}
	return dir
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

var migrationName = regexp.MustCompile(`^(\d{6})_[a-z0-9_]+\.(up|down)\.sql$`)

// TestMigrations_PairedAndSequential checks every migration has both
// directions and that versions start at 1 without gaps.
func TestMigrations_PairedAndSequential(t *testing.T) {
	entries, err := os.ReadDir(migrationsDir(t))
	if err != nil {
		t.Fatalf("reading migrations: %v", err)
	}

	directions := make(map[string]map[string]bool)
	for _, entry := range entries {
		m := migrationName.FindStringSubmatch(entry.Name())
		if m == nil {
			t.Errorf("unexpected file name %q", entry.Name())
			continue
		}
		base := strings.TrimSuffix(strings.TrimSuffix(entry.Name(), ".up.sql"), ".down.sql")
		if directions[base] == nil {
			directions[base] = make(map[string]bool)
		}
		directions[base][m[2]] = true
	}
	if len(directions) == 0 {
		t.Fatal("no migration files found")
	}

	var bases []string
	for base, dirs := range directions {
		if !dirs["up"] || !dirs["down"] {
			t.Errorf("%s: expected both up and down files", base)
		}
		bases = append(bases, base)
	}
	sort.Strings(bases)
	for i, base := range bases {
		want := fmt.Sprintf("%06d", i+1)
		if !strings.HasPrefix(base, want+"_") {
			t.Errorf("expected migration %d to start with %s, got %s", i+1, want, base)
		}
	}
}

var (
	createTable = regexp.MustCompile(`(?i)CREATE TABLE(?: IF NOT EXISTS)?\s+(\w+)`)
	dropTable   = regexp.MustCompile(`(?i)DROP TABLE(?: IF EXISTS)?\s+(\w+)`)
)

// TestMigrations_DownDropsCreatedTables checks every table created by an
// up migration is dropped by its down migration.
func TestMigrations_DownDropsCreatedTables(t *testing.T) {
	dir := migrationsDir(t)
	ups, err := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if err != nil {
		t.Fatalf("globbing migration files: %v", err)
	}

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		dropped := make(map[string]bool)
		for _, m := range dropTable.FindAllStringSubmatch(readFile(t, down), -1) {
			dropped[m[1]] = true
		}
		for _, m := range createTable.FindAllStringSubmatch(readFile(t, up), -1) {
			if !dropped[m[1]] {
				t.Errorf("%s creates %s but %s does not drop it", filepath.Base(up), m[1], filepath.Base(down))
			}
		}
	}
}

// TestMigrations_MemberRoleRange keeps the campaign_members role CHECK in
// line with the roles the application assigns.
func TestMigrations_MemberRoleRange(t *testing.T) {
	sql := readFile(t, filepath.Join(migrationsDir(t), "000002_create_campaigns.up.sql"))
	m := regexp.MustCompile(`CHECK \(role BETWEEN (\d) AND (\d)\)`).FindStringSubmatch(sql)
	if m == nil {
		t.Fatal("role CHECK constraint not found")
	}
	for _, role := range []campaigns.Role{campaigns.RolePlayer, campaigns.RoleScribe, campaigns.RoleOwner} {
		if n := int(role); n < int(m[1][0]-'0') || n > int(m[2][0]-'0') {
			t.Errorf("role %s (%d) outside the CHECK range %s..%s", role, n, m[1], m[2])
		}
	}
}
