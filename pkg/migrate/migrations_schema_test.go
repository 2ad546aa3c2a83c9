package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gcommerce/groupcommerce-backend/pkg/migrate"
)

func TestCoreSchemaMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_core_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no core schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE TABLE IF NOT EXISTS group_contents",
		"REFERENCES orders(id) ON DELETE CASCADE",
		"REFERENCES order_line_items(id) ON DELETE CASCADE",
		"CHECK (quantity >= 0)",
		"UNIQUE (group_id, role, permission)",
		"DROP TABLE IF EXISTS split_items",
	}
	for _, check := range checks {
		if !strings.Contains(content, check) {
			t.Fatalf("migration missing %q", check)
		}
	}
}

func TestProductCatalogMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_add_product_catalog.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no product catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE TABLE IF NOT EXISTS group_product_contents",
		"REFERENCES products(id) ON DELETE CASCADE",
		"UNIQUE (group_id, product_id, plugin_id)",
		"DROP TABLE IF EXISTS group_product_contents",
	}
	for _, check := range checks {
		if !strings.Contains(content, check) {
			t.Fatalf("migration missing %q", check)
		}
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir failed for shipped migrations: %v", err)
	}
}
