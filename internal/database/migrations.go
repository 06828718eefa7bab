package database

import (
	"embed"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"gorm.io/gorm"

	"invoicing-service/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationRecord tracks which migrations have been applied
type MigrationRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Version   string `gorm:"uniqueIndex;size:255"`
	AppliedAt int64  `gorm:"autoCreateTime"`
}

// Models lists every table the service owns, in dependency order
func Models() []struct {
	Name  string
	Model interface{}
} {
	return []struct {
		Name  string
		Model interface{}
	}{
		{"GSTState", &models.GSTState{}},
		{"Company", &models.Company{}},
		{"Customer", &models.Customer{}},
		{"Product", &models.Product{}},
		{"InvoiceSequence", &models.InvoiceSequence{}},
		{"Invoice", &models.Invoice{}},
		{"InvoiceItem", &models.InvoiceItem{}},
		{"CreditNote", &models.CreditNote{}},
		{"CreditNoteItem", &models.CreditNoteItem{}},
		{"PaymentOrder", &models.PaymentOrder{}},
	}
}

// RunMigrations runs all pending database migrations
func RunMigrations(db *gorm.DB) error {
	log.Println("Starting database migrations...")

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		log.Printf("  (warning: could not enable pgcrypto: %v)", err)
	}

	if err := db.AutoMigrate(&MigrationRecord{}); err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}

	// Schema, one model at a time for clearer errors
	log.Println("  → Running schema migrations...")
	for _, m := range Models() {
		log.Printf("    → Migrating %s...", m.Name)
		if err := db.AutoMigrate(m.Model); err != nil {
			return fmt.Errorf("failed to auto-migrate %s: %w", m.Name, err)
		}
	}
	log.Println("  ✓ Schema migrations complete")

	// AutoMigrate does not add indexes to existing tables; the sequence
	// upsert and the catalog import depend on these for ON CONFLICT
	log.Println("  → Ensuring unique indexes exist...")
	if err := ensureUniqueIndexes(db); err != nil {
		return fmt.Errorf("failed to create unique indexes: %w", err)
	}
	log.Println("  ✓ Unique indexes verified")

	log.Println("  → Running SQL migrations...")
	if err := runSQLMigrations(db); err != nil {
		return fmt.Errorf("failed to run SQL migrations: %w", err)
	}
	log.Println("  ✓ SQL migrations complete")

	log.Println("✓ All database migrations complete")
	return nil
}

// runSQLMigrations executes embedded SQL migration files in order
func runSQLMigrations(db *gorm.DB) error {
	fileNames, err := migrationFiles()
	if err != nil {
		return err
	}

	for _, fileName := range fileNames {
		var record MigrationRecord
		if err := db.Where("version = ?", fileName).First(&record).Error; err == nil {
			log.Printf("    → Skipping %s (already applied)", fileName)
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + fileName)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", fileName, err)
		}

		log.Printf("    → Applying %s...", fileName)
		if err := executeSQLStatements(db, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", fileName, err)
		}

		if err := db.Create(&MigrationRecord{Version: fileName}).Error; err != nil {
			return fmt.Errorf("failed to record migration %s: %w", fileName, err)
		}
		log.Printf("    ✓ Applied %s", fileName)
	}

	return nil
}

// migrationFiles returns the embedded .sql files sorted by name
func migrationFiles() ([]string, error) {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var fileNames []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			fileNames = append(fileNames, entry.Name())
		}
	}
	sort.Strings(fileNames)
	return fileNames, nil
}

// executeSQLStatements executes a SQL script with multiple statements
func executeSQLStatements(db *gorm.DB, sql string) error {
	statements := splitSQLStatements(sql)

	for i, stmt := range statements {
		stmt = stripComments(stmt)
		if stmt == "" {
			continue
		}

		result := db.Exec(stmt)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) ||
				strings.Contains(result.Error.Error(), "duplicate key") ||
				strings.Contains(result.Error.Error(), "already exists") {
				log.Printf("      [%d/%d] SKIP (duplicate)", i+1, len(statements))
				continue
			}
			log.Printf("      [%d/%d] FAIL: %v", i+1, len(statements), result.Error)
			return result.Error
		}
		log.Printf("      [%d/%d] OK (rows: %d)", i+1, len(statements), result.RowsAffected)
	}

	return nil
}

// stripComments drops full-line "--" comments from a statement
func stripComments(stmt string) string {
	var sqlLines []string
	for _, line := range strings.Split(stmt, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		sqlLines = append(sqlLines, line)
	}
	return strings.TrimSpace(strings.Join(sqlLines, "\n"))
}

// ensureUniqueIndexes creates unique indexes required for ON CONFLICT clauses
func ensureUniqueIndexes(db *gorm.DB) error {
	indexes := []struct {
		name  string
		sql   string
		table string
	}{
		{
			name:  "idx_invoices_company_number",
			sql:   `CREATE UNIQUE INDEX IF NOT EXISTS idx_invoices_company_number ON invoices (company_id, invoice_number)`,
			table: "invoices",
		},
		{
			name:  "idx_credit_notes_company_number",
			sql:   `CREATE UNIQUE INDEX IF NOT EXISTS idx_credit_notes_company_number ON credit_notes (company_id, credit_note_number)`,
			table: "credit_notes",
		},
		{
			name:  "idx_products_owner_name",
			sql:   `CREATE UNIQUE INDEX IF NOT EXISTS idx_products_owner_name ON products (owner_id, name)`,
			table: "products",
		},
		{
			name:  "idx_companies_owner",
			sql:   `CREATE UNIQUE INDEX IF NOT EXISTS idx_companies_owner ON companies (owner_id)`,
			table: "companies",
		},
	}

	for _, idx := range indexes {
		var exists bool
		checkSQL := "SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = ?)"
		if err := db.Raw(checkSQL, idx.table).Scan(&exists).Error; err != nil {
			log.Printf("    (warning: could not check table %s: %v)", idx.table, err)
			continue
		}
		if !exists {
			log.Printf("    (skipping index %s: table %s does not exist)", idx.name, idx.table)
			continue
		}

		if err := db.Exec(idx.sql).Error; err != nil {
			if strings.Contains(err.Error(), "already exists") {
				continue
			}
			return err
		}
		log.Printf("    ✓ Created/verified index %s", idx.name)
	}

	return nil
}

// splitSQLStatements splits SQL content into individual statements,
// ignoring semicolons inside quoted strings
func splitSQLStatements(sql string) []string {
	var statements []string
	var currentStmt strings.Builder
	inString := false
	stringChar := rune(0)

	for i, char := range sql {
		if (char == '\'' || char == '"') && (i == 0 || sql[i-1] != '\\') {
			if !inString {
				inString = true
				stringChar = char
			} else if char == stringChar {
				inString = false
			}
		}

		if char == ';' && !inString {
			if stmt := strings.TrimSpace(currentStmt.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			currentStmt.Reset()
		} else {
			currentStmt.WriteRune(char)
		}
	}

	if stmt := strings.TrimSpace(currentStmt.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}
