package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

// Plain SQL migration runner. Forward migrations are the sorted .sql files
// under migrations/ (rollback files excluded); -rollback applies the
// _rollback.sql pair of the last recorded migration.
func main() {
	rollback := flag.Bool("rollback", false, "Rollback the last migration")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	migrationsDir := "migrations"
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		log.Fatalf("failed to read migrations directory: %v", err)
	}

	var migrationFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if filepath.Ext(name) == ".sql" && !strings.HasSuffix(name, "_rollback.sql") {
			migrationFiles = append(migrationFiles, name)
		}
	}
	sort.Strings(migrationFiles)

	// Same tracking table the in-app runner uses, so the two never
	// double-apply.
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		log.Fatalf("failed to ensure migrations table: %v", err)
	}

	if *rollback {
		rollbackLast(db, migrationsDir)
		return
	}

	for _, name := range migrationFiles {
		var exists bool
		if err := db.QueryRow(
			`SELECT EXISTS (SELECT 1 FROM migrations WHERE name = $1)`, name,
		).Scan(&exists); err != nil {
			log.Fatalf("failed to check migration %s: %v", name, err)
		}
		if exists {
			continue
		}

		content, err := os.ReadFile(filepath.Join(migrationsDir, name))
		if err != nil {
			log.Fatalf("failed to read migration %s: %v", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			log.Fatalf("failed to begin transaction: %v", err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			log.Fatalf("failed to apply migration %s: %v", name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO migrations (name) VALUES ($1)`, name,
		); err != nil {
			tx.Rollback()
			log.Fatalf("failed to record migration %s: %v", name, err)
		}
		if err := tx.Commit(); err != nil {
			log.Fatalf("failed to commit migration %s: %v", name, err)
		}

		log.Printf("applied %s", name)
	}
}

func rollbackLast(db *sql.DB, migrationsDir string) {
	var name string
	err := db.QueryRow(`
		SELECT name
		FROM migrations
		ORDER BY applied_at DESC, id DESC
		LIMIT 1
	`).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Fatal("no migrations to rollback")
		}
		log.Fatalf("failed to get last migration: %v", err)
	}

	rollbackFile := fmt.Sprintf("%s_rollback.sql", strings.TrimSuffix(name, ".sql"))
	content, err := os.ReadFile(filepath.Join(migrationsDir, rollbackFile))
	if err != nil {
		log.Fatalf("failed to read rollback file %s: %v", rollbackFile, err)
	}

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("failed to begin transaction: %v", err)
	}
	if _, err := tx.Exec(string(content)); err != nil {
		tx.Rollback()
		log.Fatalf("failed to apply rollback %s: %v", rollbackFile, err)
	}
	if _, err := tx.Exec(`DELETE FROM migrations WHERE name = $1`, name); err != nil {
		tx.Rollback()
		log.Fatalf("failed to unrecord migration %s: %v", name, err)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("failed to commit rollback: %v", err)
	}

	log.Printf("rolled back %s", name)
}
