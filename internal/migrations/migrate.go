package migrations

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	pg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

const migrationsDir = "migrations"

// RunMigrations brings the record store up to the newest file migration in
// ./migrations. A database that already carries the players schema but no
// migrate bookkeeping table is baselined first, so pointing this at a
// hand-created database does not replay the schema into it.
func RunMigrations(databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("database URL is empty")
	}

	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer sqlDB.Close()

	driver, err := pg.WithInstance(sqlDB, &pg.Config{})
	if err != nil {
		return fmt.Errorf("create migrate driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if needsBaseline(sqlDB) {
		if latest := latestVersion(migrationsDir); latest > 0 {
			log.Printf("[MIGRATE] Existing schema without bookkeeping, baselining to version %d", latest)
			if err := m.Force(int(latest)); err != nil {
				log.Printf("[MIGRATE] Baseline to version %d failed: %v", latest, err)
			}
		}
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	log.Printf("[MIGRATE] Record store schema is current")
	return nil
}

// needsBaseline reports whether the players table exists while migrate's
// own bookkeeping table does not.
func needsBaseline(sqlDB *sql.DB) bool {
	return tableExists(sqlDB, "players") && !tableExists(sqlDB, "schema_migrations")
}

func tableExists(sqlDB *sql.DB, name string) bool {
	var exists bool
	row := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", name)
	if err := row.Scan(&exists); err != nil {
		return false
	}
	return exists
}

// latestVersion scans dir for files with a numeric version prefix
// (000002_add_x.up.sql) and returns the highest version found.
func latestVersion(dir string) int64 {
	files, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}

	re := regexp.MustCompile(`^0*([0-9]+)_`)
	var newest int64
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		m := re.FindStringSubmatch(f.Name())
		if len(m) < 2 {
			continue
		}
		if v, _ := strconv.ParseInt(m[1], 10, 64); v > newest {
			newest = v
		}
	}
	return newest
}
