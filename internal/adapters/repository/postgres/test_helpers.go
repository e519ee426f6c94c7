package postgres

import (
	"context"
	"csv-drop/internal/core/domain"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// MigrationsURL returns the file:// url of db/migrations, searching upwards for go.mod
func MigrationsURL() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			u := &url.URL{
				Scheme: "file",
				Path:   filepath.ToSlash(filepath.Join(wd, "db", "migrations")),
			}
			return u.String(), nil
		}
		if wd == filepath.Dir(wd) {
			return "", errors.New("go.mod not found in any parent directory")
		}
		wd = filepath.Dir(wd)
	}
}

// NewTestDB starts postgres in a container and applies the migrations.
// It returns the connection, a cleanup func and a func that empties every table.
func NewTestDB(t *testing.T) (*sql.DB, func(), func()) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:13-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpassword",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Could not start postgres container: %v", err)
	}

	host, _ := postgresContainer.Host(ctx)
	p, _ := postgresContainer.MappedPort(ctx, "5432")
	dbURL := fmt.Sprintf("postgres://testuser:testpassword@%s:%s/testdb?sslmode=disable", host, p.Port())

	sourceURL, err := MigrationsURL()
	if err != nil {
		t.Fatalf("Could not find migrations: %v", err)
	}

	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		t.Fatalf("failed to init migrate with URL %s: %v", sourceURL, err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("failed to run up migrations: %v", err)
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("failed to connect to postgres: %v", err)
	}

	cleanup := func() {
		db.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate postgres container: %v", err)
		}
	}

	truncateAll := func() {
		if _, err := db.Exec(`TRUNCATE TABLE upload_part, file_record RESTART IDENTITY CASCADE`); err != nil {
			t.Fatalf("failed to truncate tables: %v", err)
		}
	}
	return db, cleanup, truncateAll
}

// NewTestRecord builds an uploading record with a unique storage key
func NewTestRecord(name string) domain.FileRecord {
	id := uuid.New()
	return domain.FileRecord{
		ID:           id,
		TenantID:     "1234",
		OriginalName: name,
		SizeBytes:    1024,
		ContentType:  "text/csv",
		StorageKey:   fmt.Sprintf("1234/%s-%s", id, name),
		Status:       domain.FileStatusUploading,
	}
}

// Backdate moves a record's last activity into the past
func Backdate(t *testing.T, db *sql.DB, id uuid.UUID, at time.Time) {
	t.Helper()
	if _, err := db.Exec(`UPDATE file_record SET updated_at = $1 WHERE id = $2`, at, id); err != nil {
		t.Fatalf("failed to backdate record: %v", err)
	}
}
