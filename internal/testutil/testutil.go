package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dom/cyprine-heroes/internal/api"
	"github.com/dom/cyprine-heroes/internal/config"
	"github.com/dom/cyprine-heroes/internal/heroclient"
	"github.com/dom/cyprine-heroes/internal/repository"
	repoPostgres "github.com/dom/cyprine-heroes/internal/repository/postgres"
	"github.com/dom/cyprine-heroes/internal/service"
	"github.com/dom/cyprine-heroes/internal/storage"
)

// AdminPassword is the admin password of TestConfig.
const AdminPassword = "test-admin-password"

// TestDB is a migrated database for one test.
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB returns a private in-memory SQLite database.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return &TestDB{DB: db, DSN: dsn}
}

// NewPostgresDB starts a PostgreSQL testcontainer. It is skipped with -short.
func NewPostgresDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container in short mode")
	}

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_heroes"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container, if any.
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()
	if err := tdb.DB.Exec("DELETE FROM heroes").Error; err != nil {
		t.Logf("warning: failed to truncate heroes: %v", err)
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:                 "0",
		Environment:          "test",
		AdminPassword:        AdminPassword,
		JWTSecret:            "test-jwt-secret-key-for-testing-only",
		JWTExpirationMinutes: 5,
		UploadDir:            "/uploads",
		AllowedOrigins:       []string{"http://localhost:3000"},
		Logger:               config.LoggerConfig{Level: "error", Format: "console"},
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	FS       afero.Fs
	Images   *storage.ImageStore
	Repos    *repository.Repositories
	Services *service.Services
	Config   *config.Config
}

// NewTestServer serves the full API over SQLite and an in-memory filesystem.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()
	log := zap.NewNop().Sugar()
	fs := afero.NewMemMapFs()

	images, err := storage.NewImageStore(fs, cfg.UploadDir)
	if err != nil {
		t.Fatalf("failed to create image store: %v", err)
	}

	repos := repoPostgres.NewRepositories(testDB.DB)
	services, err := service.NewServices(repos, images, cfg, log)
	if err != nil {
		t.Fatalf("failed to create services: %v", err)
	}
	router := api.NewRouter(services, images, cfg, log)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		FS:       fs,
		Images:   images,
		Repos:    repos,
		Services: services,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api%s", ts.Server.URL, path)
}

// Client returns a directory client bound to the server, without credentials.
func (ts *TestServer) Client() *heroclient.Client {
	return heroclient.New(ts.APIURL(""), heroclient.WithHTTPClient(ts.Server.Client()))
}

// AdminToken logs in through the API and returns the access token.
func (ts *TestServer) AdminToken(t *testing.T) string {
	t.Helper()
	resp, err := ts.Client().Login(context.Background(), AdminPassword)
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	if !strings.EqualFold(resp.TokenType, "bearer") {
		t.Fatalf("unexpected token type %q", resp.TokenType)
	}
	return resp.AccessToken
}

// AdminClient returns a client that sends a valid admin token.
func (ts *TestServer) AdminClient(t *testing.T) *heroclient.Client {
	t.Helper()
	return ts.Client().WithTokens(StaticToken(ts.AdminToken(t)))
}

// StaticToken is a fixed heroclient.TokenSource.
type StaticToken string

func (s StaticToken) Token() string {
	return string(s)
}
