package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/blog-website/internal/api"
	"github.com/dom/blog-website/internal/config"
	"github.com/dom/blog-website/internal/domain"
	"github.com/dom/blog-website/internal/repository"
	repoPostgres "github.com/dom/blog-website/internal/repository/postgres"
	"github.com/dom/blog-website/internal/security"
	"github.com/dom/blog-website/internal/service"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_blog"),
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

	err = db.AutoMigrate(
		&domain.User{},
		&domain.Session{},
		&domain.Post{},
	)
	if err != nil {
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

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		ctx := context.Background()
		tdb.Container.Terminate(ctx)
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"posts",
		"sessions",
		"users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing. Hashing costs are
// deliberately low so the suite stays fast.
func TestConfig() *config.Config {
	return &config.Config{
		Port:        "0",
		Environment: "test",

		HashTimeCost:    1,
		HashMemoryKiB:   8 * 1024,
		HashParallelism: 1,
		HashPepper:      "test-pepper",

		JWTIssuer:          "blog-website-test",
		JWTAudience:        "blog-website-test",
		AccessTokenSecret:  "test-access-secret-for-testing-only",
		AccessTokenTTL:     time.Hour,
		RefreshTokenSecret: "test-refresh-secret-for-testing-only",
		RefreshTokenTTL:    7 * time.Hour,
	}
}

// TestHasher builds a hasher from cfg.
func TestHasher(cfg *config.Config) *security.Hasher {
	return security.NewHasher(security.HashParams{
		TimeCost:    cfg.HashTimeCost,
		MemoryKiB:   cfg.HashMemoryKiB,
		Parallelism: cfg.HashParallelism,
	}, cfg.HashPepper)
}

// TestSigner builds a token signer from cfg.
func TestSigner(cfg *config.Config) *security.TokenSigner {
	return security.NewTokenSigner(cfg.JWTIssuer, cfg.JWTAudience,
		security.SignerConfig{Secret: cfg.AccessTokenSecret, TTL: cfg.AccessTokenTTL},
		security.SignerConfig{Secret: cfg.RefreshTokenSecret, TTL: cfg.RefreshTokenTTL},
	)
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Config   *config.Config
}

// NewTestServer spins up the full stack against a testcontainer database.
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()
	log := zap.NewNop()

	hasher := TestHasher(cfg)
	signer := TestSigner(cfg)
	repos := repoPostgres.NewRepositories(testDB.DB, hasher, log)
	services := service.NewServices(repos, hasher, signer, log)
	router := api.NewRouter(services, log)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Config:   cfg,
	}
}

// APIURL builds a URL under /api/v1.
func (ts *TestServer) APIURL(path string) string {
	return ts.Server.URL + "/api/v1" + path
}
