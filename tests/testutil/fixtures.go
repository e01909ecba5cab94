package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/cardcrypto"
	"github.com/iho/goticket/internal/infrastructure/postgres"
)

// TestCard is a well-formed card number for fixtures.
const TestCard = "4111111111111111"

// TestMasterKey is the card key fixtures encrypt with.
var TestMasterKey = []byte("integration-only-card-key-32byte")

// TestDB provides an isolated, migrated database.
type TestDB struct {
	Pool   *pgxpool.Pool
	Cipher *cardcrypto.Cipher
	t      *testing.T
}

// NewTestDB connects to DATABASE_URL when set, otherwise starts a disposable
// Postgres container. The schema comes from the embedded migrations.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	return NewTestDBWithMaxConns(t, 20)
}

// NewTestDBWithMaxConns is NewTestDB with a pool of at most maxConns
// connections.
func NewTestDBWithMaxConns(t *testing.T, maxConns int) *TestDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = startPostgres(ctx, t)
	}

	if err := postgres.NewMigrator(dbURL, "", zerolog.Nop()).Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := postgres.NewPool(ctx, dbURL, maxConns, min(2, maxConns))
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	cipher, err := cardcrypto.NewCipher(TestMasterKey)
	if err != nil {
		t.Fatalf("failed to create cipher: %v", err)
	}

	db := &TestDB{Pool: pool, Cipher: cipher, t: t}
	t.Cleanup(db.Cleanup)
	return db
}

func startPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ticket"),
		tcpostgres.WithUsername("ticket"),
		tcpostgres.WithPassword("ticket"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}
	return connStr
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `TRUNCATE TABLE holdings, catalog_items, accounts CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestAccount inserts an account holding balance and the test card.
func (db *TestDB) CreateTestAccount(ctx context.Context, userID string, balance domain.Money) {
	db.t.Helper()

	blob, err := db.Cipher.Encrypt(userID, []byte(TestCard))
	if err != nil {
		db.t.Fatalf("failed to encrypt card: %v", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO accounts (user_id, balance, encrypted_card) VALUES ($1, $2, $3)`,
		userID, balance.Cents(), blob)
	if err != nil {
		db.t.Fatalf("failed to create test account: %v", err)
	}
}

// CreateTestEvent inserts a catalog item.
func (db *TestDB) CreateTestEvent(ctx context.Context, name string, price domain.Money, quantity int) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx,
		`INSERT INTO catalog_items (event_name, location, unit_price, event_date, quantity) VALUES ($1, $2, $3, $4, $5)`,
		name, "Camp Randall Stadium", price.Cents(), time.Now().Add(30*24*time.Hour).UTC(), quantity)
	if err != nil {
		db.t.Fatalf("failed to create test event: %v", err)
	}
}
