package postgres

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/goticket/internal/domain"
	"github.com/iho/goticket/internal/infrastructure/metrics"
)

var testNow = time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

func TestAccountRepositoryCreateDuplicate(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec("INSERT INTO accounts").
		WithArgs("alice", int64(0), []byte("blob"), int64(0), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	repo := NewAccountRepository(mock, nil)
	err := repo.Create(context.Background(), &domain.Account{UserID: "alice", EncryptedCard: []byte("blob"), CreatedAt: testNow, UpdatedAt: testNow})

	if !errors.Is(err, domain.ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	assertExpectations(t, mock)
}

func TestAccountRepositoryGetByID(t *testing.T) {
	mock := newMockPool(t)
	rows := mock.NewRows([]string{"user_id", "balance", "encrypted_card", "version", "created_at", "updated_at"}).
		AddRow("alice", int64(2500), []byte("blob"), int64(3), testNow, testNow)
	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE user_id").WithArgs("alice").WillReturnRows(rows)
	mock.ExpectQuery("SELECT (.+) FROM accounts WHERE user_id").WithArgs("bob").WillReturnError(pgx.ErrNoRows)

	repo := NewAccountRepository(mock, nil)

	acc, err := repo.GetByID(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc.Balance != domain.MustMoney("25.00") || acc.Version != 3 {
		t.Fatalf("unexpected account %+v", acc)
	}

	if _, err := repo.GetByID(context.Background(), "bob"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	assertExpectations(t, mock)
}

func TestAccountRepositoryDebit(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		want    domain.Money
		wantErr error
	}{
		{
			name: "guarded update succeeds",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("UPDATE accounts").
					WithArgs(int64(500), pgxmock.AnyArg(), "alice").
					WillReturnRows(mock.NewRows([]string{"balance"}).AddRow(int64(2000)))
			},
			want: domain.MustMoney("20.00"),
		},
		{
			name: "balance too low",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("UPDATE accounts").
					WithArgs(int64(500), pgxmock.AnyArg(), "alice").
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery("SELECT EXISTS").WithArgs("alice").
					WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name: "no such account",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("UPDATE accounts").
					WithArgs(int64(500), pgxmock.AnyArg(), "alice").
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery("SELECT EXISTS").WithArgs("alice").
					WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr: domain.ErrAccountNotFound,
		},
		{
			name: "connection lost",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("UPDATE accounts").
					WithArgs(int64(500), pgxmock.AnyArg(), "alice").
					WillReturnError(&pgconn.PgError{Code: pgErrAdminShutdown})
			},
			wantErr: domain.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tt.setup(mock)

			balance, err := NewAccountRepository(mock, nil).Debit(context.Background(), "alice", domain.MustMoney("5.00"), testNow)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil || balance != tt.want {
				t.Fatalf("got balance=%v err=%v, want %v", balance, err, tt.want)
			}
			assertExpectations(t, mock)
		})
	}
}

func TestAccountRepositoryCountsDBErrors(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectQuery("UPDATE accounts").
		WithArgs(int64(100), pgxmock.AnyArg(), "alice").
		WillReturnError(errors.New("boom"))

	m := metrics.New(prometheus.NewRegistry())
	_, err := NewAccountRepository(mock, m).Credit(context.Background(), "alice", 100, testNow)
	if err == nil {
		t.Fatalf("expected error")
	}

	if got := testutil.ToFloat64(m.DBErrors.WithLabelValues("account_credit")); got != 1 {
		t.Fatalf("expected 1 db error, got %v", got)
	}
}

func TestCatalogRepositoryAdjustQuantity(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		want    int
		wantErr error
	}{
		{
			name: "reserve",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("UPDATE catalog_items").
					WithArgs(int32(-3), "GameA").
					WillReturnRows(mock.NewRows([]string{"quantity"}).AddRow(int32(7)))
			},
			want: 7,
		},
		{
			name: "would go negative",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("UPDATE catalog_items").
					WithArgs(int32(-3), "GameA").
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery("SELECT EXISTS").WithArgs("GameA").
					WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr: domain.ErrInsufficientInventory,
		},
		{
			name: "unknown event",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("UPDATE catalog_items").
					WithArgs(int32(-3), "GameA").
					WillReturnError(pgx.ErrNoRows)
				mock.ExpectQuery("SELECT EXISTS").WithArgs("GameA").
					WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr: domain.ErrUnknownEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			tt.setup(mock)

			got, err := NewCatalogRepository(mock, nil).AdjustQuantity(context.Background(), "GameA", -3)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil || got != tt.want {
				t.Fatalf("got %d err=%v, want %d", got, err, tt.want)
			}
			assertExpectations(t, mock)
		})
	}
}

func TestCatalogRepositoryListOrder(t *testing.T) {
	mock := newMockPool(t)
	rows := mock.NewRows([]string{"event_name", "location", "unit_price", "event_date", "quantity", "created_at", "updated_at"}).
		AddRow("GameA", "Arena", int64(2500), testNow, int32(10), testNow, testNow).
		AddRow("GameB", "Dome", int64(1000), testNow.Add(time.Hour), int32(0), testNow, testNow)
	mock.ExpectQuery("ORDER BY event_date, event_name").WillReturnRows(rows)

	items, err := NewCatalogRepository(mock, nil).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].EventName != "GameA" || items[1].Quantity != 0 {
		t.Fatalf("unexpected items %+v", items)
	}
	assertExpectations(t, mock)
}

func TestHoldingRepositoryDecrementInTx(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs("alice", "GameA").
		WillReturnRows(mock.NewRows([]string{"seq", "user_id", "event_name", "quantity", "cost_basis", "created_at", "updated_at"}).
			AddRow(int64(1), "alice", "GameA", int32(3), int64(7500), testNow, testNow))
	mock.ExpectExec("UPDATE holdings").
		WithArgs("alice", "GameA", int32(2), int64(5000), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM holdings").WithArgs("alice", "GameB").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectCommit()

	ctx := context.Background()
	repo := NewHoldingRepository(mock, nil)
	tx, err := newTxManagerWithPool(mock).Begin(ctx)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	h, err := repo.GetForUpdate(ctx, tx, "alice", "GameA")
	if err != nil || h.Quantity != 3 {
		t.Fatalf("get for update: %+v %v", h, err)
	}
	if err := repo.UpdateQuantity(ctx, tx, "alice", "GameA", 2, 5000, testNow); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.Delete(ctx, tx, "alice", "GameB"); !errors.Is(err, domain.ErrHoldingNotFound) {
		t.Fatalf("expected ErrHoldingNotFound, got %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	assertExpectations(t, mock)
}

func TestHoldingRepositoryUpsertAccumulates(t *testing.T) {
	mock := newMockPool(t)
	mock.ExpectExec("ON CONFLICT \\(user_id, event_name\\) DO UPDATE").
		WithArgs("alice", "GameA", int32(2), int64(5000), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := NewHoldingRepository(mock, nil).Upsert(context.Background(), &domain.Holding{
		UserID: "alice", EventName: "GameA", Quantity: 2, CostBasis: 5000, CreatedAt: testNow, UpdatedAt: testNow,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertExpectations(t, mock)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		unavailable bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, true},
		{"shutdown", &pgconn.PgError{Code: pgErrAdminShutdown}, true},
		{"lock timeout", &pgconn.PgError{Code: pgErrLockNotAvailable}, true},
		{"check violation", &pgconn.PgError{Code: pgErrCheckViolation}, false},
		{"no rows", pgx.ErrNoRows, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if errors.Is(got, domain.ErrStoreUnavailable) != tt.unavailable {
				t.Fatalf("mapError(%v) = %v", tt.err, got)
			}
		})
	}
}
