package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"stock_collector/internal/feature/symbols/domain/entity"
)

// ErrDB はモックと期待値の間で共有されるセンチネルエラーです。
var ErrDB = errors.New("database error")

// mockSymbolRepository is a mock implementation of the SymbolRepository interface.
type mockSymbolRepository struct {
	ListActiveFunc   func(ctx context.Context) ([]entity.Symbol, error)
	FindByTickerFunc func(ctx context.Context, ticker string) (*entity.Symbol, error)
	CreateFunc       func(ctx context.Context, s *entity.Symbol) error
	UpdateFunc       func(ctx context.Context, s *entity.Symbol) error

	CreateCalls int
	UpdateCalls int
}

func (m *mockSymbolRepository) ListActive(ctx context.Context) ([]entity.Symbol, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

func (m *mockSymbolRepository) FindByTicker(ctx context.Context, ticker string) (*entity.Symbol, error) {
	if m.FindByTickerFunc != nil {
		return m.FindByTickerFunc(ctx, ticker)
	}
	return nil, nil
}

func (m *mockSymbolRepository) Create(ctx context.Context, s *entity.Symbol) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, s)
	}
	return nil
}

func (m *mockSymbolRepository) Update(ctx context.Context, s *entity.Symbol) error {
	m.UpdateCalls++
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, s)
	}
	return nil
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestUsecase(repo *mockSymbolRepository) *RegistryUsecase {
	uc := NewRegistryUsecase(repo)
	uc.now = fixedNow
	return uc
}

func TestRegistryUsecase_Add(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name         string
		ticker       string
		displayName  string
		existing     *entity.Symbol
		findErr      error
		expectedErr  error
		expectCreate int
	}{
		{
			name:         "success: new ticker is registered active",
			ticker:       "AAPL",
			displayName:  "Apple Inc.",
			expectCreate: 1,
		},
		{
			name:        "error: duplicate active ticker",
			ticker:      "AAPL",
			existing:    &entity.Symbol{Ticker: "AAPL", IsActive: true},
			expectedErr: ErrDuplicateSymbol,
		},
		{
			name:   "error: duplicate deactivated ticker is NOT reactivated implicitly",
			ticker: "GE",
			existing: func() *entity.Symbol {
				end := fixedNow().AddDate(-1, 0, 0)
				return &entity.Symbol{Ticker: "GE", IsActive: false, EndDate: &end}
			}(),
			expectedErr: ErrDuplicateSymbol,
		},
		{
			name:        "error: lowercase ticker rejected",
			ticker:      "aapl",
			expectedErr: ErrInvalidTicker,
		},
		{
			name:        "error: ticker longer than 10 chars rejected",
			ticker:      "ABCDEFGHIJK",
			expectedErr: ErrInvalidTicker,
		},
		{
			name:        "error: empty ticker rejected",
			ticker:      "",
			expectedErr: ErrInvalidTicker,
		},
		{
			name:        "error: repository lookup fails",
			ticker:      "AAPL",
			findErr:     ErrDB,
			expectedErr: ErrDB,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mockSymbolRepository{
				FindByTickerFunc: func(ctx context.Context, ticker string) (*entity.Symbol, error) {
					return tc.existing, tc.findErr
				},
			}
			uc := newTestUsecase(repo)

			s, err := uc.Add(ctx, tc.ticker, tc.displayName)

			if tc.expectedErr != nil {
				if !errors.Is(err, tc.expectedErr) {
					t.Fatalf("expected %v, got %v", tc.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if repo.CreateCalls != tc.expectCreate {
				t.Errorf("Create called %d times, expected %d", repo.CreateCalls, tc.expectCreate)
			}
			if !s.IsActive {
				t.Error("new symbol should be active")
			}
			if s.EndDate != nil {
				t.Error("new symbol should have no end date")
			}
			if !s.StartDate.Equal(fixedNow()) {
				t.Errorf("start date mismatch: got %v", s.StartDate)
			}
		})
	}
}

func TestRegistryUsecase_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("success: active symbol gets end date and inactive flag", func(t *testing.T) {
		var updated *entity.Symbol
		repo := &mockSymbolRepository{
			FindByTickerFunc: func(ctx context.Context, ticker string) (*entity.Symbol, error) {
				return &entity.Symbol{Ticker: "AAPL", IsActive: true, StartDate: fixedNow().AddDate(-1, 0, 0)}, nil
			},
			UpdateFunc: func(ctx context.Context, s *entity.Symbol) error {
				updated = s
				return nil
			},
		}
		uc := newTestUsecase(repo)

		if err := uc.Deactivate(ctx, "AAPL", "delisted"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated == nil {
			t.Fatal("Update was not called")
		}
		if updated.IsActive {
			t.Error("symbol should be inactive")
		}
		if updated.EndDate == nil || !updated.EndDate.Equal(fixedNow()) {
			t.Errorf("end date mismatch: got %v", updated.EndDate)
		}
	})

	t.Run("idempotent: deactivating an inactive symbol is a no-op", func(t *testing.T) {
		end := fixedNow().AddDate(0, -1, 0)
		repo := &mockSymbolRepository{
			FindByTickerFunc: func(ctx context.Context, ticker string) (*entity.Symbol, error) {
				return &entity.Symbol{Ticker: "GE", IsActive: false, EndDate: &end}, nil
			},
		}
		uc := newTestUsecase(repo)

		if err := uc.Deactivate(ctx, "GE", "delisted"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.UpdateCalls != 0 {
			t.Errorf("Update called %d times, expected 0", repo.UpdateCalls)
		}
	})

	t.Run("error: unknown ticker", func(t *testing.T) {
		repo := &mockSymbolRepository{}
		uc := newTestUsecase(repo)

		err := uc.Deactivate(ctx, "NOPE", "")
		if !errors.Is(err, ErrUnknownSymbol) {
			t.Fatalf("expected ErrUnknownSymbol, got %v", err)
		}
	})
}

func TestRegistryUsecase_Reactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("success: end date cleared and tracking restarts", func(t *testing.T) {
		end := fixedNow().AddDate(0, -6, 0)
		var updated *entity.Symbol
		repo := &mockSymbolRepository{
			FindByTickerFunc: func(ctx context.Context, ticker string) (*entity.Symbol, error) {
				return &entity.Symbol{Ticker: "GE", IsActive: false, EndDate: &end}, nil
			},
			UpdateFunc: func(ctx context.Context, s *entity.Symbol) error {
				updated = s
				return nil
			},
		}
		uc := newTestUsecase(repo)

		if err := uc.Reactivate(ctx, "GE"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated == nil {
			t.Fatal("Update was not called")
		}
		if !updated.IsActive {
			t.Error("symbol should be active again")
		}
		if updated.EndDate != nil {
			t.Error("end date should be cleared")
		}
		if !updated.StartDate.Equal(fixedNow()) {
			t.Errorf("start date should restart: got %v", updated.StartDate)
		}
	})

	t.Run("no-op: already active", func(t *testing.T) {
		repo := &mockSymbolRepository{
			FindByTickerFunc: func(ctx context.Context, ticker string) (*entity.Symbol, error) {
				return &entity.Symbol{Ticker: "AAPL", IsActive: true}, nil
			},
		}
		uc := newTestUsecase(repo)

		if err := uc.Reactivate(ctx, "AAPL"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if repo.UpdateCalls != 0 {
			t.Errorf("Update called %d times, expected 0", repo.UpdateCalls)
		}
	})

	t.Run("error: unknown ticker", func(t *testing.T) {
		repo := &mockSymbolRepository{}
		uc := newTestUsecase(repo)

		if err := uc.Reactivate(ctx, "NOPE"); !errors.Is(err, ErrUnknownSymbol) {
			t.Fatalf("expected ErrUnknownSymbol, got %v", err)
		}
	})
}

func TestRegistryUsecase_ActiveTickers(t *testing.T) {
	ctx := context.Background()

	repo := &mockSymbolRepository{
		ListActiveFunc: func(ctx context.Context) ([]entity.Symbol, error) {
			return []entity.Symbol{
				{Ticker: "AAPL"},
				{Ticker: "GOOG"},
				{Ticker: "MSFT"},
			}, nil
		},
	}
	uc := newTestUsecase(repo)

	tickers, err := uc.ActiveTickers(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"AAPL", "GOOG", "MSFT"}
	if len(tickers) != len(expected) {
		t.Fatalf("ticker count mismatch: got %d, want %d", len(tickers), len(expected))
	}
	for i, want := range expected {
		if tickers[i] != want {
			t.Errorf("tickers[%d] = %s, want %s", i, tickers[i], want)
		}
	}
}
