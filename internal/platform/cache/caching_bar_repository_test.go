package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"

	"stock_collector/internal/feature/marketdata/domain/entity"
	"stock_collector/internal/feature/marketdata/usecase"
)

// mockBarRepository はテスト用のBarRepositoryモック実装です。
type mockBarRepository struct {
	findFn        func(ctx context.Context, symbol string, outputsize int) ([]entity.Bar, error)
	upsertBatchFn func(ctx context.Context, bars []entity.Bar) (usecase.WriteResult, error)
	findCalls     int
}

func (m *mockBarRepository) Find(ctx context.Context, symbol string, outputsize int) ([]entity.Bar, error) {
	m.findCalls++
	if m.findFn != nil {
		return m.findFn(ctx, symbol, outputsize)
	}
	return nil, nil
}

func (m *mockBarRepository) UpsertBatch(ctx context.Context, bars []entity.Bar) (usecase.WriteResult, error) {
	if m.upsertBatchFn != nil {
		return m.upsertBatchFn(ctx, bars)
	}
	return usecase.WriteResult{}, nil
}

func sampleBars() []entity.Bar {
	return []entity.Bar{
		{
			Symbol:    "AAPL",
			Timestamp: time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC),
			Open:      185.0,
			High:      186.2,
			Low:       184.8,
			Close:     186.0,
			Volume:    1000000,
		},
	}
}

// TestNewCachingBarRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingBarRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{
			name:              "default values when zero/empty",
			ttl:               0,
			namespace:         "",
			expectedTTL:       5 * time.Minute,
			expectedNamespace: "bars",
		},
		{
			name:              "custom values preserved",
			ttl:               10 * time.Minute,
			namespace:         "custom",
			expectedTTL:       10 * time.Minute,
			expectedNamespace: "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingBarRepository(nil, tt.ttl, &mockBarRepository{}, tt.namespace)

			if repo.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, repo.ttl)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, repo.namespace)
			}
		})
	}
}

// TestCachingBarRepository_Find_NilRedis はRedisがnilの場合にキャッシュをバイパスして内部リポジトリを直接呼び出すことを検証します。
func TestCachingBarRepository_Find_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockBarRepository{
		findFn: func(ctx context.Context, symbol string, outputsize int) ([]entity.Bar, error) {
			return sampleBars(), nil
		},
	}

	repo := NewCachingBarRepository(nil, 5*time.Minute, inner, "bars")

	bars, err := repo.Find(context.Background(), "AAPL", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 {
		t.Errorf("expected 1 bar, got %d", len(bars))
	}
}

// TestCachingBarRepository_Find_CacheHit はキャッシュヒット時にRedisからデータを返し、内部リポジトリを呼ばないことを検証します。
func TestCachingBarRepository_Find_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cached := sampleBars()
	b, err := json.Marshal(cached)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	mock.ExpectGet("bars:AAPL:100").SetVal(string(b))

	inner := &mockBarRepository{
		findFn: func(ctx context.Context, symbol string, outputsize int) ([]entity.Bar, error) {
			return nil, errors.New("inner repository must not be called on cache hit")
		},
	}

	repo := NewCachingBarRepository(rdb, 5*time.Minute, inner, "bars")

	bars, err := repo.Find(context.Background(), "AAPL", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 || bars[0].Close != 186.0 {
		t.Errorf("unexpected bars from cache: %+v", bars)
	}
	if inner.findCalls != 0 {
		t.Errorf("expected 0 inner Find calls, got %d", inner.findCalls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet Redis expectations: %v", err)
	}
}

// TestCachingBarRepository_Find_CacheMiss はキャッシュミス時にDBから読み、結果をキャッシュに格納することを検証します。
func TestCachingBarRepository_Find_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	fresh := sampleBars()
	b, err := json.Marshal(fresh)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	mock.ExpectGet("bars:AAPL:100").RedisNil()
	mock.ExpectSet("bars:AAPL:100", b, 5*time.Minute).SetVal("OK")

	inner := &mockBarRepository{
		findFn: func(ctx context.Context, symbol string, outputsize int) ([]entity.Bar, error) {
			return fresh, nil
		},
	}

	repo := NewCachingBarRepository(rdb, 5*time.Minute, inner, "bars")

	bars, err := repo.Find(context.Background(), "AAPL", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 {
		t.Errorf("expected 1 bar, got %d", len(bars))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet Redis expectations: %v", err)
	}
}

// TestCachingBarRepository_UpsertBatch_InvalidatesCache は書き込み成功後に該当銘柄のキャッシュが削除されることを検証します。
func TestCachingBarRepository_UpsertBatch_Invalidates(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "bars:AAPL:*", 200).SetVal([]string{"bars:AAPL:100"}, 0)
	mock.ExpectDel("bars:AAPL:100").SetVal(1)

	inner := &mockBarRepository{
		upsertBatchFn: func(ctx context.Context, bars []entity.Bar) (usecase.WriteResult, error) {
			return usecase.WriteResult{Inserted: len(bars)}, nil
		},
	}

	repo := NewCachingBarRepository(rdb, 5*time.Minute, inner, "bars")

	res, err := repo.UpsertBatch(context.Background(), sampleBars())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Inserted != 1 {
		t.Errorf("expected 1 inserted, got %d", res.Inserted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet Redis expectations: %v", err)
	}
}

// TestCachingBarRepository_UpsertBatch_InnerError は書き込み失敗時にキャッシュを触らないことを検証します。
func TestCachingBarRepository_UpsertBatch_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	wantErr := errors.New("write failed")
	inner := &mockBarRepository{
		upsertBatchFn: func(ctx context.Context, bars []entity.Bar) (usecase.WriteResult, error) {
			return usecase.WriteResult{}, wantErr
		},
	}

	repo := NewCachingBarRepository(rdb, 5*time.Minute, inner, "bars")

	_, err := repo.UpsertBatch(context.Background(), sampleBars())
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected inner error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet Redis expectations: %v", err)
	}
}

func TestTimeUntilNextHour(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 2, 9, 45, 30, 0, time.UTC)
	got := TimeUntilNextHour(now)
	want := 14*time.Minute + 30*time.Second
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}
