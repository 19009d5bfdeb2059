// AngelaMos | 2026
// service_test.go

package billing

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type memoryConnection struct {
	consumerID int64
	terminated bool
}

// memoryRepository holds the seeded bills and applies the same ordering
// and ownership rules as the SQL repository.
type memoryRepository struct {
	bills       []Bill
	connections map[int64]memoryConnection
	moderators  map[int64]bool
	nextID      int64
	failWith    error
	currentHits int

	afterCurrent func()
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		bills: []Bill{
			{BillID: 1, Reading: 100.5, UnitsConsumed: 75, Amount: 1500, DueDate: day(2024, 4, 15),
				ModeratorID: 1, IssuedDate: day(2024, 3, 15), ConnectionID: 1, ConsumerID: 1},
			{BillID: 2, Reading: 200.3, UnitsConsumed: 95, Amount: 1900, DueDate: day(2024, 4, 15),
				ModeratorID: 1, IssuedDate: day(2024, 3, 15), ConnectionID: 2, ConsumerID: 2},
			{BillID: 3, Reading: 150.8, UnitsConsumed: 85, Amount: 1700, DueDate: day(2024, 3, 15),
				ModeratorID: 2, IssuedDate: day(2024, 2, 15), ConnectionID: 1, ConsumerID: 1},
			{BillID: 4, Reading: 250.1, UnitsConsumed: 105, Amount: 2100, DueDate: day(2024, 3, 15),
				ModeratorID: 2, IssuedDate: day(2024, 2, 15), ConnectionID: 2, ConsumerID: 2},
		},
		connections: map[int64]memoryConnection{
			1: {consumerID: 1},
			2: {consumerID: 2},
			3: {consumerID: 2, terminated: true},
		},
		moderators: map[int64]bool{1: true, 2: true},
		nextID:     5,
	}
}

func (m *memoryRepository) ordered(consumerID int64) []Bill {
	var out []Bill
	for _, b := range m.bills {
		if b.ConsumerID == consumerID {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].IssuedDate.Equal(out[j].IssuedDate) {
			return out[i].IssuedDate.After(out[j].IssuedDate)
		}
		return out[i].BillID > out[j].BillID
	})
	return out
}

func (m *memoryRepository) GetCurrent(_ context.Context, consumerID int64) (*Bill, error) {
	m.currentHits++
	if m.failWith != nil {
		return nil, m.failWith
	}
	bills := m.ordered(consumerID)
	if len(bills) == 0 {
		return nil, fmt.Errorf("get current bill: %w", core.ErrNotFound)
	}
	if m.afterCurrent != nil {
		m.afterCurrent()
	}
	return &bills[0], nil
}

func (m *memoryRepository) dropConsumer(consumerID int64) {
	kept := m.bills[:0]
	for _, b := range m.bills {
		if b.ConsumerID != consumerID {
			kept = append(kept, b)
		}
	}
	m.bills = kept
}

func (m *memoryRepository) History(_ context.Context, consumerID int64, limit int) ([]Bill, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	bills := m.ordered(consumerID)
	if len(bills) > limit {
		bills = bills[:limit]
	}
	return bills, nil
}

func (m *memoryRepository) MarkPaid(_ context.Context, billID, consumerID int64, on time.Time) (int64, error) {
	for i := range m.bills {
		if m.bills[i].BillID == billID && m.bills[i].ConsumerID == consumerID {
			m.bills[i].IsPaid = true
			m.bills[i].PaidDate = &on
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memoryRepository) Issue(_ context.Context, nb NewBill) (*Bill, error) {
	conn, ok := m.connections[nb.ConnectionID]
	if !ok {
		return nil, fmt.Errorf("issue bill: connection: %w", core.ErrNotFound)
	}
	if conn.consumerID != nb.ConsumerID {
		return nil, core.Invalid("issue bill", "connection belongs to another consumer")
	}
	if conn.terminated {
		return nil, core.Invalid("issue bill", "connection is terminated")
	}
	if !m.moderators[nb.ModeratorID] {
		return nil, fmt.Errorf("issue bill: moderator: %w", core.ErrNotFound)
	}

	b := Bill{
		BillID:        m.nextID,
		Reading:       nb.Reading,
		UnitsConsumed: nb.UnitsConsumed,
		Amount:        nb.Amount,
		DueDate:       nb.DueDate,
		ModeratorID:   nb.ModeratorID,
		IssuedDate:    nb.IssuedDate,
		ConnectionID:  nb.ConnectionID,
		ConsumerID:    nb.ConsumerID,
	}
	m.nextID++
	m.bills = append(m.bills, b)
	return &b, nil
}

func newTestService(repo Repository, cache *Cache, now time.Time) *Service {
	svc := NewService(repo, cache, time.Second)
	svc.now = func() time.Time { return now }
	return svc
}

func TestGetCurrentBillDerivesPreviousReading(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil, day(2024, 4, 1))

	bill, err := svc.GetCurrentBill(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), bill.BillID)
	assert.InDelta(t, 25.5, bill.PreviousReading(), 1e-9)
}

func TestGetCurrentBillHasMaximumIssuedDate(t *testing.T) {
	repo := newMemoryRepository()
	repo.bills = append(repo.bills,
		Bill{BillID: 9, ConsumerID: 1, IssuedDate: day(2023, 12, 1)},
		Bill{BillID: 10, ConsumerID: 1, IssuedDate: day(2024, 3, 15)},
		Bill{BillID: 11, ConsumerID: 1, IssuedDate: day(2024, 1, 20)},
	)
	svc := newTestService(repo, nil, day(2024, 4, 1))

	bill, err := svc.GetCurrentBill(context.Background(), 1)
	require.NoError(t, err)

	for _, b := range repo.bills {
		if b.ConsumerID == 1 {
			assert.False(t, b.IssuedDate.After(bill.IssuedDate),
				"bill %d is newer than the current bill", b.BillID)
		}
	}
	assert.Equal(t, int64(10), bill.BillID, "ties go to the highest billId")
}

func TestGetCurrentBillErrors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemoryRepository(), nil, day(2024, 4, 1))

	_, err := svc.GetCurrentBill(ctx, 42)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.GetCurrentBill(ctx, 0)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	repo := newMemoryRepository()
	repo.failWith = errors.New("connection reset by peer")
	_, err = newTestService(repo, nil, day(2024, 4, 1)).GetCurrentBill(ctx, 1)
	assert.ErrorIs(t, err, core.ErrInternal)
}

func TestGetReadingHistoryRespectsLimitAndOrder(t *testing.T) {
	repo := newMemoryRepository()
	for i := 0; i < 8; i++ {
		repo.bills = append(repo.bills, Bill{
			BillID:     int64(20 + i),
			ConsumerID: 1,
			IssuedDate: day(2023, time.Month(1+i), 1),
			DueDate:    day(2023, time.Month(2+i), 1),
		})
	}
	svc := newTestService(repo, nil, day(2024, 4, 1))

	for _, limit := range []int{1, 3, 5, 10, 50} {
		entries, err := svc.GetReadingHistory(context.Background(), 1, limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(entries), limit)

		for i := 1; i < len(entries); i++ {
			assert.False(t, entries[i].IssuedDate.After(entries[i-1].IssuedDate),
				"limit %d: entry %d is newer than entry %d", limit, i, i-1)
		}
	}
}

func TestGetReadingHistoryDefaultsLimit(t *testing.T) {
	repo := newMemoryRepository()
	for i := 0; i < 8; i++ {
		repo.bills = append(repo.bills, Bill{
			BillID:     int64(20 + i),
			ConsumerID: 1,
			IssuedDate: day(2023, time.Month(1+i), 1),
		})
	}
	svc := newTestService(repo, nil, day(2024, 4, 1))

	entries, err := svc.GetReadingHistory(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Len(t, entries, DefaultHistoryLimit)

	assert.Equal(t, DefaultHistoryLimit, normalizeLimit(-3))
	assert.Equal(t, MaxHistoryLimit, normalizeLimit(MaxHistoryLimit+1))
	assert.Equal(t, 7, normalizeLimit(7))
}

func TestGetReadingHistoryWithoutBillsIsNotFound(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil, day(2024, 4, 1))

	_, err := svc.GetReadingHistory(context.Background(), 42, 5)

	assert.ErrorIs(t, err, core.ErrNotFound)
}

// The history status follows the due date, so a bill that was paid after
// its due date still reads as unpaid, and an unpaid bill that is not yet
// due reads as paid.
func TestReadingHistoryStatusIgnoresIsPaid(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, nil, day(2024, 4, 1))
	ctx := context.Background()

	_, err := svc.MarkBillPaid(ctx, 3, 1)
	require.NoError(t, err)

	entries, err := svc.GetReadingHistory(ctx, 1, 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(1), entries[0].BillID)
	assert.False(t, entries[0].IsPaid)
	assert.Equal(t, StatusPaid, entries[0].PaymentStatus)

	assert.Equal(t, int64(3), entries[1].BillID)
	assert.True(t, entries[1].IsPaid)
	assert.Equal(t, StatusUnpaid, entries[1].PaymentStatus)
}

func TestDueDateStatusBoundary(t *testing.T) {
	b := Bill{DueDate: day(2024, 4, 15)}

	assert.Equal(t, StatusPaid, b.DueDateStatus(day(2024, 4, 14)))
	assert.Equal(t, StatusPaid, b.DueDateStatus(day(2024, 4, 15)))
	assert.Equal(t, StatusUnpaid, b.DueDateStatus(day(2024, 4, 16)))
}

func TestMarkBillPaidIsIdempotentButMovesPaidDate(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, nil, time.Date(2024, 4, 1, 15, 30, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := svc.MarkBillPaid(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 4, 1), first.PaidDate)

	svc.now = func() time.Time { return day(2024, 4, 9) }
	second, err := svc.MarkBillPaid(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 4, 9), second.PaidDate)

	assert.True(t, repo.bills[0].IsPaid)
	assert.Equal(t, day(2024, 4, 9), *repo.bills[0].PaidDate)
}

func TestMarkBillPaidScopedToConsumer(t *testing.T) {
	repo := newMemoryRepository()
	svc := newTestService(repo, nil, day(2024, 4, 1))
	ctx := context.Background()

	_, err := svc.MarkBillPaid(ctx, 2, 1)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.False(t, repo.bills[1].IsPaid)

	_, err = svc.MarkBillPaid(ctx, 999, 1)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.MarkBillPaid(ctx, 0, 1)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestIssueBill(t *testing.T) {
	nb := NewBill{
		ModeratorID:   1,
		ConnectionID:  1,
		ConsumerID:    1,
		Reading:       180.5,
		UnitsConsumed: 80,
		Amount:        1600,
		DueDate:       day(2024, 5, 15),
	}

	tests := []struct {
		name    string
		mutate  func(nb *NewBill)
		wantErr error
	}{
		{name: "issued", mutate: func(*NewBill) {}},
		{name: "foreign connection", mutate: func(nb *NewBill) { nb.ConnectionID = 2 }, wantErr: core.ErrInvalidInput},
		{name: "terminated connection", mutate: func(nb *NewBill) { nb.ConnectionID = 3; nb.ConsumerID = 2 }, wantErr: core.ErrInvalidInput},
		{name: "unknown connection", mutate: func(nb *NewBill) { nb.ConnectionID = 77 }, wantErr: core.ErrNotFound},
		{name: "unknown moderator", mutate: func(nb *NewBill) { nb.ModeratorID = 9 }, wantErr: core.ErrNotFound},
		{name: "negative units", mutate: func(nb *NewBill) { nb.UnitsConsumed = -1 }, wantErr: core.ErrInvalidInput},
		{name: "negative amount", mutate: func(nb *NewBill) { nb.Amount = -0.01 }, wantErr: core.ErrInvalidInput},
		{name: "missing due date", mutate: func(nb *NewBill) { nb.DueDate = time.Time{} }, wantErr: core.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMemoryRepository(), nil, day(2024, 4, 20))
			input := nb
			tt.mutate(&input)

			bill, err := svc.IssueBill(context.Background(), input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, day(2024, 4, 20), bill.IssuedDate)
			assert.False(t, bill.IsPaid)
			assert.Nil(t, bill.PaidDate)
		})
	}
}

func TestIssuedBillBecomesCurrent(t *testing.T) {
	svc := newTestService(newMemoryRepository(), nil, day(2024, 4, 20))
	ctx := context.Background()

	issued, err := svc.IssueBill(ctx, NewBill{
		ModeratorID: 2, ConnectionID: 1, ConsumerID: 1,
		Reading: 180.5, UnitsConsumed: 80, Amount: 1600, DueDate: day(2024, 5, 15),
	})
	require.NoError(t, err)

	current, err := svc.GetCurrentBill(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, issued.BillID, current.BillID)
	assert.InDelta(t, 100.5, current.PreviousReading(), 1e-9)
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCache(client, time.Minute), mr
}

func TestGetCurrentBillReadsThroughCache(t *testing.T) {
	cache, mr := newTestCache(t)
	repo := newMemoryRepository()
	svc := newTestService(repo, cache, day(2024, 4, 1))
	ctx := context.Background()

	first, err := svc.GetCurrentBill(ctx, 1)
	require.NoError(t, err)
	assert.True(t, mr.Exists(currentBillKey(1)))

	second, err := svc.GetCurrentBill(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.currentHits)
	assert.Equal(t, first.BillID, second.BillID)
	assert.InDelta(t, 25.5, second.PreviousReading(), 1e-9)
}

func TestPaymentInvalidatesCachedBill(t *testing.T) {
	cache, mr := newTestCache(t)
	repo := newMemoryRepository()
	svc := newTestService(repo, cache, day(2024, 4, 1))
	ctx := context.Background()

	_, err := svc.GetCurrentBill(ctx, 1)
	require.NoError(t, err)

	_, err = svc.MarkBillPaid(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, mr.Exists(currentBillKey(1)))

	bill, err := svc.GetCurrentBill(ctx, 1)
	require.NoError(t, err)
	assert.True(t, bill.IsPaid)
	assert.Equal(t, 2, repo.currentHits)
}

func TestCacheOutageFallsBackToStore(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()
	svc := newTestService(newMemoryRepository(), cache, day(2024, 4, 1))

	bill, err := svc.GetCurrentBill(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), bill.BillID)
}

func TestRemovedConsumerIsNotServedFromCache(t *testing.T) {
	cache, mr := newTestCache(t)
	repo := newMemoryRepository()
	svc := newTestService(repo, cache, day(2024, 4, 1))
	ctx := context.Background()

	_, err := svc.GetCurrentBill(ctx, 1)
	require.NoError(t, err)
	require.True(t, mr.Exists(currentBillKey(1)))

	repo.dropConsumer(1)
	require.NoError(t, cache.Invalidate(ctx, 1))

	_, err = svc.GetCurrentBill(ctx, 1)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.False(t, mr.Exists(currentBillKey(1)))
}

func TestPaymentDuringReadIsNotOverwritten(t *testing.T) {
	cache, mr := newTestCache(t)
	repo := newMemoryRepository()
	svc := newTestService(repo, cache, day(2024, 4, 1))
	ctx := context.Background()

	repo.afterCurrent = func() {
		repo.afterCurrent = nil
		_, err := svc.MarkBillPaid(ctx, 1, 1)
		require.NoError(t, err)
	}

	stale, err := svc.GetCurrentBill(ctx, 1)
	require.NoError(t, err)
	assert.False(t, stale.IsPaid)
	assert.False(t, mr.Exists(currentBillKey(1)))

	fresh, err := svc.GetCurrentBill(ctx, 1)
	require.NoError(t, err)
	assert.True(t, fresh.IsPaid)
	assert.True(t, mr.Exists(currentBillKey(1)))
}

func TestCacheSetHonorsVersion(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	bill := &Bill{BillID: 1, ConsumerID: 1, Reading: 100.5, UnitsConsumed: 75}

	version, err := cache.Version(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, version)

	require.NoError(t, cache.Invalidate(ctx, 1, 2))

	written, err := cache.Set(ctx, bill, version)
	require.NoError(t, err)
	assert.False(t, written)
	assert.False(t, mr.Exists(currentBillKey(1)))

	version, err = cache.Version(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	written, err = cache.Set(ctx, bill, version)
	require.NoError(t, err)
	assert.True(t, written)

	got, found, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(1), got.BillID)

	mr.FastForward(2 * time.Minute)
	_, found, err = cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCacheFlushRemovesBillKeys(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	for id := int64(1); id <= 3; id++ {
		_, err := cache.Set(ctx, &Bill{BillID: id, ConsumerID: id}, 0)
		require.NoError(t, err)
	}
	require.NoError(t, cache.Invalidate(ctx, 3))
	require.NoError(t, mr.Set("session:other", "kept"))

	deleted, err := cache.Flush(ctx)

	require.NoError(t, err)
	assert.Equal(t, 3, deleted)
	assert.Equal(t, []string{"session:other"}, mr.Keys())
}

func TestDisabledCacheIsNoop(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	_, found, err := cache.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	written, err := cache.Set(ctx, &Bill{ConsumerID: 1}, 0)
	require.NoError(t, err)
	assert.False(t, written)

	assert.NoError(t, cache.Invalidate(ctx, 1))
	deleted, err := cache.Flush(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Nil(t, NewCache(nil, time.Minute))
}
