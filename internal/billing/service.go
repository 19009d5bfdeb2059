// AngelaMos | 2026
// service.go

package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

const (
	component = "billing"

	DefaultHistoryLimit = 5
	MaxHistoryLimit     = 100
)

type Service struct {
	repo    Repository
	cache   *Cache
	timeout time.Duration
	now     func() time.Time
}

func NewService(repo Repository, cache *Cache, timeout time.Duration) *Service {
	return &Service{
		repo:    repo,
		cache:   cache,
		timeout: timeout,
		now:     time.Now,
	}
}

// GetCurrentBill reads through the cache. Cache failures are logged and
// the store answers instead.
func (s *Service) GetCurrentBill(
	ctx context.Context,
	consumerID int64,
) (_ *Bill, err error) {
	ctx, span := core.StartSpan(ctx, component, "GetCurrentBill",
		attribute.Int64("consumer.id", consumerID),
	)
	defer func() { core.EndSpan(span, err) }()

	if consumerID <= 0 {
		return nil, core.Invalid("get current bill", "consumerNo is required")
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	cached, found, err := s.cache.Get(ctx, consumerID)
	if err != nil {
		slog.WarnContext(ctx, "bill cache read failed",
			"consumer_id", consumerID,
			"error", err,
		)
	}
	if found {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	}

	version, versionErr := s.cache.Version(ctx, consumerID)
	if versionErr != nil {
		slog.WarnContext(ctx, "bill cache version read failed",
			"consumer_id", consumerID,
			"error", versionErr,
		)
	}

	bill, err := s.repo.GetCurrent(ctx, consumerID)
	if err != nil {
		return nil, core.Classify("get current bill", err)
	}

	if versionErr == nil {
		if _, err := s.cache.Set(ctx, bill, version); err != nil {
			slog.WarnContext(ctx, "bill cache write failed",
				"consumer_id", consumerID,
				"error", err,
			)
		}
	}

	return bill, nil
}

// GetReadingHistory returns at most limit bills, newest first. Limits
// below one fall back to the default.
func (s *Service) GetReadingHistory(
	ctx context.Context,
	consumerID int64,
	limit int,
) (_ []ReadingEntry, err error) {
	ctx, span := core.StartSpan(ctx, component, "GetReadingHistory",
		attribute.Int64("consumer.id", consumerID),
	)
	defer func() { core.EndSpan(span, err) }()

	if consumerID <= 0 {
		return nil, core.Invalid("reading history", "consumerNo is required")
	}

	limit = normalizeLimit(limit)
	span.SetAttributes(attribute.Int("history.limit", limit))

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	bills, err := s.repo.History(ctx, consumerID, limit)
	if err != nil {
		return nil, core.Classify("reading history", err)
	}
	if len(bills) == 0 {
		return nil, fmt.Errorf("reading history: %w", core.ErrNotFound)
	}

	today := dateOf(s.now())
	entries := make([]ReadingEntry, 0, len(bills))
	for _, b := range bills {
		entries = append(entries, ReadingEntry{
			Bill:          b,
			PaymentStatus: b.DueDateStatus(today),
		})
	}

	return entries, nil
}

// MarkBillPaid only touches a bill owned by consumerID. Zero affected
// rows is reported as not found.
func (s *Service) MarkBillPaid(
	ctx context.Context,
	billID int64,
	consumerID int64,
) (_ *Payment, err error) {
	ctx, span := core.StartSpan(ctx, component, "MarkBillPaid",
		attribute.Int64("bill.id", billID),
		attribute.Int64("consumer.id", consumerID),
	)
	defer func() { core.EndSpan(span, err) }()

	if billID <= 0 {
		return nil, core.Invalid("mark bill paid", "billId is required")
	}
	if consumerID <= 0 {
		return nil, core.Invalid("mark bill paid", "consumerNo is required")
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	paidOn := dateOf(s.now())
	affected, err := s.repo.MarkPaid(ctx, billID, consumerID, paidOn)
	if err != nil {
		return nil, core.Classify("mark bill paid", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("mark bill paid: %w", core.ErrNotFound)
	}

	s.invalidate(ctx, consumerID)

	return &Payment{
		BillID:     billID,
		ConsumerID: consumerID,
		PaidDate:   paidOn,
	}, nil
}

func (s *Service) IssueBill(ctx context.Context, nb NewBill) (_ *Bill, err error) {
	ctx, span := core.StartSpan(ctx, component, "IssueBill",
		attribute.Int64("connection.id", nb.ConnectionID),
		attribute.Int64("consumer.id", nb.ConsumerID),
	)
	defer func() { core.EndSpan(span, err) }()

	if err := validateNewBill(nb); err != nil {
		return nil, err
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	nb.IssuedDate = dateOf(s.now())
	nb.DueDate = dateOf(nb.DueDate)

	bill, err := s.repo.Issue(ctx, nb)
	if err != nil {
		return nil, core.Classify("issue bill", err)
	}

	s.invalidate(ctx, nb.ConsumerID)

	return bill, nil
}

func (s *Service) invalidate(ctx context.Context, consumerID int64) {
	if err := s.cache.Invalidate(ctx, consumerID); err != nil {
		slog.WarnContext(ctx, "bill cache invalidation failed",
			"consumer_id", consumerID,
			"error", err,
		)
	}
}

func validateNewBill(nb NewBill) error {
	const op = "issue bill"

	switch {
	case nb.ModeratorID <= 0:
		return core.Invalid(op, "moderatorId is required")
	case nb.ConnectionID <= 0:
		return core.Invalid(op, "connectionId is required")
	case nb.ConsumerID <= 0:
		return core.Invalid(op, "consumerId is required")
	case nb.Reading < 0:
		return core.Invalid(op, "reading must be non-negative")
	case nb.UnitsConsumed < 0:
		return core.Invalid(op, "unitsConsumed must be non-negative")
	case nb.Amount < 0:
		return core.Invalid(op, "amount must be non-negative")
	case nb.DueDate.IsZero():
		return core.Invalid(op, "dueDate is required")
	}
	return nil
}

func normalizeLimit(limit int) int {
	switch {
	case limit < 1:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
