// AngelaMos | 2026
// service.go

package connection

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

const component = "connection"

// BillCache drops cached bills of consumers whose rows were removed.
type BillCache interface {
	Invalidate(ctx context.Context, consumerIDs ...int64) error
}

type Service struct {
	repo    Repository
	bills   BillCache
	timeout time.Duration
	now     func() time.Time
}

// NewService accepts a nil bills cache.
func NewService(repo Repository, bills BillCache, timeout time.Duration) *Service {
	return &Service{repo: repo, bills: bills, timeout: timeout, now: time.Now}
}

func (s *Service) ListConnections(
	ctx context.Context,
	consumerID int64,
) (_ []Connection, err error) {
	ctx, span := core.StartSpan(ctx, component, "ListConnections",
		attribute.Int64("consumer.id", consumerID),
	)
	defer func() { core.EndSpan(span, err) }()

	if consumerID <= 0 {
		return nil, core.Invalid("list connections", "consumerNo is required")
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	conns, err := s.repo.ListByConsumer(ctx, consumerID)
	if err != nil {
		return nil, core.Classify("list connections", err)
	}

	return conns, nil
}

func (s *Service) TerminateConnection(
	ctx context.Context,
	connID int64,
) (_ *Connection, err error) {
	ctx, span := core.StartSpan(ctx, component, "TerminateConnection",
		attribute.Int64("connection.id", connID),
	)
	defer func() { core.EndSpan(span, err) }()

	if connID <= 0 {
		return nil, core.Invalid("terminate connection", "connId is required")
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	conn, err := s.repo.Terminate(ctx, connID, today(s.now()))
	if err != nil {
		return nil, core.Classify("terminate connection", err)
	}

	return conn, nil
}

// DeleteConnection hard-deletes the connection and its bills, active or
// not.
func (s *Service) DeleteConnection(ctx context.Context, connID int64) (err error) {
	ctx, span := core.StartSpan(ctx, component, "DeleteConnection",
		attribute.Int64("connection.id", connID),
	)
	defer func() { core.EndSpan(span, err) }()

	if connID <= 0 {
		return core.Invalid("delete connection", "connId is required")
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	consumerID, err := s.repo.Delete(ctx, connID)
	if err != nil {
		return core.Classify("delete connection", err)
	}

	if s.bills != nil {
		if err := s.bills.Invalidate(ctx, consumerID); err != nil {
			slog.WarnContext(ctx, "bill cache invalidation failed",
				"connection_id", connID,
				"consumer_id", consumerID,
				"error", err,
			)
		}
	}

	return nil
}

func today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
