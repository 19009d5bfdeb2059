// AngelaMos | 2026
// service.go

package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

const component = "identity"

// BillCache drops cached bills of consumers whose rows were removed.
type BillCache interface {
	Invalidate(ctx context.Context, consumerIDs ...int64) error
}

type Service struct {
	repo    Repository
	bills   BillCache
	timeout time.Duration
}

// NewService accepts a nil bills cache.
func NewService(repo Repository, bills BillCache, timeout time.Duration) *Service {
	return &Service{repo: repo, bills: bills, timeout: timeout}
}

// AuthenticateUser matches (identityNumber, mobile) exactly. A Person
// without a consumer row still authenticates with IsConsumer false.
func (s *Service) AuthenticateUser(
	ctx context.Context,
	identityNumber int64,
	mobile string,
) (_ *UserIdentity, err error) {
	ctx, span := core.StartSpan(ctx, component, "AuthenticateUser")
	defer func() { core.EndSpan(span, err) }()

	if err := checkCredentials("authenticate user", identityNumber, mobile); err != nil {
		return nil, err
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	person, err := s.repo.FindPerson(ctx, identityNumber, strings.TrimSpace(mobile))
	if err != nil {
		return nil, unauthorizedIfMissing("authenticate user", err)
	}

	consumer, err := s.repo.FindConsumerByPerson(ctx, person.ID)
	if err != nil && !errors.Is(err, core.ErrNotFound) {
		return nil, core.Classify("authenticate user", err)
	}

	return toUserIdentity(person, consumer), nil
}

func (s *Service) AuthenticateInspector(
	ctx context.Context,
	identityNumber int64,
	mobile string,
) (_ *InspectorIdentity, err error) {
	ctx, span := core.StartSpan(ctx, component, "AuthenticateInspector")
	defer func() { core.EndSpan(span, err) }()

	if err := checkCredentials("authenticate inspector", identityNumber, mobile); err != nil {
		return nil, err
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	inspector, err := s.repo.FindInspector(ctx, identityNumber, strings.TrimSpace(mobile))
	if err != nil {
		return nil, unauthorizedIfMissing("authenticate inspector", err)
	}

	return toInspectorIdentity(inspector), nil
}

// VerifyConsumer fails the same way for an unknown consumer and for a
// mobile mismatch.
func (s *Service) VerifyConsumer(
	ctx context.Context,
	consumerID int64,
	mobile string,
) (_ *ConsumerProfile, err error) {
	ctx, span := core.StartSpan(ctx, component, "VerifyConsumer",
		attribute.Int64("consumer.id", consumerID),
	)
	defer func() { core.EndSpan(span, err) }()

	if consumerID <= 0 {
		return nil, core.Invalid("verify consumer", "consumerNo is required")
	}
	if strings.TrimSpace(mobile) == "" {
		return nil, core.Invalid("verify consumer", "mobile is required")
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	record, err := s.repo.FindConsumerRecord(ctx, consumerID, strings.TrimSpace(mobile))
	if err != nil {
		return nil, unauthorizedIfMissing("verify consumer", err)
	}

	return toConsumerProfile(record), nil
}

func (s *Service) DeletePerson(ctx context.Context, id int64) (err error) {
	ctx, span := core.StartSpan(ctx, component, "DeletePerson",
		attribute.Int64("person.id", id),
	)
	defer func() { core.EndSpan(span, err) }()

	if id <= 0 {
		return core.Invalid("delete person", "identity number is required")
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	consumerIDs, err := s.repo.DeletePerson(ctx, id)
	if err != nil {
		return core.Classify("delete person", err)
	}

	if s.bills != nil {
		if err := s.bills.Invalidate(ctx, consumerIDs...); err != nil {
			slog.WarnContext(ctx, "bill cache invalidation failed",
				"person_id", id,
				"consumer_ids", consumerIDs,
				"error", err,
			)
		}
	}

	return nil
}

func checkCredentials(op string, identityNumber int64, mobile string) error {
	if identityNumber <= 0 {
		return core.Invalid(op, "identityNumber is required")
	}
	if strings.TrimSpace(mobile) == "" {
		return core.Invalid(op, "mobile is required")
	}
	return nil
}

func unauthorizedIfMissing(op string, err error) error {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, core.ErrUnauthorized)
	}
	return core.Classify(op, err)
}
