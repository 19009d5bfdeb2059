// AngelaMos | 2026
// service.go

package complaint

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

const component = "complaint"

type Service struct {
	repo    Repository
	timeout time.Duration
	now     func() time.Time
}

func NewService(repo Repository, timeout time.Duration) *Service {
	return &Service{repo: repo, timeout: timeout, now: time.Now}
}

// AddComplaint stamps dateIssued with the current date.
func (s *Service) AddComplaint(
	ctx context.Context,
	consumerNo int64,
	title string,
	description string,
) (_ *Complaint, err error) {
	ctx, span := core.StartSpan(ctx, component, "AddComplaint",
		attribute.Int64("consumer.id", consumerNo),
	)
	defer func() { core.EndSpan(span, err) }()

	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	switch {
	case consumerNo <= 0:
		return nil, core.Invalid("add complaint", "consumerNo is required")
	case title == "":
		return nil, core.Invalid("add complaint", "title is required")
	case description == "":
		return nil, core.Invalid("add complaint", "description is required")
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	y, m, d := s.now().Date()
	c := &Complaint{
		ConsumerNo:  consumerNo,
		Title:       title,
		Description: description,
		DateIssued:  time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, core.Classify("add complaint", err)
	}

	return c, nil
}

func (s *Service) ListComplaints(
	ctx context.Context,
	consumerNo int64,
) (_ []Complaint, err error) {
	ctx, span := core.StartSpan(ctx, component, "ListComplaints",
		attribute.Int64("consumer.id", consumerNo),
	)
	defer func() { core.EndSpan(span, err) }()

	if consumerNo <= 0 {
		return nil, core.Invalid("list complaints", "consumerNo is required")
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	complaints, err := s.repo.ListByConsumer(ctx, consumerNo)
	if err != nil {
		return nil, core.Classify("list complaints", err)
	}

	return complaints, nil
}

func (s *Service) DeleteComplaint(ctx context.Context, complaintID int64) (err error) {
	ctx, span := core.StartSpan(ctx, component, "DeleteComplaint",
		attribute.Int64("complaint.id", complaintID),
	)
	defer func() { core.EndSpan(span, err) }()

	if complaintID <= 0 {
		return core.Invalid("delete complaint", "complaintId is required")
	}

	ctx, cancel := core.OperationContext(ctx, s.timeout)
	defer cancel()

	return core.Classify("delete complaint", s.repo.Delete(ctx, complaintID))
}
