// AngelaMos | 2026
// repository.go

package complaint

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

type Repository interface {
	Create(ctx context.Context, c *Complaint) error
	ListByConsumer(ctx context.Context, consumerNo int64) ([]Complaint, error)
	Delete(ctx context.Context, complaintID int64) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

// Create fills in ComplaintID. An unknown consumer surfaces as
// ErrNotFound through the foreign key.
func (r *repository) Create(ctx context.Context, c *Complaint) error {
	query := `
		INSERT INTO complaint ("consumerNo", title, description, "dateIssued")
		VALUES ($1, $2, $3, $4)
		RETURNING complaintid`

	err := r.db.QueryRowxContext(ctx, query,
		c.ConsumerNo,
		c.Title,
		c.Description,
		c.DateIssued,
	).Scan(&c.ComplaintID)
	if err != nil {
		if core.IsForeignKeyError(err) {
			return fmt.Errorf("create complaint: consumer: %w", core.ErrNotFound)
		}
		return fmt.Errorf("create complaint: %w", err)
	}

	return nil
}

func (r *repository) ListByConsumer(
	ctx context.Context,
	consumerNo int64,
) ([]Complaint, error) {
	query := `
		SELECT complaintid, "consumerNo", title, description, "dateIssued"
		FROM complaint
		WHERE "consumerNo" = $1
		ORDER BY "dateIssued" DESC, complaintid DESC`

	var complaints []Complaint
	if err := r.db.SelectContext(ctx, &complaints, query, consumerNo); err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}

	return complaints, nil
}

func (r *repository) Delete(ctx context.Context, complaintID int64) error {
	query := `DELETE FROM complaint WHERE complaintid = $1`

	result, err := r.db.ExecContext(ctx, query, complaintID)
	if err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete complaint: %w", core.ErrNotFound)
	}

	return nil
}
