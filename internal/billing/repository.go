// AngelaMos | 2026
// repository.go

package billing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

type Repository interface {
	GetCurrent(ctx context.Context, consumerID int64) (*Bill, error)
	History(ctx context.Context, consumerID int64, limit int) ([]Bill, error)
	MarkPaid(ctx context.Context, billID, consumerID int64, on time.Time) (int64, error)
	Issue(ctx context.Context, nb NewBill) (*Bill, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const billColumns = `billid, reading, "unitsConsumed", amount, "dueDate", moderatorid,
	"issuedDate", connectionid, consumerid, "isPaid", "paidDate"`

// GetCurrent returns the bill with the latest issuedDate. Ties go to the
// highest billid.
func (r *repository) GetCurrent(ctx context.Context, consumerID int64) (*Bill, error) {
	query := `SELECT ` + billColumns + `
		FROM bill
		WHERE consumerid = $1
		ORDER BY "issuedDate" DESC, billid DESC
		LIMIT 1`

	var b Bill
	err := r.db.GetContext(ctx, &b, query, consumerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get current bill: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get current bill: %w", err)
	}

	return &b, nil
}

func (r *repository) History(
	ctx context.Context,
	consumerID int64,
	limit int,
) ([]Bill, error) {
	query := `SELECT ` + billColumns + `
		FROM bill
		WHERE consumerid = $1
		ORDER BY "issuedDate" DESC, billid DESC
		LIMIT $2`

	var bills []Bill
	if err := r.db.SelectContext(ctx, &bills, query, consumerID, limit); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	return bills, nil
}

// MarkPaid does not filter on the prior payment state, so paying twice
// succeeds and moves paidDate.
func (r *repository) MarkPaid(
	ctx context.Context,
	billID int64,
	consumerID int64,
	on time.Time,
) (int64, error) {
	var affected int64

	err := core.RunInTx(ctx, r.db, func(tx core.DBTX) error {
		query := `
			UPDATE bill
			SET "isPaid" = true, "paidDate" = $3
			WHERE billid = $1 AND consumerid = $2`

		result, err := tx.ExecContext(ctx, query, billID, consumerID, on)
		if err != nil {
			return fmt.Errorf("mark bill paid: %w", err)
		}

		affected, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("mark bill paid: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}

type connectionOwner struct {
	ConsumerID int64 `db:"consumerid"`
	Terminated bool  `db:"terminated"`
}

// Issue locks the connection row so the ownership check and the insert
// see the same connection state.
func (r *repository) Issue(ctx context.Context, nb NewBill) (*Bill, error) {
	var bill Bill

	err := core.RunInTx(ctx, r.db, func(tx core.DBTX) error {
		var owner connectionOwner
		err := tx.GetContext(ctx, &owner, `
			SELECT consumerid, terminated
			FROM connection
			WHERE connid = $1
			FOR UPDATE`, nb.ConnectionID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("issue bill: connection: %w", core.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("issue bill: %w", err)
		}

		if owner.ConsumerID != nb.ConsumerID {
			return core.Invalid("issue bill", "connection belongs to another consumer")
		}
		if owner.Terminated {
			return core.Invalid("issue bill", "connection is terminated")
		}

		query := `
			INSERT INTO bill (reading, "unitsConsumed", amount, "dueDate",
			                  moderatorid, "issuedDate", connectionid, consumerid)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING ` + billColumns

		err = tx.GetContext(ctx, &bill, query,
			nb.Reading, nb.UnitsConsumed, nb.Amount, nb.DueDate,
			nb.ModeratorID, nb.IssuedDate, nb.ConnectionID, nb.ConsumerID,
		)
		switch {
		case err == nil:
			return nil
		case core.IsForeignKeyError(err):
			return fmt.Errorf("issue bill: moderator: %w", core.ErrNotFound)
		case core.IsCheckViolation(err):
			return core.Invalid("issue bill", "units and amount must be non-negative")
		default:
			return fmt.Errorf("issue bill: %w", err)
		}
	})
	if err != nil {
		return nil, err
	}

	return &bill, nil
}
