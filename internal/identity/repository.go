// AngelaMos | 2026
// repository.go

package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

type Repository interface {
	FindPerson(ctx context.Context, id int64, mobile string) (*Person, error)
	FindConsumerByPerson(ctx context.Context, personID int64) (*Consumer, error)
	FindInspector(ctx context.Context, id int64, mobile string) (*Inspector, error)
	FindConsumerRecord(
		ctx context.Context,
		consumerID int64,
		mobile string,
	) (*ConsumerRecord, error)
	DeletePerson(ctx context.Context, id int64) ([]int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) FindPerson(
	ctx context.Context,
	id int64,
	mobile string,
) (*Person, error) {
	query := `
		SELECT id, name, mobile, COALESCE(address, '') AS address
		FROM person
		WHERE id = $1 AND mobile = $2`

	var p Person
	err := r.db.GetContext(ctx, &p, query, id, mobile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find person: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find person: %w", err)
	}

	return &p, nil
}

func (r *repository) FindConsumerByPerson(
	ctx context.Context,
	personID int64,
) (*Consumer, error) {
	query := `
		SELECT consumerid, id, "meterNumber"
		FROM consumer
		WHERE id = $1
		ORDER BY consumerid
		LIMIT 1`

	var c Consumer
	err := r.db.GetContext(ctx, &c, query, personID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find consumer: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find consumer: %w", err)
	}

	return &c, nil
}

func (r *repository) FindInspector(
	ctx context.Context,
	id int64,
	mobile string,
) (*Inspector, error) {
	query := `
		SELECT p.id, p.name, p.mobile, COALESCE(p.address, '') AS address,
		       m.moderatorid
		FROM person p
		JOIN moderator m ON m.id = p.id
		WHERE p.id = $1 AND p.mobile = $2
		ORDER BY m.moderatorid
		LIMIT 1`

	var i Inspector
	err := r.db.GetContext(ctx, &i, query, id, mobile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find inspector: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find inspector: %w", err)
	}

	return &i, nil
}

func (r *repository) FindConsumerRecord(
	ctx context.Context,
	consumerID int64,
	mobile string,
) (*ConsumerRecord, error) {
	query := `
		SELECT c.consumerid, c."meterNumber",
		       p.id, p.name, p.mobile, COALESCE(p.address, '') AS address
		FROM consumer c
		JOIN person p ON p.id = c.id
		WHERE c.consumerid = $1 AND p.mobile = $2`

	var rec ConsumerRecord
	err := r.db.GetContext(ctx, &rec, query, consumerID, mobile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find consumer record: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find consumer record: %w", err)
	}

	return &rec, nil
}

// DeletePerson removes the person; consumer and moderator rows go with
// it through ON DELETE CASCADE. It returns the consumer ids that were
// removed so their cached bills can be dropped.
func (r *repository) DeletePerson(ctx context.Context, id int64) ([]int64, error) {
	var consumerIDs []int64

	err := core.RunInTx(ctx, r.db, func(tx core.DBTX) error {
		lookup := `SELECT consumerid FROM consumer WHERE id = $1 ORDER BY consumerid`
		if err := tx.SelectContext(ctx, &consumerIDs, lookup, id); err != nil {
			return fmt.Errorf("delete person: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM person WHERE id = $1`, id)
		if err != nil {
			if core.IsForeignKeyError(err) {
				return fmt.Errorf("delete person: %w", core.ErrConflict)
			}
			return fmt.Errorf("delete person: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete person: %w", err)
		}

		if rows == 0 {
			return fmt.Errorf("delete person: %w", core.ErrNotFound)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return consumerIDs, nil
}
