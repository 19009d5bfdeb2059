// AngelaMos | 2026
// repository.go

package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

type Repository interface {
	ListByConsumer(ctx context.Context, consumerID int64) ([]Connection, error)
	GetByID(ctx context.Context, connID int64) (*Connection, error)
	Terminate(ctx context.Context, connID int64, on time.Time) (*Connection, error)
	Delete(ctx context.Context, connID int64) (int64, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const connectionColumns = `connid, consumerid, terminated, "terminatedDate", "issuedDate"`

// ListByConsumer returns rows in storage order.
func (r *repository) ListByConsumer(
	ctx context.Context,
	consumerID int64,
) ([]Connection, error) {
	query := `SELECT ` + connectionColumns + `
		FROM connection
		WHERE consumerid = $1`

	var conns []Connection
	if err := r.db.SelectContext(ctx, &conns, query, consumerID); err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}

	return conns, nil
}

func (r *repository) GetByID(ctx context.Context, connID int64) (*Connection, error) {
	query := `SELECT ` + connectionColumns + `
		FROM connection
		WHERE connid = $1`

	var c Connection
	err := r.db.GetContext(ctx, &c, query, connID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get connection: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}

	return &c, nil
}

// Terminate flips terminated to true once. A connection that is already
// terminated keeps its original terminatedDate.
func (r *repository) Terminate(
	ctx context.Context,
	connID int64,
	on time.Time,
) (*Connection, error) {
	var conn *Connection

	err := core.RunInTx(ctx, r.db, func(tx core.DBTX) error {
		query := `
			UPDATE connection
			SET terminated = true, "terminatedDate" = $2
			WHERE connid = $1 AND terminated = false
			RETURNING ` + connectionColumns

		var c Connection
		err := tx.GetContext(ctx, &c, query, connID, on)
		if err == nil {
			conn = &c
			return nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("terminate connection: %w", err)
		}

		existing, err := NewRepository(tx).GetByID(ctx, connID)
		if err != nil {
			return fmt.Errorf("terminate connection: %w", err)
		}
		conn = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	return conn, nil
}

// Delete removes the connection whether or not it is terminated. Its
// bills go with it through ON DELETE CASCADE. It returns the owning
// consumer id.
func (r *repository) Delete(ctx context.Context, connID int64) (int64, error) {
	query := `DELETE FROM connection WHERE connid = $1 RETURNING consumerid`

	var consumerID int64
	err := r.db.GetContext(ctx, &consumerID, query, connID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("delete connection: %w", core.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("delete connection: %w", err)
	}

	return consumerID, nil
}
