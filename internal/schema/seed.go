// AngelaMos | 2026
// seed.go

package schema

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

// StepError names the seed step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("seed step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type SeedPerson struct {
	ID      int64
	Name    string
	Mobile  string
	Address string
}

type SeedConsumer struct {
	PersonID    int64
	MeterNumber string
}

type SeedConnection struct {
	Consumer   int
	IssuedDate time.Time
}

type SeedBill struct {
	Reading       float64
	UnitsConsumed int
	Amount        float64
	DueDate       time.Time
	Moderator     int
	IssuedDate    time.Time
	Connection    int
	Consumer      int
}

type SeedComplaint struct {
	Consumer    int
	Title       string
	Description string
	DateIssued  time.Time
}

// SeedData references consumers, moderators and connections by their
// position in the respective slice; surrogate keys are resolved while
// inserting.
type SeedData struct {
	Persons     []SeedPerson
	Consumers   []SeedConsumer
	Moderators  []int64
	Connections []SeedConnection
	Bills       []SeedBill
	Complaints  []SeedComplaint
}

func SampleData() SeedData {
	return SeedData{
		Persons: []SeedPerson{
			{ID: 123456789012, Name: "John Doe", Mobile: "9876543210", Address: "123 Main St"},
			{ID: 234567890123, Name: "Jane Smith", Mobile: "8765432109", Address: "456 Oak Ave"},
			{ID: 345678901234, Name: "Robert Brown", Mobile: "7654321098", Address: "789 Pine Rd"},
			{ID: 456789012345, Name: "Emily Wilson", Mobile: "6543210987", Address: "101 Cedar Ln"},
		},
		Consumers: []SeedConsumer{
			{PersonID: 123456789012, MeterNumber: "M001"},
			{PersonID: 234567890123, MeterNumber: "M002"},
		},
		Moderators: []int64{345678901234, 456789012345},
		Connections: []SeedConnection{
			{Consumer: 0, IssuedDate: date(2024, 1, 1)},
			{Consumer: 1, IssuedDate: date(2024, 2, 15)},
		},
		Bills: []SeedBill{
			{
				Reading: 100.5, UnitsConsumed: 75, Amount: 1500.0,
				DueDate: date(2024, 4, 15), Moderator: 0, IssuedDate: date(2024, 3, 15),
				Connection: 0, Consumer: 0,
			},
			{
				Reading: 200.3, UnitsConsumed: 95, Amount: 1900.0,
				DueDate: date(2024, 4, 15), Moderator: 0, IssuedDate: date(2024, 3, 15),
				Connection: 1, Consumer: 1,
			},
			{
				Reading: 150.8, UnitsConsumed: 85, Amount: 1700.0,
				DueDate: date(2024, 3, 15), Moderator: 1, IssuedDate: date(2024, 2, 15),
				Connection: 0, Consumer: 0,
			},
			{
				Reading: 250.1, UnitsConsumed: 105, Amount: 2100.0,
				DueDate: date(2024, 3, 15), Moderator: 1, IssuedDate: date(2024, 2, 15),
				Connection: 1, Consumer: 1,
			},
		},
		Complaints: []SeedComplaint{
			{
				Consumer: 0, Title: "High Bill",
				Description: "My bill seems unusually high this month",
				DateIssued:  date(2024, 3, 10),
			},
			{
				Consumer: 1, Title: "Meter Issues",
				Description: "I think my meter is not working correctly",
				DateIssued:  date(2024, 3, 5),
			},
		},
	}
}

type seedKeys struct {
	consumers   []int64
	moderators  []int64
	connections []int64
}

type seedStep struct {
	name string
	run  func(ctx context.Context, tx *sqlx.Tx, keys *seedKeys) error
}

// Seed inserts data as one ordered transaction. The first failing step
// rolls everything back and is reported as a *StepError.
func Seed(ctx context.Context, db *sqlx.DB, data SeedData) error {
	steps := seedSteps(data)

	return core.InTx(ctx, db, func(tx *sqlx.Tx) error {
		keys := &seedKeys{}
		for _, step := range steps {
			if err := step.run(ctx, tx, keys); err != nil {
				return &StepError{Step: step.name, Err: err}
			}
		}
		return nil
	})
}

//nolint:funlen // one closure per table keeps the insert order visible
func seedSteps(data SeedData) []seedStep {
	var steps []seedStep

	for i, p := range data.Persons {
		steps = append(steps, seedStep{
			name: fmt.Sprintf("person %d", i+1),
			run: func(ctx context.Context, tx *sqlx.Tx, _ *seedKeys) error {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO person (id, name, mobile, address) VALUES ($1, $2, $3, $4)`,
					p.ID, p.Name, p.Mobile, p.Address,
				)
				return err
			},
		})
	}

	for i, c := range data.Consumers {
		steps = append(steps, seedStep{
			name: fmt.Sprintf("consumer %d", i+1),
			run: func(ctx context.Context, tx *sqlx.Tx, keys *seedKeys) error {
				var id int64
				err := tx.GetContext(ctx, &id,
					`INSERT INTO consumer (id, "meterNumber") VALUES ($1, $2) RETURNING consumerid`,
					c.PersonID, c.MeterNumber,
				)
				keys.consumers = append(keys.consumers, id)
				return err
			},
		})
	}

	for i, personID := range data.Moderators {
		steps = append(steps, seedStep{
			name: fmt.Sprintf("moderator %d", i+1),
			run: func(ctx context.Context, tx *sqlx.Tx, keys *seedKeys) error {
				var id int64
				err := tx.GetContext(ctx, &id,
					`INSERT INTO moderator (id) VALUES ($1) RETURNING moderatorid`,
					personID,
				)
				keys.moderators = append(keys.moderators, id)
				return err
			},
		})
	}

	for i, c := range data.Connections {
		steps = append(steps, seedStep{
			name: fmt.Sprintf("connection %d", i+1),
			run: func(ctx context.Context, tx *sqlx.Tx, keys *seedKeys) error {
				consumerID, err := keys.consumer(c.Consumer)
				if err != nil {
					return err
				}

				var id int64
				err = tx.GetContext(ctx, &id,
					`INSERT INTO connection (consumerid, terminated, "issuedDate")
					 VALUES ($1, false, $2) RETURNING connid`,
					consumerID, c.IssuedDate,
				)
				keys.connections = append(keys.connections, id)
				return err
			},
		})
	}

	for i, b := range data.Bills {
		steps = append(steps, seedStep{
			name: fmt.Sprintf("bill %d", i+1),
			run: func(ctx context.Context, tx *sqlx.Tx, keys *seedKeys) error {
				consumerID, err := keys.consumer(b.Consumer)
				if err != nil {
					return err
				}
				moderatorID, err := lookup(keys.moderators, b.Moderator, "moderator")
				if err != nil {
					return err
				}
				connectionID, err := lookup(keys.connections, b.Connection, "connection")
				if err != nil {
					return err
				}

				_, err = tx.ExecContext(ctx,
					`INSERT INTO bill (reading, "unitsConsumed", amount, "dueDate",
					                   moderatorid, "issuedDate", connectionid, consumerid)
					 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
					b.Reading, b.UnitsConsumed, b.Amount, b.DueDate,
					moderatorID, b.IssuedDate, connectionID, consumerID,
				)
				return err
			},
		})
	}

	for i, c := range data.Complaints {
		steps = append(steps, seedStep{
			name: fmt.Sprintf("complaint %d", i+1),
			run: func(ctx context.Context, tx *sqlx.Tx, keys *seedKeys) error {
				consumerID, err := keys.consumer(c.Consumer)
				if err != nil {
					return err
				}

				_, err = tx.ExecContext(ctx,
					`INSERT INTO complaint ("consumerNo", title, description, "dateIssued")
					 VALUES ($1, $2, $3, $4)`,
					consumerID, c.Title, c.Description, c.DateIssued,
				)
				return err
			},
		})
	}

	return steps
}

func (k *seedKeys) consumer(i int) (int64, error) {
	return lookup(k.consumers, i, "consumer")
}

func lookup(ids []int64, i int, kind string) (int64, error) {
	if i < 0 || i >= len(ids) {
		return 0, fmt.Errorf("%s #%d was not inserted", kind, i+1)
	}
	return ids[i], nil
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
