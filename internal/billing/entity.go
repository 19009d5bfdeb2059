// AngelaMos | 2026
// entity.go

package billing

import (
	"time"
)

type PaymentStatus string

const (
	StatusPaid   PaymentStatus = "paid"
	StatusUnpaid PaymentStatus = "unpaid"
)

// Bill is one billing cycle for a connection. Only IsPaid and PaidDate
// change after issuance.
type Bill struct {
	BillID        int64      `db:"billid"`
	Reading       float64    `db:"reading"`
	UnitsConsumed int        `db:"unitsConsumed"`
	Amount        float64    `db:"amount"`
	DueDate       time.Time  `db:"dueDate"`
	ModeratorID   int64      `db:"moderatorid"`
	IssuedDate    time.Time  `db:"issuedDate"`
	ConnectionID  int64      `db:"connectionid"`
	ConsumerID    int64      `db:"consumerid"`
	IsPaid        bool       `db:"isPaid"`
	PaidDate      *time.Time `db:"paidDate"`
}

// PreviousReading is derived, never stored.
func (b *Bill) PreviousReading() float64 {
	return b.Reading - float64(b.UnitsConsumed)
}

// DueDateStatus reports unpaid once the due date has passed and paid
// otherwise. It does not look at IsPaid.
func (b *Bill) DueDateStatus(today time.Time) PaymentStatus {
	if b.DueDate.Before(today) {
		return StatusUnpaid
	}
	return StatusPaid
}

type ReadingEntry struct {
	Bill
	PaymentStatus PaymentStatus
}

type Payment struct {
	BillID     int64
	ConsumerID int64
	PaidDate   time.Time
}

type NewBill struct {
	ModeratorID   int64
	ConnectionID  int64
	ConsumerID    int64
	Reading       float64
	UnitsConsumed int
	Amount        float64
	DueDate       time.Time
	IssuedDate    time.Time
}
