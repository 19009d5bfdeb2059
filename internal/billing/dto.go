// AngelaMos | 2026
// dto.go

package billing

import (
	"time"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

const dateLayout = time.DateOnly

type CalculateBillRequest struct {
	ConsumerNo core.NumericString `json:"consumerNo" validate:"required,numeric"`
}

type ReadingHistoryRequest struct {
	ConsumerNo core.NumericString `json:"consumerNo" validate:"required,numeric"`
	Limit      int                `json:"limit"`
}

type PayBillRequest struct {
	BillID     core.NumericString `json:"billId"     validate:"required,numeric"`
	ConsumerNo core.NumericString `json:"consumerNo" validate:"required,numeric"`
}

type IssueBillRequest struct {
	ModeratorID   int64    `json:"moderatorId"   validate:"required,gt=0"`
	ConnectionID  int64    `json:"connectionId"  validate:"required,gt=0"`
	ConsumerID    int64    `json:"consumerId"    validate:"required,gt=0"`
	Reading       *float64 `json:"reading"       validate:"required,gte=0"`
	UnitsConsumed *int     `json:"unitsConsumed" validate:"required,gte=0"`
	Amount        *float64 `json:"amount"        validate:"required,gte=0"`
	DueDate       string   `json:"dueDate"       validate:"required,datetime=2006-01-02"`
}

func (r IssueBillRequest) ToNewBill() (NewBill, error) {
	due, err := time.Parse(dateLayout, r.DueDate)
	if err != nil {
		return NewBill{}, core.Invalid("issue bill", "dueDate must be YYYY-MM-DD")
	}

	return NewBill{
		ModeratorID:   r.ModeratorID,
		ConnectionID:  r.ConnectionID,
		ConsumerID:    r.ConsumerID,
		Reading:       *r.Reading,
		UnitsConsumed: *r.UnitsConsumed,
		Amount:        *r.Amount,
		DueDate:       due,
	}, nil
}

type BillResponse struct {
	BillID          int64   `json:"billId"`
	ConsumerID      int64   `json:"consumerId"`
	ConnectionID    int64   `json:"connectionId"`
	ModeratorID     int64   `json:"moderatorId"`
	PreviousReading float64 `json:"previousReading"`
	CurrentReading  float64 `json:"currentReading"`
	UnitsConsumed   int     `json:"unitsConsumed"`
	Amount          float64 `json:"amount"`
	DueDate         string  `json:"dueDate"`
	IssuedDate      string  `json:"issuedDate"`
	IsPaid          bool    `json:"isPaid"`
	PaidDate        *string `json:"paidDate"`
}

type ReadingResponse struct {
	BillID        int64         `json:"billId"`
	ReadingDate   string        `json:"readingDate"`
	Reading       float64       `json:"reading"`
	UnitsConsumed int           `json:"unitsConsumed"`
	Amount        float64       `json:"amount"`
	DueDate       string        `json:"dueDate"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
}

type ReadingHistoryResponse struct {
	Readings []ReadingResponse `json:"readings"`
}

type PaymentResponse struct {
	Message  string `json:"message"`
	BillID   int64  `json:"billId"`
	IsPaid   bool   `json:"isPaid"`
	PaidDate string `json:"paidDate"`
}

func ToBillResponse(b *Bill) BillResponse {
	resp := BillResponse{
		BillID:          b.BillID,
		ConsumerID:      b.ConsumerID,
		ConnectionID:    b.ConnectionID,
		ModeratorID:     b.ModeratorID,
		PreviousReading: b.PreviousReading(),
		CurrentReading:  b.Reading,
		UnitsConsumed:   b.UnitsConsumed,
		Amount:          b.Amount,
		DueDate:         b.DueDate.Format(dateLayout),
		IssuedDate:      b.IssuedDate.Format(dateLayout),
		IsPaid:          b.IsPaid,
	}

	if b.PaidDate != nil {
		d := b.PaidDate.Format(dateLayout)
		resp.PaidDate = &d
	}

	return resp
}

func ToReadingHistoryResponse(entries []ReadingEntry) ReadingHistoryResponse {
	readings := make([]ReadingResponse, 0, len(entries))
	for _, e := range entries {
		readings = append(readings, ReadingResponse{
			BillID:        e.BillID,
			ReadingDate:   e.IssuedDate.Format(dateLayout),
			Reading:       e.Reading,
			UnitsConsumed: e.UnitsConsumed,
			Amount:        e.Amount,
			DueDate:       e.DueDate.Format(dateLayout),
			PaymentStatus: e.PaymentStatus,
		})
	}
	return ReadingHistoryResponse{Readings: readings}
}

func ToPaymentResponse(p *Payment) PaymentResponse {
	return PaymentResponse{
		Message:  "Bill paid successfully",
		BillID:   p.BillID,
		IsPaid:   true,
		PaidDate: p.PaidDate.Format(dateLayout),
	}
}
