// AngelaMos | 2026
// dto.go

package complaint

import (
	"time"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

type AddComplaintRequest struct {
	ConsumerNo  core.NumericString `json:"consumerNo"  validate:"required,numeric"`
	Title       string             `json:"title"       validate:"required,max=200"`
	Description string             `json:"description" validate:"required,max=2000"`
}

type ComplaintResponse struct {
	ComplaintID int64  `json:"complaintId"`
	ConsumerNo  int64  `json:"consumerNo"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DateIssued  string `json:"dateIssued"`
}

type ComplaintListResponse struct {
	Complaints []ComplaintResponse `json:"complaints"`
}

func ToComplaintResponse(c *Complaint) ComplaintResponse {
	return ComplaintResponse{
		ComplaintID: c.ComplaintID,
		ConsumerNo:  c.ConsumerNo,
		Title:       c.Title,
		Description: c.Description,
		DateIssued:  c.DateIssued.Format(time.DateOnly),
	}
}

func ToComplaintListResponse(complaints []Complaint) ComplaintListResponse {
	out := make([]ComplaintResponse, 0, len(complaints))
	for _, c := range complaints {
		out = append(out, ToComplaintResponse(&c))
	}
	return ComplaintListResponse{Complaints: out}
}
