// AngelaMos | 2026
// dto.go

package connection

import (
	"time"
)

const dateLayout = time.DateOnly

type ConnectionResponse struct {
	ConnID         int64   `json:"connId"`
	ConsumerID     int64   `json:"consumerId"`
	Terminated     bool    `json:"terminated"`
	TerminatedDate *string `json:"terminatedDate"`
	IssuedDate     string  `json:"issuedDate"`
}

type ConnectionListResponse struct {
	Connections []ConnectionResponse `json:"connections"`
}

func ToConnectionResponse(c *Connection) ConnectionResponse {
	resp := ConnectionResponse{
		ConnID:     c.ConnID,
		ConsumerID: c.ConsumerID,
		Terminated: c.Terminated,
		IssuedDate: c.IssuedDate.Format(dateLayout),
	}

	if c.TerminatedDate != nil {
		d := c.TerminatedDate.Format(dateLayout)
		resp.TerminatedDate = &d
	}

	return resp
}

func ToConnectionResponseList(conns []Connection) []ConnectionResponse {
	responses := make([]ConnectionResponse, 0, len(conns))
	for _, c := range conns {
		responses = append(responses, ToConnectionResponse(&c))
	}
	return responses
}
