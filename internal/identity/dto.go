// AngelaMos | 2026
// dto.go

package identity

import (
	"github.com/carterperez-dev/esb-backend/internal/core"
)

type AuthenticateRequest struct {
	IdentityNumber core.NumericString `json:"identityNumber" validate:"required,numeric"`
	Mobile         string             `json:"mobile"         validate:"required,max=20"`
}

type VerifyConsumerRequest struct {
	ConsumerNo core.NumericString `json:"consumerNo" validate:"required,numeric"`
	Mobile     string             `json:"mobile"     validate:"required,max=20"`
}

// UserIdentity is the result of authenticating any Person. ConsumerID
// and MeterNumber are set only when IsConsumer is true.
type UserIdentity struct {
	IdentityNumber int64   `json:"identityNumber"`
	Name           string  `json:"name"`
	Mobile         string  `json:"mobile"`
	Address        string  `json:"address"`
	IsConsumer     bool    `json:"isConsumer"`
	ConsumerID     *int64  `json:"consumerId,omitempty"`
	MeterNumber    *string `json:"meterNumber,omitempty"`
}

type InspectorIdentity struct {
	IdentityNumber int64  `json:"identityNumber"`
	Name           string `json:"name"`
	Mobile         string `json:"mobile"`
	Address        string `json:"address"`
	ModeratorID    int64  `json:"moderatorId"`
}

type ConsumerProfile struct {
	ConsumerNo     int64  `json:"consumerNo"`
	IdentityNumber int64  `json:"identityNumber"`
	Name           string `json:"name"`
	Mobile         string `json:"mobile"`
	Address        string `json:"address"`
	MeterNumber    string `json:"meterNumber"`
}

type AuthResponse struct {
	Role  string `json:"role"`
	Token string `json:"token"`
	User  any    `json:"user"`
}

type VerifyConsumerResponse struct {
	Verified bool            `json:"verified"`
	Message  string          `json:"message"`
	User     ConsumerProfile `json:"user"`
}

func toUserIdentity(p *Person, c *Consumer) *UserIdentity {
	u := &UserIdentity{
		IdentityNumber: p.ID,
		Name:           p.Name,
		Mobile:         p.Mobile,
		Address:        p.Address,
	}

	if c != nil {
		id := c.ConsumerID
		meter := c.MeterNumber
		u.IsConsumer = true
		u.ConsumerID = &id
		u.MeterNumber = &meter
	}

	return u
}

func toInspectorIdentity(i *Inspector) *InspectorIdentity {
	return &InspectorIdentity{
		IdentityNumber: i.ID,
		Name:           i.Name,
		Mobile:         i.Mobile,
		Address:        i.Address,
		ModeratorID:    i.ModeratorID,
	}
}

func toConsumerProfile(r *ConsumerRecord) *ConsumerProfile {
	return &ConsumerProfile{
		ConsumerNo:     r.ConsumerID,
		IdentityNumber: r.ID,
		Name:           r.Name,
		Mobile:         r.Mobile,
		Address:        r.Address,
		MeterNumber:    r.MeterNumber,
	}
}
