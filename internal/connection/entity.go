// AngelaMos | 2026
// entity.go

package connection

import (
	"time"
)

// Connection is one physical service hookup of a consumer.
type Connection struct {
	ConnID         int64      `db:"connid"`
	ConsumerID     int64      `db:"consumerid"`
	Terminated     bool       `db:"terminated"`
	TerminatedDate *time.Time `db:"terminatedDate"`
	IssuedDate     time.Time  `db:"issuedDate"`
}
