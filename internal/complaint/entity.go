// AngelaMos | 2026
// entity.go

package complaint

import (
	"time"
)

type Complaint struct {
	ComplaintID int64     `db:"complaintid"`
	ConsumerNo  int64     `db:"consumerNo"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	DateIssued  time.Time `db:"dateIssued"`
}
