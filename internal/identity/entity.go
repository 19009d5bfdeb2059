// AngelaMos | 2026
// entity.go

package identity

// Person is the root identity. ID is the national identity number.
type Person struct {
	ID      int64  `db:"id"`
	Name    string `db:"name"`
	Mobile  string `db:"mobile"`
	Address string `db:"address"`
}

// Consumer links a Person to a meter.
type Consumer struct {
	ConsumerID  int64  `db:"consumerid"`
	PersonID    int64  `db:"id"`
	MeterNumber string `db:"meterNumber"`
}

// Inspector is a Person joined with its moderator role.
type Inspector struct {
	Person
	ModeratorID int64 `db:"moderatorid"`
}

// ConsumerRecord is a Consumer joined with its Person.
type ConsumerRecord struct {
	Person
	ConsumerID  int64  `db:"consumerid"`
	MeterNumber string `db:"meterNumber"`
}

const (
	RoleUser      = "user"
	RoleConsumer  = "consumer"
	RoleInspector = "inspector"
)
