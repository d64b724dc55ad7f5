package entities

import "time"

// Batch values accepted for a registrant.
const (
	BatchOne = 1
	BatchTwo = 2
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Mobile    string    `json:"mobile"`
	Batch     int       `json:"batch"`
	Feedback  string    `json:"feedback"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Registration is what the dialogue hands to the store on completion.
type Registration struct {
	ID     int64
	Name   string
	Mobile string
	Batch  int
}

// UserFilter narrows a listing. Zero values mean "no restriction".
type UserFilter struct {
	Batch int
	Limit int
}

// ValidBatch reports whether b is one of the known cohorts.
func ValidBatch(b int) bool {
	return b == BatchOne || b == BatchTwo
}
