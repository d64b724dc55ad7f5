package entities

import "time"

// SettingsID is the key of the single settings record.
const SettingsID = "global"

type Settings struct {
	ID              string    `json:"id"`
	FeedbackAllowed bool      `json:"feedbackAllowed"`
	AdminIDs        []int64   `json:"adminIds"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsAdmin reports whether id is in the admin set.
func (s *Settings) IsAdmin(id int64) bool {
	for _, a := range s.AdminIDs {
		if a == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate without touching shared state.
func (s *Settings) Clone() *Settings {
	c := *s
	c.AdminIDs = append([]int64(nil), s.AdminIDs...)
	return &c
}
