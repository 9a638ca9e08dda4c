package domain

import "time"

// Patient owns one persisted plan session.
type Patient struct {
	ID        string
	Name      string
	Grouping  GroupingMode
	CreatedAt time.Time
	UpdatedAt time.Time
}
