package models

import (
	"encoding/json"
	"time"
)

type Course struct {
	ID                   int64     `json:"id"`
	Title                string    `json:"title" binding:"required"`
	Description          string    `json:"description" binding:"required"`
	Weeks                string    `json:"weeks" binding:"required"`
	Tuition              float64   `json:"tuition" binding:"required,gt=0"`
	MinimumSkill         string    `json:"minimumSkill" binding:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool      `json:"scholarshipAvailable"`
	CreatedAt            time.Time `json:"createdAt"`
	BootcampID           int64     `json:"bootcamp"`
	UserID               int64     `json:"user"`

	// Bootcamp replaces the "bootcamp" id in JSON output when expanded.
	Bootcamp *BootcampSummary `json:"-"`
}

func (c Course) MarshalJSON() ([]byte, error) {
	type plain Course
	if c.Bootcamp == nil {
		return json.Marshal(plain(c))
	}
	return json.Marshal(struct {
		plain
		Bootcamp *BootcampSummary `json:"bootcamp"`
	}{plain(c), c.Bootcamp})
}
