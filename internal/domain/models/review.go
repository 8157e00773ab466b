package models

import (
	"encoding/json"
	"time"
)

type Review struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title" binding:"required,max=100"`
	Text       string    `json:"text" binding:"required"`
	Rating     int       `json:"rating" binding:"required,min=1,max=10"`
	CreatedAt  time.Time `json:"createdAt"`
	BootcampID int64     `json:"bootcamp"`
	UserID     int64     `json:"user"`

	Bootcamp *BootcampSummary `json:"-"`
}

func (r Review) MarshalJSON() ([]byte, error) {
	type plain Review
	if r.Bootcamp == nil {
		return json.Marshal(plain(r))
	}
	return json.Marshal(struct {
		plain
		Bootcamp *BootcampSummary `json:"bootcamp"`
	}{plain(r), r.Bootcamp})
}
