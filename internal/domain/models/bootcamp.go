package models

import "time"

// Careers a bootcamp may advertise.
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

const DefaultPhoto = "no-photo.jpg"

// Location is a GeoJSON point plus the geocoder's address breakdown.
type Location struct {
	Type             string    `json:"type,omitempty"`
	Coordinates      []float64 `json:"coordinates,omitempty"` // [lng, lat]
	FormattedAddress string    `json:"formattedAddress,omitempty"`
	Street           string    `json:"street,omitempty"`
	City             string    `json:"city,omitempty"`
	State            string    `json:"state,omitempty"`
	Zipcode          string    `json:"zipcode,omitempty"`
	Country          string    `json:"country,omitempty"`
}

func (l *Location) Lng() float64 {
	if l == nil || len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[0]
}

func (l *Location) Lat() float64 {
	if l == nil || len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[1]
}

type Bootcamp struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name" binding:"required,max=50"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description" binding:"required,max=500"`
	Website       string    `json:"website,omitempty" binding:"omitempty,url"`
	Phone         string    `json:"phone,omitempty" binding:"omitempty,max=20"`
	Email         string    `json:"email,omitempty" binding:"omitempty,email"`
	Address       string    `json:"address" binding:"required"`
	Location      *Location `json:"location,omitempty"`
	Careers       []string  `json:"careers" binding:"required,min=1,dive,oneof='Web Development' 'Mobile Development' 'UI/UX' 'Data Science' Business Other"`
	AverageRating *float64  `json:"averageRating,omitempty"`
	AverageCost   *float64  `json:"averageCost,omitempty"`
	Photo         string    `json:"photo"`
	Housing       bool      `json:"housing"`
	JobAssistance bool      `json:"jobAssistance"`
	JobGuarantee  bool      `json:"jobGuarantee"`
	AcceptGi      bool      `json:"acceptGi"`
	CreatedAt     time.Time `json:"createdAt"`
	UserID        int64     `json:"user"`

	// Courses is filled only when the list is expanded.
	Courses []Course `json:"courses,omitempty"`
}

// Summary is the reduced form embedded into expanded courses and reviews.
func (b Bootcamp) Summary() *BootcampSummary {
	return &BootcampSummary{ID: b.ID, Name: b.Name, Description: b.Description}
}

type BootcampSummary struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
}
