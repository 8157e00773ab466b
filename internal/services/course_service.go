package services

import (
	"context"
	"fmt"
	"time"

	"devcamper/internal/domain"
	"devcamper/internal/domain/models"
	"devcamper/internal/utils"

	"github.com/sirupsen/logrus"
)

type CourseService struct {
	Courses    CourseStore
	Bootcamps  BootcampStore
	Aggregates Aggregates
	Log        logrus.FieldLogger
	Now        func() time.Time
}

func (s CourseService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

// ListByBootcamp returns every course of an existing bootcamp.
func (s CourseService) ListByBootcamp(ctx context.Context, bootcampID int64) ([]models.Course, error) {
	if _, err := s.Bootcamps.FindByID(ctx, bootcampID); err != nil {
		return nil, err
	}
	courses, err := s.Courses.ListByBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// Get returns the course with its bootcamp summary attached.
func (s CourseService) Get(ctx context.Context, id int64) (models.Course, error) {
	c, err := s.Courses.FindByID(ctx, id)
	if err != nil {
		return models.Course{}, err
	}
	if b, err := s.Bootcamps.FindByID(ctx, c.BootcampID); err == nil {
		c.Bootcamp = b.Summary()
	}
	return c, nil
}

// Create adds a course to a bootcamp the caller owns (or any, for admins).
func (s CourseService) Create(ctx context.Context, who domain.Identity, bootcampID int64, in models.Course) (models.Course, error) {
	b, err := s.Bootcamps.FindByID(ctx, bootcampID)
	if err != nil {
		return models.Course{}, err
	}
	msg := fmt.Sprintf("User %d is not authorized to add a course to bootcamp %d", who.ID, b.ID)
	if err := domain.RequireOwner(b.UserID, who, msg); err != nil {
		return models.Course{}, err
	}

	c := in
	c.ID = 0
	c.BootcampID = b.ID
	c.UserID = who.ID
	c.Bootcamp = nil
	c.CreatedAt = s.now()
	if err := s.Courses.Create(ctx, &c); err != nil {
		return models.Course{}, err
	}
	s.Aggregates.Cost(ctx, b.ID)
	utils.LogEvent(ctx, s.Log, "course", "create", fmt.Sprintf("course_id=%d bootcamp_id=%d", c.ID, b.ID))
	return c, nil
}

func (s CourseService) Update(ctx context.Context, who domain.Identity, id int64, patch Patch[models.Course]) (models.Course, error) {
	c, err := s.Courses.FindByID(ctx, id)
	if err != nil {
		return models.Course{}, err
	}
	if err := domain.RequireOwner(c.UserID, who, fmt.Sprintf("User %d is not authorized to update course %d", who.ID, c.ID)); err != nil {
		return models.Course{}, err
	}

	next := c
	if err := patch(&next); err != nil {
		return models.Course{}, err
	}
	next.ID = c.ID
	next.BootcampID = c.BootcampID
	next.UserID = c.UserID
	next.CreatedAt = c.CreatedAt
	next.Bootcamp = nil
	if err := s.Courses.Update(ctx, &next); err != nil {
		return models.Course{}, err
	}
	s.Aggregates.Cost(ctx, c.BootcampID)
	utils.LogEvent(ctx, s.Log, "course", "update", fmt.Sprintf("course_id=%d", c.ID))
	return next, nil
}

func (s CourseService) Delete(ctx context.Context, who domain.Identity, id int64) error {
	c, err := s.Courses.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.RequireOwner(c.UserID, who, fmt.Sprintf("User %d is not authorized to delete course %d", who.ID, c.ID)); err != nil {
		return err
	}
	if err := s.Courses.Delete(ctx, id); err != nil {
		return err
	}
	s.Aggregates.Cost(ctx, c.BootcampID)
	utils.LogEvent(ctx, s.Log, "course", "delete", fmt.Sprintf("course_id=%d", c.ID))
	return nil
}
