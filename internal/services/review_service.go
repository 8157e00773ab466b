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

type ReviewService struct {
	Reviews    ReviewStore
	Bootcamps  BootcampStore
	Aggregates Aggregates
	Log        logrus.FieldLogger
	Now        func() time.Time
}

func (s ReviewService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s ReviewService) ListByBootcamp(ctx context.Context, bootcampID int64) ([]models.Review, error) {
	if _, err := s.Bootcamps.FindByID(ctx, bootcampID); err != nil {
		return nil, err
	}
	reviews, err := s.Reviews.ListByBootcamp(ctx, bootcampID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}
	return reviews, nil
}

func (s ReviewService) Get(ctx context.Context, id int64) (models.Review, error) {
	r, err := s.Reviews.FindByID(ctx, id)
	if err != nil {
		return models.Review{}, err
	}
	if b, err := s.Bootcamps.FindByID(ctx, r.BootcampID); err == nil {
		r.Bootcamp = b.Summary()
	}
	return r, nil
}

// Create records the caller's review. A second review of the same bootcamp
// by the same user is rejected by the store's unique constraint.
func (s ReviewService) Create(ctx context.Context, who domain.Identity, bootcampID int64, in models.Review) (models.Review, error) {
	b, err := s.Bootcamps.FindByID(ctx, bootcampID)
	if err != nil {
		return models.Review{}, err
	}

	r := in
	r.ID = 0
	r.BootcampID = b.ID
	r.UserID = who.ID
	r.Bootcamp = nil
	r.CreatedAt = s.now()
	if err := s.Reviews.Create(ctx, &r); err != nil {
		return models.Review{}, err
	}
	s.Aggregates.Rating(ctx, b.ID)
	utils.LogEvent(ctx, s.Log, "review", "create", fmt.Sprintf("review_id=%d bootcamp_id=%d", r.ID, b.ID))
	return r, nil
}

func (s ReviewService) Update(ctx context.Context, who domain.Identity, id int64, patch Patch[models.Review]) (models.Review, error) {
	r, err := s.Reviews.FindByID(ctx, id)
	if err != nil {
		return models.Review{}, err
	}
	if err := domain.RequireOwner(r.UserID, who, "Not authorized to update review"); err != nil {
		return models.Review{}, err
	}

	next := r
	if err := patch(&next); err != nil {
		return models.Review{}, err
	}
	next.ID = r.ID
	next.BootcampID = r.BootcampID
	next.UserID = r.UserID
	next.CreatedAt = r.CreatedAt
	next.Bootcamp = nil
	if err := s.Reviews.Update(ctx, &next); err != nil {
		return models.Review{}, err
	}
	s.Aggregates.Rating(ctx, r.BootcampID)
	utils.LogEvent(ctx, s.Log, "review", "update", fmt.Sprintf("review_id=%d", r.ID))
	return next, nil
}

func (s ReviewService) Delete(ctx context.Context, who domain.Identity, id int64) error {
	r, err := s.Reviews.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.RequireOwner(r.UserID, who, "Not authorized to delete review"); err != nil {
		return err
	}
	if err := s.Reviews.Delete(ctx, id); err != nil {
		return err
	}
	s.Aggregates.Rating(ctx, r.BootcampID)
	utils.LogEvent(ctx, s.Log, "review", "delete", fmt.Sprintf("review_id=%d", r.ID))
	return nil
}
