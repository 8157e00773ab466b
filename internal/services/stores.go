package services

import (
	"context"
	"time"

	"devcamper/internal/domain/models"
)

// Store contracts implemented by internal/repositories (MySQL) and
// internal/repositories/memory.

type UserStore interface {
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByResetToken(ctx context.Context, digest string, now time.Time) (models.User, error)
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int64) error
	PurgeExpiredResets(ctx context.Context, now time.Time) (int64, error)
}

type BootcampStore interface {
	FindByID(ctx context.Context, id int64) (models.Bootcamp, error)
	CountByOwner(ctx context.Context, userID int64) (int, error)
	Create(ctx context.Context, b *models.Bootcamp) error
	Update(ctx context.Context, b *models.Bootcamp) error
	Delete(ctx context.Context, id int64) error
	WithinRadius(ctx context.Context, lat, lng, miles float64) ([]models.Bootcamp, error)
	SetPhoto(ctx context.Context, id int64, photo string) error
	SetAverageCost(ctx context.Context, id int64, v *float64) error
	SetAverageRating(ctx context.Context, id int64, v *float64) error
}

type CourseStore interface {
	FindByID(ctx context.Context, id int64) (models.Course, error)
	ListByBootcamp(ctx context.Context, bootcampID int64) ([]models.Course, error)
	Create(ctx context.Context, c *models.Course) error
	Update(ctx context.Context, c *models.Course) error
	Delete(ctx context.Context, id int64) error
	AverageTuition(ctx context.Context, bootcampID int64) (*float64, error)
}

type ReviewStore interface {
	FindByID(ctx context.Context, id int64) (models.Review, error)
	ListByBootcamp(ctx context.Context, bootcampID int64) ([]models.Review, error)
	Create(ctx context.Context, r *models.Review) error
	Update(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, id int64) error
	AverageRating(ctx context.Context, bootcampID int64) (*float64, error)
}
