package services

import (
	"context"
	"testing"

	"devcamper/internal/domain"
	"devcamper/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReview(rating int) models.Review {
	return models.Review{Title: "Great", Text: "Learned a lot", Rating: rating}
}

func TestOneReviewPerUserPerBootcamp(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", domain.RolePublisher)
	reader := f.user(t, "reader@example.com", domain.RoleUser)
	b := f.bootcamp(t, owner, "Owned")

	_, err := f.reviews.Create(ctx, reader, b.ID, sampleReview(8))
	require.NoError(t, err)
	_, err = f.reviews.Create(ctx, reader, b.ID, sampleReview(3))
	assert.True(t, domain.IsConflict(err))
}

func TestAverageRatingFollowsReviews(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", domain.RolePublisher)
	a := f.user(t, "a@example.com", domain.RoleUser)
	b2 := f.user(t, "b@example.com", domain.RoleUser)
	b := f.bootcamp(t, owner, "Owned")

	r1, err := f.reviews.Create(ctx, a, b.ID, sampleReview(8))
	require.NoError(t, err)
	_, err = f.reviews.Create(ctx, b2, b.ID, sampleReview(5))
	require.NoError(t, err)

	stored, _ := f.store.Bootcamps().FindByID(ctx, b.ID)
	require.NotNil(t, stored.AverageRating)
	assert.Equal(t, 7.0, *stored.AverageRating)

	assert.True(t, domain.IsForbidden(f.reviews.Delete(ctx, b2, r1.ID)))
	require.NoError(t, f.reviews.Delete(ctx, a, r1.ID))
	stored, _ = f.store.Bootcamps().FindByID(ctx, b.ID)
	assert.Equal(t, 5.0, *stored.AverageRating)
}

type failingAverages struct{ ReviewStore }

func (failingAverages) AverageRating(context.Context, int64) (*float64, error) {
	return nil, assert.AnError
}

func TestAggregateFailureDoesNotFailMutation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.reviews.Aggregates.Reviews = failingAverages{f.store.Reviews()}
	owner := f.user(t, "owner@example.com", domain.RolePublisher)
	reader := f.user(t, "reader@example.com", domain.RoleUser)
	b := f.bootcamp(t, owner, "Owned")

	r, err := f.reviews.Create(ctx, reader, b.ID, sampleReview(9))
	require.NoError(t, err)
	assert.NotZero(t, r.ID)

	stored, _ := f.store.Bootcamps().FindByID(ctx, b.ID)
	assert.Nil(t, stored.AverageRating)
}
