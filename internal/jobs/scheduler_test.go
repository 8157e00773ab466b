package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"devcamper/internal/domain/models"
	"devcamper/internal/repositories/memory"
	"devcamper/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingPurger struct{}

func (failingPurger) PurgeExpiredResets(context.Context, time.Time) (int64, error) {
	return 0, errors.New("db down")
}

func TestPurgeResetsClearsOnlyExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	users := memory.New().Users()

	past, future := now.Add(-time.Minute), now.Add(time.Minute)
	stale := models.User{Name: "Stale", Email: "stale@example.com", Role: "user", PasswordHash: "x",
		ResetPasswordToken: "aaa", ResetPasswordExpire: &past}
	fresh := models.User{Name: "Fresh", Email: "fresh@example.com", Role: "user", PasswordHash: "x",
		ResetPasswordToken: "bbb", ResetPasswordExpire: &future}
	require.NoError(t, users.Create(ctx, &stale))
	require.NoError(t, users.Create(ctx, &fresh))

	n := PurgeResets(ctx, users, now, utils.Discard())
	assert.Equal(t, int64(1), n)

	got, err := users.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ResetPasswordToken)
	assert.Nil(t, got.ResetPasswordExpire)

	got, err = users.FindByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "bbb", got.ResetPasswordToken)
}

func TestPurgeResetsSwallowsErrors(t *testing.T) {
	assert.Zero(t, PurgeResets(context.Background(), failingPurger{}, time.Now(), utils.Discard()))
}

func TestAddResetPurgeRejectsBadSpec(t *testing.T) {
	s := NewScheduler(utils.Discard())
	assert.Error(t, s.AddResetPurge("every now and then", failingPurger{}, nil))
	require.NoError(t, s.AddResetPurge("@every 10m", failingPurger{}, nil))

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
