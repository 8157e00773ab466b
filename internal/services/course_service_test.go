package services

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"devcamper/internal/domain"
	"devcamper/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func sampleCourse(tuition float64) models.Course {
	return models.Course{
		Title:        "Front End Web Development",
		Description:  "HTML, CSS and JavaScript",
		Weeks:        "8",
		Tuition:      tuition,
		MinimumSkill: "beginner",
	}
}

func TestCourseCreateRequiresBootcampOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", domain.RolePublisher)
	other := f.user(t, "other@example.com", domain.RolePublisher)
	b := f.bootcamp(t, owner, "Owned")

	_, err := f.courses.Create(ctx, other, b.ID, sampleCourse(1000))
	assert.True(t, domain.IsForbidden(err))
	list, err := f.courses.ListByBootcamp(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.courses.Create(ctx, owner, 999, sampleCourse(1000))
	assert.True(t, domain.IsNotFound(err))

	c, err := f.courses.Create(ctx, owner, b.ID, sampleCourse(1000))
	require.NoError(t, err)
	assert.Equal(t, owner.ID, c.UserID)
	assert.Equal(t, b.ID, c.BootcampID)
}

func TestAverageCostFollowsCourses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", domain.RolePublisher)
	b := f.bootcamp(t, owner, "Owned")

	c1, err := f.courses.Create(ctx, owner, b.ID, sampleCourse(1000))
	require.NoError(t, err)
	c2, err := f.courses.Create(ctx, owner, b.ID, sampleCourse(2001))
	require.NoError(t, err)

	stored, _ := f.store.Bootcamps().FindByID(ctx, b.ID)
	require.NotNil(t, stored.AverageCost)
	assert.Equal(t, 1501.0, *stored.AverageCost)

	_, err = f.courses.Update(ctx, owner, c2.ID, func(c *models.Course) error {
		return json.Unmarshal([]byte(`{"tuition":3000}`), c)
	})
	require.NoError(t, err)
	stored, _ = f.store.Bootcamps().FindByID(ctx, b.ID)
	assert.Equal(t, 2000.0, *stored.AverageCost)

	require.NoError(t, f.courses.Delete(ctx, owner, c1.ID))
	require.NoError(t, f.courses.Delete(ctx, owner, c2.ID))
	stored, _ = f.store.Bootcamps().FindByID(ctx, b.ID)
	assert.Nil(t, stored.AverageCost)
}

func TestCourseMutationOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", domain.RolePublisher)
	other := f.user(t, "other@example.com", domain.RolePublisher)
	admin := f.user(t, "admin@example.com", domain.RoleAdmin)
	b := f.bootcamp(t, owner, "Owned")
	c, err := f.courses.Create(ctx, owner, b.ID, sampleCourse(1000))
	require.NoError(t, err)

	assert.True(t, domain.IsForbidden(f.courses.Delete(ctx, other, c.ID)))
	assert.True(t, domain.IsNotFound(f.courses.Delete(ctx, other, c.ID+100)))
	require.NoError(t, f.courses.Delete(ctx, admin, c.ID))
}

func TestCourseGetEmbedsBootcampSummary(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(t, "owner@example.com", domain.RolePublisher)
	b := f.bootcamp(t, owner, "Owned")
	c, err := f.courses.Create(ctx, owner, b.ID, sampleCourse(1000))
	require.NoError(t, err)

	got, err := f.courses.Get(ctx, c.ID)
	require.NoError(t, err)
	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"bootcamp":{"id":`+itoa(b.ID)+`,"name":"Owned"`)
}
