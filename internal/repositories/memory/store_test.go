package memory

import (
	"context"
	"net/url"
	"testing"

	"devcamper/internal/domain"
	"devcamper/internal/domain/models"
	"devcamper/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seeded struct {
	store    *Store
	owner    models.User
	reviewer models.User
	camp     models.Bootcamp
}

func seed(t *testing.T) seeded {
	t.Helper()
	ctx := context.Background()
	s := New()

	owner := models.User{Name: "Pub", Email: "pub@example.com", Role: domain.RolePublisher}
	reviewer := models.User{Name: "Rev", Email: "rev@example.com", Role: domain.RoleUser}
	require.NoError(t, s.Users().Create(ctx, &owner))
	require.NoError(t, s.Users().Create(ctx, &reviewer))

	camp := models.Bootcamp{
		Name:    "Devworks",
		Careers: []string{"Web Development", "Business"},
		UserID:  owner.ID,
		Location: &models.Location{
			Type:        "Point",
			Coordinates: []float64{-71.104, 42.350},
			State:       "MA",
		},
	}
	require.NoError(t, s.Bootcamps().Create(ctx, &camp))
	return seeded{store: s, owner: owner, reviewer: reviewer, camp: camp}
}

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)

	dup := models.User{Name: "Other", Email: "PUB@example.com", Role: domain.RoleUser}
	assert.True(t, domain.IsConflict(sd.store.Users().Create(ctx, &dup)))

	camp := models.Bootcamp{Name: "devworks", UserID: sd.reviewer.ID}
	assert.True(t, domain.IsConflict(sd.store.Bootcamps().Create(ctx, &camp)))

	first := models.Review{Title: "Great", Rating: 8, BootcampID: sd.camp.ID, UserID: sd.reviewer.ID}
	require.NoError(t, sd.store.Reviews().Create(ctx, &first))
	second := models.Review{Title: "Again", Rating: 2, BootcampID: sd.camp.ID, UserID: sd.reviewer.ID}
	assert.True(t, domain.IsConflict(sd.store.Reviews().Create(ctx, &second)))
}

func TestMissingReferences(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)

	course := models.Course{Title: "Go", BootcampID: 999, UserID: sd.owner.ID}
	assert.True(t, domain.IsValidation(sd.store.Courses().Create(ctx, &course)))

	camp := models.Bootcamp{Name: "Ghost", UserID: 999}
	assert.True(t, domain.IsValidation(sd.store.Bootcamps().Create(ctx, &camp)))
}

func TestDeleteBootcampCascades(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)

	course := models.Course{Title: "Go", Tuition: 1000, BootcampID: sd.camp.ID, UserID: sd.owner.ID}
	review := models.Review{Title: "Ok", Rating: 5, BootcampID: sd.camp.ID, UserID: sd.reviewer.ID}
	require.NoError(t, sd.store.Courses().Create(ctx, &course))
	require.NoError(t, sd.store.Reviews().Create(ctx, &review))

	require.NoError(t, sd.store.Bootcamps().Delete(ctx, sd.camp.ID))

	_, err := sd.store.Courses().FindByID(ctx, course.ID)
	assert.True(t, domain.IsNotFound(err))
	_, err = sd.store.Reviews().FindByID(ctx, review.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestDeleteUserCascadesToBootcamps(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)

	require.NoError(t, sd.store.Users().Delete(ctx, sd.owner.ID))
	_, err := sd.store.Bootcamps().FindByID(ctx, sd.camp.ID)
	assert.True(t, domain.IsNotFound(err))
}

func TestStoredBootcampIsACopy(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)

	got, err := sd.store.Bootcamps().FindByID(ctx, sd.camp.ID)
	require.NoError(t, err)
	got.Careers[0] = "Other"
	got.Location.State = "NY"

	again, err := sd.store.Bootcamps().FindByID(ctx, sd.camp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Web Development", again.Careers[0])
	assert.Equal(t, "MA", again.Location.State)
}

func TestAverages(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)
	courses := sd.store.Courses()

	avg, err := courses.AverageTuition(ctx, sd.camp.ID)
	require.NoError(t, err)
	assert.Nil(t, avg)

	for _, tuition := range []float64{1000, 2001} {
		c := models.Course{Title: "c", Tuition: tuition, BootcampID: sd.camp.ID, UserID: sd.owner.ID}
		require.NoError(t, courses.Create(ctx, &c))
	}
	avg, err = courses.AverageTuition(ctx, sd.camp.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 1500.5, *avg)
}

func TestWithinRadius(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)

	// Cambridge MA is a few miles from Boston University.
	near, err := sd.store.Bootcamps().WithinRadius(ctx, 42.373, -71.119, 10)
	require.NoError(t, err)
	require.Len(t, near, 1)

	// New York is about 190 miles away.
	far, err := sd.store.Bootcamps().WithinRadius(ctx, 40.7128, -74.0060, 50)
	require.NoError(t, err)
	assert.Empty(t, far)
}

func TestQueryFiltersAndExpands(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)

	other := models.Bootcamp{Name: "Codemasters", Careers: []string{"Data Science"}, UserID: sd.reviewer.ID}
	require.NoError(t, sd.store.Bootcamps().Create(ctx, &other))
	course := models.Course{Title: "Go", Tuition: 900, BootcampID: sd.camp.ID, UserID: sd.owner.ID}
	require.NoError(t, sd.store.Courses().Create(ctx, &course))

	d, err := query.Parse(url.Values{"careers[in]": {"Business"}}, models.BootcampSchema)
	require.NoError(t, err)
	records, total, err := sd.store.Bootcamps().Query(ctx, d, []string{"courses"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, records, 1)
	camp := records[0].(models.Bootcamp)
	assert.Equal(t, sd.camp.ID, camp.ID)
	require.Len(t, camp.Courses, 1)

	d, err = query.Parse(url.Values{"location[state]": {"MA"}}, models.BootcampSchema)
	require.NoError(t, err)
	_, total, err = sd.store.Bootcamps().Query(ctx, d, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	d, err = query.Parse(url.Values{}, models.CourseSchema)
	require.NoError(t, err)
	records, _, err = sd.store.Courses().Query(ctx, d, []string{"bootcamp"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Devworks", records[0].(models.Course).Bootcamp.Name)

	_, _, err = sd.store.Courses().Query(ctx, d, []string{"reviews"})
	assert.Error(t, err)
}

func TestQueryWithExtremePaging(t *testing.T) {
	ctx := context.Background()
	sd := seed(t)

	for _, raw := range []string{
		"page=2&limit=9223372036854775807",
		"page=9223372036854775807&limit=2",
		"page=9223372036854775807&limit=9223372036854775807",
	} {
		values, err := url.ParseQuery(raw)
		require.NoError(t, err)
		d, err := query.Parse(values, models.BootcampSchema)
		require.NoError(t, err)
		records, total, err := sd.store.Bootcamps().Query(ctx, d, nil)
		require.NoError(t, err, raw)
		assert.Equal(t, 1, total, raw)
		assert.Empty(t, records, raw)
	}

	records, _, err := sd.store.Bootcamps().Query(ctx, query.Directive{Page: 2, Limit: int(^uint(0) >> 1)}, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}
