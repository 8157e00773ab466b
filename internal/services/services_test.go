package services

import (
	"context"
	"testing"

	"devcamper/internal/auth"
	"devcamper/internal/domain"
	"devcamper/internal/domain/models"
	"devcamper/internal/repositories/memory"
	"devcamper/internal/utils"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() { auth.HashCost = bcrypt.MinCost }

type fixture struct {
	store      *memory.Store
	bootcamps  BootcampService
	courses    CourseService
	reviews    ReviewService
	aggregates Aggregates
}

func newFixture() *fixture {
	st := memory.New()
	log := utils.Discard()
	agg := Aggregates{Bootcamps: st.Bootcamps(), Courses: st.Courses(), Reviews: st.Reviews(), Log: log}
	return &fixture{
		store:      st,
		aggregates: agg,
		bootcamps:  BootcampService{Bootcamps: st.Bootcamps(), Geocoder: NoopGeocoder{}, Photos: &memPhotos{}, Log: log},
		courses:    CourseService{Courses: st.Courses(), Bootcamps: st.Bootcamps(), Aggregates: agg, Log: log},
		reviews:    ReviewService{Reviews: st.Reviews(), Bootcamps: st.Bootcamps(), Aggregates: agg, Log: log},
	}
}

func (f *fixture) user(t *testing.T, email string, role domain.Role) domain.Identity {
	t.Helper()
	u := models.User{Name: email, Email: email, Role: role, PasswordHash: "x"}
	require.NoError(t, f.store.Users().Create(context.Background(), &u))
	return u.Identity()
}

func (f *fixture) bootcamp(t *testing.T, owner domain.Identity, name string) models.Bootcamp {
	t.Helper()
	b, err := f.bootcamps.Create(context.Background(), owner, sampleBootcamp(name))
	require.NoError(t, err)
	return b
}

func sampleBootcamp(name string) models.Bootcamp {
	return models.Bootcamp{
		Name:        name,
		Description: "Full stack web development",
		Address:     "233 Bay State Rd Boston MA 02215",
		Careers:     []string{"Web Development"},
	}
}

type memPhotos struct {
	saved map[string][]byte
}

func (m *memPhotos) Save(_ context.Context, name, _ string, data []byte) error {
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[name] = data
	return nil
}
