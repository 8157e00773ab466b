package repositories

import (
	"context"
	"net/url"
	"regexp"
	"testing"
	"time"

	"devcamper/internal/domain"
	"devcamper/internal/domain/models"
	"devcamper/internal/query"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, "mysql"), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

var created = time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)

func TestUserFindByIDMapsRow(t *testing.T) {
	db, mock := newMock(t)
	expire := created.Add(10 * time.Minute)
	mock.ExpectQuery(q("SELECT id, name, email, role, password_hash, reset_password_token, reset_password_expire, created_at FROM users WHERE id = ? LIMIT 1")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(4, "Ann", "ann@example.com", "publisher", "hash", "digest", expire, created))

	u, err := NewUserRepository(db).FindByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, domain.RolePublisher, u.Role)
	assert.Equal(t, "digest", u.ResetPasswordToken)
	require.NotNil(t, u.ResetPasswordExpire)
	assert.True(t, expire.Equal(*u.ResetPasswordExpire))
}

func TestUserFindByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT (.+) FROM users").WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := NewUserRepository(db).FindByID(context.Background(), 9)
	assert.True(t, domain.IsNotFound(err))
}

func TestUserFindByEmailLowercases(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM users WHERE email = ?")).
		WithArgs("ann@example.com").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(1, "Ann", "ann@example.com", "user", "hash", nil, nil, created))

	u, err := NewUserRepository(db).FindByEmail(context.Background(), "  Ann@Example.COM ")
	require.NoError(t, err)
	assert.Nil(t, u.ResetPasswordExpire)
	assert.Empty(t, u.ResetPasswordToken)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := NewUserRepository(db).Create(context.Background(), &models.User{Name: "Ann", Email: "a@x.io", Role: domain.RoleUser})
	assert.True(t, domain.IsConflict(err))
}

func TestUserCreateSetsID(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(12, 1))

	u := models.User{Name: "Ann", Email: "a@x.io", Role: domain.RoleUser, CreatedAt: created}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), &u))
	assert.Equal(t, int64(12), u.ID)
}

func TestUserPurgeExpiredResets(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("UPDATE users SET reset_password_token = ?, reset_password_expire = ? WHERE reset_password_expire <= ?")).
		WithArgs(nil, nil, created).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewUserRepository(db).PurgeExpiredResets(context.Background(), created)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestCourseCreateMissingBootcamp(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO courses").
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "foreign key"})

	err := NewCourseRepository(db).Create(context.Background(), &models.Course{Title: "Go", BootcampID: 99})
	assert.True(t, domain.IsValidation(err))
}

func TestCourseAverageTuition(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCourseRepository(db)

	mock.ExpectQuery(q("SELECT AVG(tuition) FROM courses WHERE bootcamp_id = ?")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"AVG(tuition)"}).AddRow(1750.5))
	avg, err := repo.AverageTuition(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 1750.5, *avg)

	mock.ExpectQuery(q("SELECT AVG(tuition) FROM courses")).
		WillReturnRows(sqlmock.NewRows([]string{"AVG(tuition)"}).AddRow(nil))
	avg, err = repo.AverageTuition(context.Background(), 2)
	require.NoError(t, err)
	assert.Nil(t, avg)
}

func TestCourseQueryExpandsBootcamp(t *testing.T) {
	db, mock := newMock(t)
	d, err := query.Parse(url.Values{"tuition[gte]": {"1000"}, "limit": {"2"}}, models.CourseSchema)
	require.NoError(t, err)

	mock.ExpectQuery(q("SELECT COUNT(*) FROM courses WHERE (tuition >= ?)")).
		WithArgs(1000.0).
		WillReturnRows(sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(3))
	mock.ExpectQuery(q("FROM courses WHERE (tuition >= ?) ORDER BY id ASC LIMIT 2 OFFSET 0")).
		WithArgs(1000.0).
		WillReturnRows(sqlmock.NewRows(courseColumns).
			AddRow(1, "Go", "d", "8", 1200.0, "beginner", false, created, 5, 2).
			AddRow(2, "Rust", "d", "10", 1800.0, "advanced", true, created, 5, 2))
	mock.ExpectQuery(q("SELECT id, name, description FROM bootcamps WHERE id IN (?,?)")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description"}).AddRow(5, "Devworks", "Full stack"))

	records, total, err := NewCourseRepository(db).Query(context.Background(), d, []string{"bootcamp"})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, records, 2)

	first := records[0].(models.Course)
	require.NotNil(t, first.Bootcamp)
	assert.Equal(t, "Devworks", first.Bootcamp.Name)
}

func TestBootcampQueryRejectsUnknownExpansion(t *testing.T) {
	db, _ := newMock(t)
	_, _, err := NewBootcampRepository(db).Query(context.Background(), query.Directive{Page: 1, Limit: 25}, []string{"reviews"})
	assert.Error(t, err)
}

func TestBootcampFindByIDBuildsLocation(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(q("FROM bootcamps WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(bootcampColumns).AddRow(
			3, "Devworks", "devworks", "desc", "", "", "", "233 Bay State Rd Boston MA",
			-71.104, 42.350, "233 Bay State Rd, Boston, MA 02215-1405, US", "233 Bay State Rd",
			"Boston", "MA", "02215-1405", "US",
			"Web Development,UI/UX", 8.0, nil, "no-photo.jpg",
			true, true, false, true, created, 2,
		))

	b, err := NewBootcampRepository(db).FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Web Development", "UI/UX"}, b.Careers)
	require.NotNil(t, b.Location)
	assert.Equal(t, []float64{-71.104, 42.350}, b.Location.Coordinates)
	assert.Nil(t, b.AverageCost)
	require.NotNil(t, b.AverageRating)
	assert.Equal(t, 8.0, *b.AverageRating)
}

func TestBootcampDeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("DELETE FROM bootcamps WHERE id = ?")).
		WithArgs(int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewBootcampRepository(db).Delete(context.Background(), 8)
	assert.True(t, domain.IsNotFound(err))
}

func TestBootcampSetAverageCostNull(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(q("UPDATE bootcamps SET average_cost = ? WHERE id = ?")).
		WithArgs(nil, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewBootcampRepository(db).SetAverageCost(context.Background(), 2, nil))
}

func TestReviewCreateDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO reviews").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '1-2'"})

	err := NewReviewRepository(db).Create(context.Background(), &models.Review{Title: "t", Rating: 7, BootcampID: 1, UserID: 2})
	assert.True(t, domain.IsConflict(err))
}
