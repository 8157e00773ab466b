package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"devcamper/internal/domain/models"
	"devcamper/internal/query"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var courseColumns = []string{
	"id", "title", "description", "weeks", "tuition", "minimum_skill",
	"scholarship_available", "created_at", "bootcamp_id", "user_id",
}

type courseRow struct {
	ID                   int64     `db:"id"`
	Title                string    `db:"title"`
	Description          string    `db:"description"`
	Weeks                string    `db:"weeks"`
	Tuition              float64   `db:"tuition"`
	MinimumSkill         string    `db:"minimum_skill"`
	ScholarshipAvailable bool      `db:"scholarship_available"`
	CreatedAt            time.Time `db:"created_at"`
	BootcampID           int64     `db:"bootcamp_id"`
	UserID               int64     `db:"user_id"`
}

func (r courseRow) model() models.Course {
	return models.Course{
		ID:                   r.ID,
		Title:                r.Title,
		Description:          r.Description,
		Weeks:                r.Weeks,
		Tuition:              r.Tuition,
		MinimumSkill:         r.MinimumSkill,
		ScholarshipAvailable: r.ScholarshipAvailable,
		CreatedAt:            r.CreatedAt,
		BootcampID:           r.BootcampID,
		UserID:               r.UserID,
	}
}

// CourseRepository stores courses in MySQL.
type CourseRepository struct {
	DB *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) FindByID(ctx context.Context, id int64) (models.Course, error) {
	q, args, err := sq.Select(courseColumns...).From("courses").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Course{}, err
	}
	var row courseRow
	if err := r.DB.GetContext(ctx, &row, q, args...); err != nil {
		return models.Course{}, notFound(err, "Course", id)
	}
	return row.model(), nil
}

func (r *CourseRepository) ListByBootcamp(ctx context.Context, bootcampID int64) ([]models.Course, error) {
	byCamp, err := coursesFor(ctx, r.DB, []int64{bootcampID})
	if err != nil {
		return nil, err
	}
	return byCamp[bootcampID], nil
}

func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	q, args, err := sq.Insert("courses").SetMap(map[string]any{
		"title":                 c.Title,
		"description":           c.Description,
		"weeks":                 c.Weeks,
		"tuition":               c.Tuition,
		"minimum_skill":         c.MinimumSkill,
		"scholarship_available": c.ScholarshipAvailable,
		"created_at":            c.CreatedAt,
		"bootcamp_id":           c.BootcampID,
		"user_id":               c.UserID,
	}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (r *CourseRepository) Update(ctx context.Context, c *models.Course) error {
	q, args, err := sq.Update("courses").SetMap(map[string]any{
		"title":                 c.Title,
		"description":           c.Description,
		"weeks":                 c.Weeks,
		"tuition":               c.Tuition,
		"minimum_skill":         c.MinimumSkill,
		"scholarship_available": c.ScholarshipAvailable,
	}).Where(sq.Eq{"id": c.ID}).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		return translate(err)
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	q, args, err := sq.Delete("courses").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(sql.ErrNoRows, "Course", id)
	}
	return nil
}

// AverageTuition is nil when the bootcamp has no courses.
func (r *CourseRepository) AverageTuition(ctx context.Context, bootcampID int64) (*float64, error) {
	q, args, err := sq.Select("AVG(tuition)").From("courses").Where(sq.Eq{"bootcamp_id": bootcampID}).ToSql()
	if err != nil {
		return nil, err
	}
	var avg sql.NullFloat64
	if err := r.DB.GetContext(ctx, &avg, q, args...); err != nil {
		return nil, err
	}
	return floatPtr(avg), nil
}

func (r *CourseRepository) Schema() query.Schema { return models.CourseSchema }

// Query serves the advanced results listing. The only expansion is
// "bootcamp".
func (r *CourseRepository) Query(ctx context.Context, d query.Directive, expand []string) ([]any, int, error) {
	for _, e := range expand {
		if e != "bootcamp" {
			return nil, 0, fmt.Errorf("courses: unknown expansion %q", e)
		}
	}

	total, err := count(ctx, r.DB, d, models.CourseSchema)
	if err != nil {
		return nil, 0, err
	}
	q, args, err := d.Apply(sq.Select(courseColumns...).From("courses"), models.CourseSchema).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var rows []courseRow
	if err := r.DB.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, err
	}

	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.model())
	}
	if hasExpansion(expand, "bootcamp") {
		ids := make([]int64, 0, len(courses))
		for _, c := range courses {
			ids = append(ids, c.BootcampID)
		}
		summaries, err := summariesFor(ctx, r.DB, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range courses {
			courses[i].Bootcamp = summaries[courses[i].BootcampID]
		}
	}

	out := make([]any, 0, len(courses))
	for _, c := range courses {
		out = append(out, c)
	}
	return out, total, nil
}

func coursesFor(ctx context.Context, db *sqlx.DB, bootcampIDs []int64) (map[int64][]models.Course, error) {
	q, args, err := sq.Select(courseColumns...).From("courses").
		Where(sq.Eq{"bootcamp_id": bootcampIDs}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []courseRow
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make(map[int64][]models.Course, len(bootcampIDs))
	for _, row := range rows {
		out[row.BootcampID] = append(out[row.BootcampID], row.model())
	}
	return out, nil
}
