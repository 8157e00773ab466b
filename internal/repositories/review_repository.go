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

var reviewColumns = []string{"id", "title", "text", "rating", "created_at", "bootcamp_id", "user_id"}

type reviewRow struct {
	ID         int64     `db:"id"`
	Title      string    `db:"title"`
	Text       string    `db:"text"`
	Rating     int       `db:"rating"`
	CreatedAt  time.Time `db:"created_at"`
	BootcampID int64     `db:"bootcamp_id"`
	UserID     int64     `db:"user_id"`
}

func (r reviewRow) model() models.Review {
	return models.Review{
		ID:         r.ID,
		Title:      r.Title,
		Text:       r.Text,
		Rating:     r.Rating,
		CreatedAt:  r.CreatedAt,
		BootcampID: r.BootcampID,
		UserID:     r.UserID,
	}
}

// ReviewRepository stores reviews in MySQL. A user may review a bootcamp
// once (unique bootcamp_id, user_id).
type ReviewRepository struct {
	DB *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

func (r *ReviewRepository) FindByID(ctx context.Context, id int64) (models.Review, error) {
	q, args, err := sq.Select(reviewColumns...).From("reviews").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Review{}, err
	}
	var row reviewRow
	if err := r.DB.GetContext(ctx, &row, q, args...); err != nil {
		return models.Review{}, notFound(err, "Review", id)
	}
	return row.model(), nil
}

func (r *ReviewRepository) ListByBootcamp(ctx context.Context, bootcampID int64) ([]models.Review, error) {
	q, args, err := sq.Select(reviewColumns...).From("reviews").
		Where(sq.Eq{"bootcamp_id": bootcampID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []reviewRow
	if err := r.DB.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]models.Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

func (r *ReviewRepository) Create(ctx context.Context, rv *models.Review) error {
	q, args, err := sq.Insert("reviews").SetMap(map[string]any{
		"title":       rv.Title,
		"text":        rv.Text,
		"rating":      rv.Rating,
		"created_at":  rv.CreatedAt,
		"bootcamp_id": rv.BootcampID,
		"user_id":     rv.UserID,
	}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	rv.ID, err = res.LastInsertId()
	return err
}

func (r *ReviewRepository) Update(ctx context.Context, rv *models.Review) error {
	q, args, err := sq.Update("reviews").SetMap(map[string]any{
		"title":  rv.Title,
		"text":   rv.Text,
		"rating": rv.Rating,
	}).Where(sq.Eq{"id": rv.ID}).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		return translate(err)
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64) error {
	q, args, err := sq.Delete("reviews").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(sql.ErrNoRows, "Review", id)
	}
	return nil
}

// AverageRating is nil when the bootcamp has no reviews.
func (r *ReviewRepository) AverageRating(ctx context.Context, bootcampID int64) (*float64, error) {
	q, args, err := sq.Select("AVG(rating)").From("reviews").Where(sq.Eq{"bootcamp_id": bootcampID}).ToSql()
	if err != nil {
		return nil, err
	}
	var avg sql.NullFloat64
	if err := r.DB.GetContext(ctx, &avg, q, args...); err != nil {
		return nil, err
	}
	return floatPtr(avg), nil
}

func (r *ReviewRepository) Schema() query.Schema { return models.ReviewSchema }

func (r *ReviewRepository) Query(ctx context.Context, d query.Directive, expand []string) ([]any, int, error) {
	for _, e := range expand {
		if e != "bootcamp" {
			return nil, 0, fmt.Errorf("reviews: unknown expansion %q", e)
		}
	}

	total, err := count(ctx, r.DB, d, models.ReviewSchema)
	if err != nil {
		return nil, 0, err
	}
	q, args, err := d.Apply(sq.Select(reviewColumns...).From("reviews"), models.ReviewSchema).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var rows []reviewRow
	if err := r.DB.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, err
	}

	reviews := make([]models.Review, 0, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, row.model())
		ids = append(ids, row.BootcampID)
	}
	if hasExpansion(expand, "bootcamp") {
		summaries, err := summariesFor(ctx, r.DB, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range reviews {
			reviews[i].Bootcamp = summaries[reviews[i].BootcampID]
		}
	}

	out := make([]any, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, rv)
	}
	return out, total, nil
}
