package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"devcamper/internal/domain/models"
	"devcamper/internal/query"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const metersPerMile = 1609.344

var bootcampColumns = []string{
	"id", "name", "slug", "description", "website", "phone", "email", "address",
	"location_lng", "location_lat", "location_formatted_address", "location_street",
	"location_city", "location_state", "location_zipcode", "location_country",
	"careers", "average_rating", "average_cost", "photo",
	"housing", "job_assistance", "job_guarantee", "accept_gi", "created_at", "user_id",
}

type bootcampRow struct {
	ID                       int64           `db:"id"`
	Name                     string          `db:"name"`
	Slug                     string          `db:"slug"`
	Description              string          `db:"description"`
	Website                  string          `db:"website"`
	Phone                    string          `db:"phone"`
	Email                    string          `db:"email"`
	Address                  string          `db:"address"`
	LocationLng              sql.NullFloat64 `db:"location_lng"`
	LocationLat              sql.NullFloat64 `db:"location_lat"`
	LocationFormattedAddress string          `db:"location_formatted_address"`
	LocationStreet           string          `db:"location_street"`
	LocationCity             string          `db:"location_city"`
	LocationState            string          `db:"location_state"`
	LocationZipcode          string          `db:"location_zipcode"`
	LocationCountry          string          `db:"location_country"`
	Careers                  string          `db:"careers"`
	AverageRating            sql.NullFloat64 `db:"average_rating"`
	AverageCost              sql.NullFloat64 `db:"average_cost"`
	Photo                    string          `db:"photo"`
	Housing                  bool            `db:"housing"`
	JobAssistance            bool            `db:"job_assistance"`
	JobGuarantee             bool            `db:"job_guarantee"`
	AcceptGi                 bool            `db:"accept_gi"`
	CreatedAt                time.Time       `db:"created_at"`
	UserID                   int64           `db:"user_id"`
}

func (r bootcampRow) model() models.Bootcamp {
	b := models.Bootcamp{
		ID:            r.ID,
		Name:          r.Name,
		Slug:          r.Slug,
		Description:   r.Description,
		Website:       r.Website,
		Phone:         r.Phone,
		Email:         r.Email,
		Address:       r.Address,
		AverageRating: floatPtr(r.AverageRating),
		AverageCost:   floatPtr(r.AverageCost),
		Photo:         r.Photo,
		Housing:       r.Housing,
		JobAssistance: r.JobAssistance,
		JobGuarantee:  r.JobGuarantee,
		AcceptGi:      r.AcceptGi,
		CreatedAt:     r.CreatedAt,
		UserID:        r.UserID,
	}
	if r.Careers != "" {
		b.Careers = strings.Split(r.Careers, ",")
	}
	if r.LocationLng.Valid && r.LocationLat.Valid {
		b.Location = &models.Location{
			Type:             "Point",
			Coordinates:      []float64{r.LocationLng.Float64, r.LocationLat.Float64},
			FormattedAddress: r.LocationFormattedAddress,
			Street:           r.LocationStreet,
			City:             r.LocationCity,
			State:            r.LocationState,
			Zipcode:          r.LocationZipcode,
			Country:          r.LocationCountry,
		}
	}
	return b
}

// bootcampValues lists the writable columns of b, excluding id.
func bootcampValues(b *models.Bootcamp) map[string]any {
	loc := b.Location
	if loc == nil {
		loc = &models.Location{}
	}
	var lng, lat sql.NullFloat64
	if len(loc.Coordinates) == 2 {
		lng = sql.NullFloat64{Float64: loc.Lng(), Valid: true}
		lat = sql.NullFloat64{Float64: loc.Lat(), Valid: true}
	}
	return map[string]any{
		"name":                       b.Name,
		"slug":                       b.Slug,
		"description":                b.Description,
		"website":                    b.Website,
		"phone":                      b.Phone,
		"email":                      b.Email,
		"address":                    b.Address,
		"location_lng":               lng,
		"location_lat":               lat,
		"location_formatted_address": loc.FormattedAddress,
		"location_street":            loc.Street,
		"location_city":              loc.City,
		"location_state":             loc.State,
		"location_zipcode":           loc.Zipcode,
		"location_country":           loc.Country,
		"careers":                    strings.Join(b.Careers, ","),
		"average_rating":             nullFloat(b.AverageRating),
		"average_cost":               nullFloat(b.AverageCost),
		"photo":                      b.Photo,
		"housing":                    b.Housing,
		"job_assistance":             b.JobAssistance,
		"job_guarantee":              b.JobGuarantee,
		"accept_gi":                  b.AcceptGi,
		"created_at":                 b.CreatedAt,
		"user_id":                    b.UserID,
	}
}

// BootcampRepository stores bootcamps in MySQL.
type BootcampRepository struct {
	DB *sqlx.DB
}

func NewBootcampRepository(db *sqlx.DB) *BootcampRepository {
	return &BootcampRepository{DB: db}
}

func (r *BootcampRepository) FindByID(ctx context.Context, id int64) (models.Bootcamp, error) {
	q, args, err := sq.Select(bootcampColumns...).From("bootcamps").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return models.Bootcamp{}, err
	}
	var row bootcampRow
	if err := r.DB.GetContext(ctx, &row, q, args...); err != nil {
		return models.Bootcamp{}, notFound(err, "Bootcamp", id)
	}
	return row.model(), nil
}

func (r *BootcampRepository) CountByOwner(ctx context.Context, userID int64) (int, error) {
	q, args, err := sq.Select("COUNT(*)").From("bootcamps").Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.DB.GetContext(ctx, &n, q, args...); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *BootcampRepository) Create(ctx context.Context, b *models.Bootcamp) error {
	q, args, err := sq.Insert("bootcamps").SetMap(bootcampValues(b)).ToSql()
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (r *BootcampRepository) Update(ctx context.Context, b *models.Bootcamp) error {
	values := bootcampValues(b)
	delete(values, "created_at")
	delete(values, "user_id")
	return r.update(ctx, b.ID, values)
}

func (r *BootcampRepository) SetPhoto(ctx context.Context, id int64, photo string) error {
	return r.update(ctx, id, map[string]any{"photo": photo})
}

func (r *BootcampRepository) SetAverageCost(ctx context.Context, id int64, v *float64) error {
	return r.update(ctx, id, map[string]any{"average_cost": nullFloat(v)})
}

func (r *BootcampRepository) SetAverageRating(ctx context.Context, id int64, v *float64) error {
	return r.update(ctx, id, map[string]any{"average_rating": nullFloat(v)})
}

func (r *BootcampRepository) update(ctx context.Context, id int64, values map[string]any) error {
	q, args, err := sq.Update("bootcamps").SetMap(values).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		return translate(err)
	}
	return nil
}

// Delete removes the bootcamp; courses and reviews go with it through
// ON DELETE CASCADE.
func (r *BootcampRepository) Delete(ctx context.Context, id int64) error {
	q, args, err := sq.Delete("bootcamps").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(sql.ErrNoRows, "Bootcamp", id)
	}
	return nil
}

// WithinRadius finds located bootcamps within miles of the point.
func (r *BootcampRepository) WithinRadius(ctx context.Context, lat, lng, miles float64) ([]models.Bootcamp, error) {
	q, args, err := sq.Select(bootcampColumns...).From("bootcamps").
		Where("location_lat IS NOT NULL").
		Where("ST_Distance_Sphere(POINT(location_lng, location_lat), POINT(?, ?)) <= ?", lng, lat, miles*metersPerMile).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	var rows []bootcampRow
	if err := r.DB.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]models.Bootcamp, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

func (r *BootcampRepository) Schema() query.Schema { return models.BootcampSchema }

// Query serves the advanced results listing. The only expansion is
// "courses".
func (r *BootcampRepository) Query(ctx context.Context, d query.Directive, expand []string) ([]any, int, error) {
	for _, e := range expand {
		if e != "courses" {
			return nil, 0, fmt.Errorf("bootcamps: unknown expansion %q", e)
		}
	}

	total, err := count(ctx, r.DB, d, models.BootcampSchema)
	if err != nil {
		return nil, 0, err
	}

	q, args, err := d.Apply(sq.Select(bootcampColumns...).From("bootcamps"), models.BootcampSchema).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var rows []bootcampRow
	if err := r.DB.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, err
	}

	camps := make([]models.Bootcamp, 0, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		camps = append(camps, row.model())
		ids = append(ids, row.ID)
	}

	if hasExpansion(expand, "courses") && len(ids) > 0 {
		byCamp, err := coursesFor(ctx, r.DB, ids)
		if err != nil {
			return nil, 0, err
		}
		for i := range camps {
			camps[i].Courses = byCamp[camps[i].ID]
		}
	}

	out := make([]any, 0, len(camps))
	for _, b := range camps {
		out = append(out, b)
	}
	return out, total, nil
}

func count(ctx context.Context, db *sqlx.DB, d query.Directive, schema query.Schema) (int, error) {
	q, args, err := d.Count(schema).ToSql()
	if err != nil {
		return 0, err
	}
	var total int
	if err := db.GetContext(ctx, &total, q, args...); err != nil {
		return 0, err
	}
	return total, nil
}

// summariesFor loads the reduced bootcamp form used by expanded children.
func summariesFor(ctx context.Context, db *sqlx.DB, ids []int64) (map[int64]*models.BootcampSummary, error) {
	out := map[int64]*models.BootcampSummary{}
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sq.Select("id", "name", "description").From("bootcamps").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, err
	}
	var rows []models.BootcampSummary
	if err := db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}
