package repositories

import (
	"context"
	"database/sql"
	"time"

	"devcamper/internal/domain"
	"devcamper/internal/domain/models"
	"devcamper/internal/query"
	"devcamper/internal/utils"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var userColumns = []string{
	"id", "name", "email", "role", "password_hash",
	"reset_password_token", "reset_password_expire", "created_at",
}

type userRow struct {
	ID                  int64          `db:"id"`
	Name                string         `db:"name"`
	Email               string         `db:"email"`
	Role                string         `db:"role"`
	PasswordHash        string         `db:"password_hash"`
	ResetPasswordToken  sql.NullString `db:"reset_password_token"`
	ResetPasswordExpire sql.NullTime   `db:"reset_password_expire"`
	CreatedAt           time.Time      `db:"created_at"`
}

func (r userRow) model() models.User {
	u := models.User{
		ID:                 r.ID,
		Name:               r.Name,
		Email:              r.Email,
		Role:               domain.Role(r.Role),
		PasswordHash:       r.PasswordHash,
		ResetPasswordToken: r.ResetPasswordToken.String,
		CreatedAt:          r.CreatedAt,
	}
	if r.ResetPasswordExpire.Valid {
		t := r.ResetPasswordExpire.Time
		u.ResetPasswordExpire = &t
	}
	return u
}

func userValues(u *models.User) map[string]any {
	token := sql.NullString{String: u.ResetPasswordToken, Valid: u.ResetPasswordToken != ""}
	var expire sql.NullTime
	if u.ResetPasswordExpire != nil {
		expire = sql.NullTime{Time: *u.ResetPasswordExpire, Valid: true}
	}
	return map[string]any{
		"name":                  u.Name,
		"email":                 utils.NormalizeEmail(u.Email),
		"role":                  string(u.Role),
		"password_hash":         u.PasswordHash,
		"reset_password_token":  token,
		"reset_password_expire": expire,
		"created_at":            u.CreatedAt,
	}
}

// UserRepository is the credential store.
type UserRepository struct {
	DB *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) findOne(ctx context.Context, where sq.Sqlizer, id any) (models.User, error) {
	q, args, err := sq.Select(userColumns...).From("users").Where(where).Limit(1).ToSql()
	if err != nil {
		return models.User{}, err
	}
	var row userRow
	if err := r.DB.GetContext(ctx, &row, q, args...); err != nil {
		return models.User{}, notFound(err, "User", id)
	}
	return row.model(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (models.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id}, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, sq.Eq{"email": utils.NormalizeEmail(email)}, nil)
}

// FindByResetToken matches a stored reset digest that has not expired.
func (r *UserRepository) FindByResetToken(ctx context.Context, digest string, now time.Time) (models.User, error) {
	return r.findOne(ctx, sq.And{
		sq.Eq{"reset_password_token": digest},
		sq.Gt{"reset_password_expire": now},
	}, nil)
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	q, args, err := sq.Insert("users").SetMap(userValues(u)).ToSql()
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	values := userValues(u)
	delete(values, "created_at")
	q, args, err := sq.Update("users").SetMap(values).Where(sq.Eq{"id": u.ID}).ToSql()
	if err != nil {
		return err
	}
	if _, err := r.DB.ExecContext(ctx, q, args...); err != nil {
		return translate(err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	q, args, err := sq.Delete("users").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(sql.ErrNoRows, "User", id)
	}
	return nil
}

// PurgeExpiredResets clears reset tokens whose window has passed.
func (r *UserRepository) PurgeExpiredResets(ctx context.Context, now time.Time) (int64, error) {
	q, args, err := sq.Update("users").
		Set("reset_password_token", nil).
		Set("reset_password_expire", nil).
		Where(sq.LtOrEq{"reset_password_expire": now}).
		ToSql()
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *UserRepository) Schema() query.Schema { return models.UserSchema }

func (r *UserRepository) Query(ctx context.Context, d query.Directive, expand []string) ([]any, int, error) {
	total, err := count(ctx, r.DB, d, models.UserSchema)
	if err != nil {
		return nil, 0, err
	}
	q, args, err := d.Apply(sq.Select(userColumns...).From("users"), models.UserSchema).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var rows []userRow
	if err := r.DB.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, 0, err
	}
	out := make([]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, total, nil
}
