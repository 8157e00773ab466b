package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devcamper/internal/auth"
	"devcamper/internal/domain"
	"devcamper/internal/domain/models"
	"devcamper/internal/utils"

	"github.com/sirupsen/logrus"
)

type UserInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// UserService is the admin-only user collection. Role checks happen in
// the router.
type UserService struct {
	Users UserStore
	Log   logrus.FieldLogger
	Now   func() time.Time
}

func (s UserService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s UserService) Get(ctx context.Context, id int64) (models.User, error) {
	return s.Users.FindByID(ctx, id)
}

func (s UserService) Create(ctx context.Context, in UserInput) (models.User, error) {
	role, err := parseRoleOrDefault(in.Role)
	if err != nil {
		return models.User{}, err
	}
	if err := auth.CheckStrength(in.Password); err != nil {
		return models.User{}, domain.ValidationError{Field: "password", Msg: err.Error(), Err: err}
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		Name:         utils.NormalizeSpace(in.Name),
		Email:        utils.NormalizeEmail(in.Email),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.Users.Create(ctx, &u); err != nil {
		return models.User{}, err
	}
	utils.LogEvent(ctx, s.Log, "user", "create", fmt.Sprintf("user_id=%d role=%s", u.ID, u.Role))
	return u, nil
}

// Update applies patch to name, email and role. Credentials are untouched.
func (s UserService) Update(ctx context.Context, id int64, patch Patch[models.User]) (models.User, error) {
	u, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	next := u
	if err := patch(&next); err != nil {
		return models.User{}, err
	}
	role, ok := domain.ParseRole(string(next.Role))
	if !ok {
		return models.User{}, domain.ValidationError{Field: "role", Msg: "must be user, publisher or admin"}
	}
	next.ID = u.ID
	next.Role = role
	next.Name = utils.NormalizeSpace(next.Name)
	next.Email = utils.NormalizeEmail(next.Email)
	if next.Name == "" {
		return models.User{}, domain.ValidationError{Field: "name", Msg: "Please add a name"}
	}
	next.PasswordHash = u.PasswordHash
	next.ResetPasswordToken = u.ResetPasswordToken
	next.ResetPasswordExpire = u.ResetPasswordExpire
	next.CreatedAt = u.CreatedAt
	if err := s.Users.Update(ctx, &next); err != nil {
		return models.User{}, err
	}
	utils.LogEvent(ctx, s.Log, "user", "update", fmt.Sprintf("user_id=%d", id))
	return next, nil
}

func (s UserService) Delete(ctx context.Context, id int64) error {
	if err := s.Users.Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(ctx, s.Log, "user", "delete", fmt.Sprintf("user_id=%d", id))
	return nil
}

func parseRoleOrDefault(s string) (domain.Role, error) {
	if strings.TrimSpace(s) == "" {
		return domain.RoleUser, nil
	}
	r, ok := domain.ParseRole(s)
	if !ok {
		return "", domain.ValidationError{Field: "role", Msg: "must be user, publisher or admin"}
	}
	return r, nil
}
