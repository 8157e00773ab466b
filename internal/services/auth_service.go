package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"devcamper/internal/auth"
	"devcamper/internal/domain"
	"devcamper/internal/domain/models"
	"devcamper/internal/utils"

	"github.com/sirupsen/logrus"
)

const DefaultResetTTL = 10 * time.Minute

var errInvalidCredentials = domain.UnauthorizedError{Msg: "Invalid credentials"}

type RegisterInput struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type DetailsInput struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type PasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// AuthService covers registration, login and the self-service account
// routes. Tokens are stateless; nothing here revokes one.
type AuthService struct {
	Users    UserStore
	Tokens   *auth.TokenService
	Mailer   Mailer
	Log      logrus.FieldLogger
	ResetTTL time.Duration
	Now      func() time.Time
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s AuthService) resetTTL() time.Duration {
	if s.ResetTTL > 0 {
		return s.ResetTTL
	}
	return DefaultResetTTL
}

func (s AuthService) Register(ctx context.Context, in RegisterInput) (models.User, string, error) {
	role := domain.RoleUser
	if strings.TrimSpace(in.Role) != "" {
		r, ok := domain.ParseRole(in.Role)
		if !ok || r == domain.RoleAdmin {
			return models.User{}, "", domain.ValidationError{Field: "role", Msg: "must be user or publisher"}
		}
		role = r
	}
	if err := auth.CheckStrength(in.Password); err != nil {
		return models.User{}, "", domain.ValidationError{Field: "password", Msg: err.Error(), Err: err}
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, "", err
	}

	u := models.User{
		Name:         utils.NormalizeSpace(in.Name),
		Email:        utils.NormalizeEmail(in.Email),
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.Users.Create(ctx, &u); err != nil {
		return models.User{}, "", err
	}
	utils.LogEvent(ctx, s.Log, "auth", "register", fmt.Sprintf("user_id=%d role=%s", u.ID, u.Role))

	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	return u, token, nil
}

func (s AuthService) Login(ctx context.Context, in LoginInput) (models.User, string, error) {
	if strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return models.User{}, "", domain.ValidationError{Msg: "Please provide an email and password"}
	}
	u, err := s.Users.FindByEmail(ctx, in.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, "", errInvalidCredentials
		}
		return models.User{}, "", err
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) {
		return models.User{}, "", errInvalidCredentials
	}
	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	utils.LogEvent(ctx, s.Log, "auth", "login", fmt.Sprintf("user_id=%d", u.ID))
	return u, token, nil
}

func (s AuthService) Me(ctx context.Context, id int64) (models.User, error) {
	return s.Users.FindByID(ctx, id)
}

// UpdateDetails changes name and email only.
func (s AuthService) UpdateDetails(ctx context.Context, id int64, in DetailsInput) (models.User, error) {
	u, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	u.Name = utils.NormalizeSpace(in.Name)
	u.Email = utils.NormalizeEmail(in.Email)
	if err := s.Users.Update(ctx, &u); err != nil {
		return models.User{}, err
	}
	return u, nil
}

func (s AuthService) UpdatePassword(ctx context.Context, id int64, in PasswordInput) (models.User, string, error) {
	u, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return models.User{}, "", err
	}
	if !auth.CheckPassword(u.PasswordHash, in.CurrentPassword) {
		return models.User{}, "", domain.UnauthorizedError{Msg: "Password is incorrect"}
	}
	if err := s.setPassword(&u, in.NewPassword); err != nil {
		return models.User{}, "", err
	}
	if err := s.Users.Update(ctx, &u); err != nil {
		return models.User{}, "", err
	}
	token, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	utils.LogEvent(ctx, s.Log, "auth", "update_password", fmt.Sprintf("user_id=%d", u.ID))
	return u, token, nil
}

// ForgotPassword stores a reset digest and mails the plain token, embedded
// in the URL built by resetURL. If the mail cannot be sent the pending
// reset is rolled back and an InternalError is returned.
func (s AuthService) ForgotPassword(ctx context.Context, email string, resetURL func(token string) string) error {
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.NotFoundError{Resource: "User", Msg: "There is no user with that email"}
		}
		return err
	}

	token, digest, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	expire := s.now().Add(s.resetTTL())
	u.ResetPasswordToken = digest
	u.ResetPasswordExpire = &expire
	if err := s.Users.Update(ctx, &u); err != nil {
		return err
	}

	link := resetURL(token)
	msg := Message{
		To:      u.Email,
		Subject: "Password reset token",
		Text: "You are receiving this email because you (or someone else) has requested the reset of a password. " +
			"Please make a PUT request to: \n\n" + link,
		Link: link,
	}
	if sendErr := s.Mailer.Send(ctx, msg); sendErr != nil {
		u.ClearReset()
		if err := s.Users.Update(ctx, &u); err != nil {
			sendErr = errors.Join(sendErr, err)
		}
		utils.LogWarn(ctx, s.Log, "auth", "forgot_password_mail", sendErr)
		return domain.InternalError{Msg: "Email could not be sent", Err: sendErr}
	}
	utils.LogEvent(ctx, s.Log, "auth", "forgot_password", fmt.Sprintf("user_id=%d", u.ID))
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s AuthService) ResetPassword(ctx context.Context, token, password string) (models.User, string, error) {
	u, err := s.Users.FindByResetToken(ctx, auth.HashResetToken(token), s.now())
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, "", domain.ValidationError{Msg: "Invalid token"}
		}
		return models.User{}, "", err
	}
	if err := s.setPassword(&u, password); err != nil {
		return models.User{}, "", err
	}
	u.ClearReset()
	if err := s.Users.Update(ctx, &u); err != nil {
		return models.User{}, "", err
	}
	jwt, err := s.Tokens.Issue(u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	utils.LogEvent(ctx, s.Log, "auth", "reset_password", fmt.Sprintf("user_id=%d", u.ID))
	return u, jwt, nil
}

func (s AuthService) setPassword(u *models.User, password string) error {
	if err := auth.CheckStrength(password); err != nil {
		return domain.ValidationError{Field: "password", Msg: err.Error(), Err: err}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}
