package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"devcamper/internal/config"
	"devcamper/internal/domain"
	"devcamper/internal/domain/models"
	"devcamper/internal/utils"

	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"
)

// Patch mutates a loaded record in place. Handlers build one from the
// request body; services reapply the fields a patch may not touch.
type Patch[T any] func(*T) error

type BootcampService struct {
	Bootcamps BootcampStore
	Geocoder  Geocoder
	Photos    PhotoStore
	MaxUpload int64
	Log       logrus.FieldLogger
	Now       func() time.Time
}

func (s BootcampService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s BootcampService) Get(ctx context.Context, id int64) (models.Bootcamp, error) {
	return s.Bootcamps.FindByID(ctx, id)
}

// Create enforces one bootcamp per publisher (admins are exempt), stamps
// the owner and geocodes the address.
func (s BootcampService) Create(ctx context.Context, who domain.Identity, in models.Bootcamp) (models.Bootcamp, error) {
	if !who.IsAdmin() {
		n, err := s.Bootcamps.CountByOwner(ctx, who.ID)
		if err != nil {
			return models.Bootcamp{}, err
		}
		if n > 0 {
			return models.Bootcamp{}, domain.ValidationError{
				Msg: fmt.Sprintf("The user with ID %d has already published a bootcamp", who.ID),
			}
		}
	}

	b := in
	b.ID = 0
	b.UserID = who.ID
	b.Slug = utils.Slugify(b.Name)
	b.Photo = models.DefaultPhoto
	b.AverageCost = nil
	b.AverageRating = nil
	b.Courses = nil
	b.CreatedAt = s.now()
	b.Location = s.locate(ctx, b.Address)

	if err := s.Bootcamps.Create(ctx, &b); err != nil {
		return models.Bootcamp{}, err
	}
	utils.LogEvent(ctx, s.Log, "bootcamp", "create", fmt.Sprintf("bootcamp_id=%d user_id=%d", b.ID, who.ID))
	return b, nil
}

// locate geocodes address; failures leave the bootcamp without a location.
func (s BootcampService) locate(ctx context.Context, address string) *models.Location {
	if s.Geocoder == nil || strings.TrimSpace(address) == "" {
		return nil
	}
	loc, err := s.Geocoder.Geocode(ctx, address)
	if err != nil {
		utils.LogWarn(ctx, s.Log, "bootcamp", "geocode", err)
		return nil
	}
	return &loc
}

func (s BootcampService) Update(ctx context.Context, who domain.Identity, id int64, patch Patch[models.Bootcamp]) (models.Bootcamp, error) {
	b, err := s.Bootcamps.FindByID(ctx, id)
	if err != nil {
		return models.Bootcamp{}, err
	}
	if err := domain.RequireOwner(b.UserID, who, fmt.Sprintf("User %d is not authorized to update this bootcamp", who.ID)); err != nil {
		return models.Bootcamp{}, err
	}

	next := b
	if err := patch(&next); err != nil {
		return models.Bootcamp{}, err
	}
	next.ID = b.ID
	next.UserID = b.UserID
	next.CreatedAt = b.CreatedAt
	next.Photo = b.Photo
	next.AverageCost = b.AverageCost
	next.AverageRating = b.AverageRating
	next.Slug = utils.Slugify(next.Name)
	next.Courses = nil
	if next.Address != b.Address {
		next.Location = s.locate(ctx, next.Address)
	} else {
		next.Location = b.Location
	}

	if err := s.Bootcamps.Update(ctx, &next); err != nil {
		return models.Bootcamp{}, err
	}
	utils.LogEvent(ctx, s.Log, "bootcamp", "update", fmt.Sprintf("bootcamp_id=%d user_id=%d", id, who.ID))
	return next, nil
}

// Delete removes the bootcamp together with its courses and reviews.
func (s BootcampService) Delete(ctx context.Context, who domain.Identity, id int64) error {
	b, err := s.Bootcamps.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := domain.RequireOwner(b.UserID, who, fmt.Sprintf("User %d is not authorized to delete this bootcamp", who.ID)); err != nil {
		return err
	}
	if err := s.Bootcamps.Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(ctx, s.Log, "bootcamp", "delete", fmt.Sprintf("bootcamp_id=%d user_id=%d", id, who.ID))
	return nil
}

// WithinRadius geocodes zipcode and lists bootcamps within distance miles.
func (s BootcampService) WithinRadius(ctx context.Context, zipcode, distance string) ([]models.Bootcamp, error) {
	miles, err := strconv.ParseFloat(strings.TrimSpace(distance), 64)
	if err != nil || miles <= 0 {
		return nil, domain.ValidationError{Field: "distance", Msg: "must be a positive number of miles"}
	}
	if s.Geocoder == nil {
		return nil, domain.InternalError{Msg: "Geocoder is not configured"}
	}
	loc, err := s.Geocoder.Geocode(ctx, zipcode)
	if err != nil {
		if errors.Is(err, ErrNoGeocodeMatch) {
			return nil, domain.ValidationError{Field: "zipcode", Msg: "could not be located"}
		}
		return nil, err
	}
	return s.Bootcamps.WithinRadius(ctx, loc.Lat(), loc.Lng(), miles)
}

// UploadPhoto accepts an image no larger than MaxUpload and stores it as
// photo_<id><ext>.
func (s BootcampService) UploadPhoto(ctx context.Context, who domain.Identity, id int64, filename string, data []byte) (string, error) {
	b, err := s.Bootcamps.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if err := domain.RequireOwner(b.UserID, who, fmt.Sprintf("User %d is not authorized to update this bootcamp", who.ID)); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", domain.ValidationError{Msg: "Please upload a file"}
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", domain.ValidationError{Msg: "Please upload an image file"}
	}
	limit := s.MaxUpload
	if limit <= 0 {
		limit = config.DefaultMaxUpload
	}
	if int64(len(data)) > limit {
		return "", domain.ValidationError{Msg: fmt.Sprintf("Please upload an image less than %d", limit)}
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = mt.Extension()
	}
	name := fmt.Sprintf("photo_%d%s", b.ID, ext)
	if err := s.Photos.Save(ctx, name, mt.String(), data); err != nil {
		return "", domain.InternalError{Msg: "Problem with file upload", Err: err}
	}
	if err := s.Bootcamps.SetPhoto(ctx, b.ID, name); err != nil {
		return "", err
	}
	utils.LogEvent(ctx, s.Log, "bootcamp", "upload_photo", fmt.Sprintf("bootcamp_id=%d file=%s", b.ID, name))
	return name, nil
}
