package notifications

import (
	"context"
	"strings"
	"time"

	"github.com/bigbestmart/catalog-backend/api/validators"
	"github.com/bigbestmart/catalog-backend/internal/media"
	"github.com/bigbestmart/catalog-backend/pkg/db/models"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
	"github.com/bigbestmart/catalog-backend/pkg/pagination"
)

const (
	// Bucket holds notification images.
	Bucket = "notifications"

	notFoundMessage = "Notification not found."
	dateOnlyLayout  = "2006-01-02"

	maxHeadingRunes     = 255
	maxDescriptionRunes = 2000
)

// DeletedMessage confirms a delete.
const DeletedMessage = "Notification deleted"

// Service defines the storefront notification operations.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Notification, error)
	Collect(ctx context.Context, params ListParams) (*ListResult, error)
	Update(ctx context.Context, id int64, input Input) (*models.Notification, error)
	Delete(ctx context.Context, id int64) error
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

type service struct {
	repo     Repository
	uploader media.Uploader
	now      func() time.Time
}

// Input carries notification fields. ImageURL is used as-is when no Image is uploaded.
type Input struct {
	Heading     string
	Description string
	ExpiryDate  string
	ImageURL    string
	Image       *media.File
}

// ListParams configures pagination for notifications.
type ListParams struct {
	Limit  int
	Cursor string
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification
	Cursor string
}

// NewService wires notifications dependencies. uploader may be nil.
func NewService(repo Repository, uploader media.Uploader) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, uploader: uploader, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Notification, error) {
	heading := validators.SanitizeString(input.Heading, maxHeadingRunes)
	description := validators.SanitizeString(input.Description, maxDescriptionRunes)
	rawExpiry := strings.TrimSpace(input.ExpiryDate)
	if heading == "" || description == "" || rawExpiry == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "All fields are required")
	}
	expiry, err := ParseExpiry(rawExpiry)
	if err != nil {
		return nil, err
	}

	imageURL, err := s.resolveImage(ctx, input)
	if err != nil {
		return nil, err
	}

	notification := &models.Notification{
		Heading:     heading,
		Description: description,
		ImageURL:    imageURL,
		ExpiryDate:  expiry,
		CreatedAt:   s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create notification")
	}
	return notification, nil
}

func (s *service) Collect(ctx context.Context, params ListParams) (*ListResult, error) {
	query := listNotificationsParams{
		Now:   s.now().UTC(),
		Limit: params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListActive(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

// Update changes only the non-empty fields of input.
func (s *service) Update(ctx context.Context, id int64, input Input) (*models.Notification, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get notification")
	}
	if existing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}

	updates := map[string]any{}
	if v := validators.SanitizeString(input.Heading, maxHeadingRunes); v != "" {
		updates["heading"] = v
	}
	if v := validators.SanitizeString(input.Description, maxDescriptionRunes); v != "" {
		updates["description"] = v
	}
	if v := strings.TrimSpace(input.ExpiryDate); v != "" {
		expiry, err := ParseExpiry(v)
		if err != nil {
			return nil, err
		}
		updates["expiry_date"] = expiry
	}
	imageURL, err := s.resolveImage(ctx, input)
	if err != nil {
		return nil, err
	}
	if imageURL != nil {
		updates["image_url"] = *imageURL
	}
	if len(updates) == 0 {
		return existing, nil
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update notification")
	}
	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "get notification")
	}
	if updated == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete notification")
	}
	if deleted == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return nil
}

// PurgeExpired removes notifications that expired before cutoff.
func (s *service) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	count, err := s.repo.DeleteExpiredBefore(ctx, cutoff.UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge notifications")
	}
	return count, nil
}

func (s *service) resolveImage(ctx context.Context, input Input) (*string, error) {
	if input.Image != nil {
		if s.uploader == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "image uploads are not enabled")
		}
		url, err := s.uploader.Upload(ctx, Bucket, input.Image)
		if err != nil {
			return nil, err
		}
		return &url, nil
	}
	if url := strings.TrimSpace(input.ImageURL); url != "" {
		return &url, nil
	}
	return nil, nil
}

// ParseExpiry accepts a calendar date, meaning the end of that day in UTC,
// or an RFC3339 timestamp.
func ParseExpiry(value string) (time.Time, error) {
	if day, err := time.Parse(dateOnlyLayout, value); err == nil {
		return day.Add(23*time.Hour + 59*time.Minute + 59*time.Second).UTC(), nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "expiry_date must be YYYY-MM-DD or an RFC3339 timestamp").
		WithDetails(map[string]string{"expiry_date": "invalid"})
}
