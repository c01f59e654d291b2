package media

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"time"

	"github.com/bigbestmart/catalog-backend/pkg/config"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
	"github.com/bigbestmart/catalog-backend/pkg/storage"
)

const (
	suffixLength   = 9
	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// File is an uploaded image held in memory.
type File struct {
	Name string
	Data []byte
}

// Uploader turns an image into a public URL inside an entity's bucket.
type Uploader interface {
	Upload(ctx context.Context, bucket string, file *File) (string, error)
}

type service struct {
	store              storage.Uploader
	maxBytes           int64
	consolidatedBucket string
	now                func() time.Time
	suffix             func() (string, error)
}

// NewService builds the image upload helper on top of a storage provider.
func NewService(store storage.Uploader, mediaCfg config.MediaConfig, storageCfg config.StorageConfig) (Uploader, error) {
	if store == nil {
		return nil, fmt.Errorf("storage uploader required")
	}
	return &service{
		store:              store,
		maxBytes:           mediaCfg.MaxBytes(),
		consolidatedBucket: storageCfg.Bucket,
		now:                time.Now,
		suffix:             randomSuffix,
	}, nil
}

func (s *service) Upload(ctx context.Context, bucket string, file *File) (string, error) {
	if file == nil || len(file.Data) == 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "image file is empty")
	}
	if int64(len(file.Data)) > s.maxBytes {
		return "", pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("image must be at most %d MB", s.maxBytes>>20))
	}

	detected, err := sniffImage(file.Data)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image must be a png, jpeg, webp or gif file")
	}

	suffix, err := s.suffix()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpload, err, "generate object key")
	}
	key := fmt.Sprintf("%s_%s.%s", strconv.FormatInt(s.now().UnixMilli(), 10), suffix, extensionFor(file.Name, detected))

	target := bucket
	if s.consolidatedBucket != "" {
		target = s.consolidatedBucket
		key = bucket + "/" + key
	}

	if err := s.store.Upload(ctx, target, key, bytes.NewReader(file.Data), int64(len(file.Data)), detected.String()); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeUpload, err, fmt.Sprintf("upload to %s failed", target))
	}
	return s.store.PublicURL(target, key), nil
}

func randomSuffix() (string, error) {
	out := make([]byte, 0, suffixLength)
	buf := make([]byte, suffixLength*2)
	for len(out) < suffixLength {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			// 252 is the largest multiple of 36 below 256
			if b >= 252 {
				continue
			}
			out = append(out, base36Alphabet[b%36])
			if len(out) == suffixLength {
				break
			}
		}
	}
	return string(out), nil
}
