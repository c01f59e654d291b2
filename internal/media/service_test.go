package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bigbestmart/catalog-backend/pkg/config"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

type fakeStore struct {
	bucket      string
	key         string
	contentType string
	body        []byte
	err         error
}

func (f *fakeStore) Upload(_ context.Context, bucket, key string, body io.Reader, _ int64, contentType string) error {
	if f.err != nil {
		return f.err
	}
	f.bucket, f.key, f.contentType = bucket, key, contentType
	f.body, _ = io.ReadAll(body)
	return nil
}

func (f *fakeStore) PublicURL(bucket, key string) string {
	return "https://cdn.test/" + bucket + "/" + key
}

func newTestService(t *testing.T, store *fakeStore, storageCfg config.StorageConfig) *service {
	t.Helper()
	svc, err := NewService(store, config.MediaConfig{MaxUploadMB: 1}, storageCfg)
	require.NoError(t, err)
	s := svc.(*service)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }
	s.suffix = func() (string, error) { return "abc123xyz", nil }
	return s
}

func TestUploadBuildsKeyAndReturnsPublicURL(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store, config.StorageConfig{})

	url, err := svc.Upload(context.Background(), "brand", &File{Name: "Logo.PNG", Data: pngHeader})
	require.NoError(t, err)

	assert.Equal(t, "brand", store.bucket)
	assert.Equal(t, "1700000000123_abc123xyz.png", store.key)
	assert.Equal(t, "image/png", store.contentType)
	assert.Equal(t, pngHeader, store.body)
	assert.Equal(t, "https://cdn.test/brand/1700000000123_abc123xyz.png", url)
}

func TestUploadConsolidatedBucketPrefixesEntity(t *testing.T) {
	store := &fakeStore{}
	svc := newTestService(t, store, config.StorageConfig{Bucket: "catalog"})

	url, err := svc.Upload(context.Background(), "quickPick", &File{Name: "pick", Data: pngHeader})
	require.NoError(t, err)

	assert.Equal(t, "catalog", store.bucket)
	assert.Equal(t, "quickPick/1700000000123_abc123xyz.png", store.key)
	assert.Equal(t, "https://cdn.test/catalog/quickPick/1700000000123_abc123xyz.png", url)
}

func TestUploadRejectsNonImages(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, config.StorageConfig{})

	_, err := svc.Upload(context.Background(), "brand", &File{Name: "evil.png", Data: []byte("#!/bin/sh\necho hi\n")})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Upload(context.Background(), "brand", &File{Name: "empty.png"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUploadRejectsOversizedFiles(t *testing.T) {
	svc := newTestService(t, &fakeStore{}, config.StorageConfig{})

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, 1<<20)...)
	_, err := svc.Upload(context.Background(), "brand", &File{Name: "big.png", Data: big})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUploadFailureIsUploadError(t *testing.T) {
	svc := newTestService(t, &fakeStore{err: errors.New("AccessDenied")}, config.StorageConfig{})

	_, err := svc.Upload(context.Background(), "brand", &File{Name: "a.png", Data: pngHeader})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUpload))
}

func TestExtensionFallsBackToDetectedType(t *testing.T) {
	detected, err := sniffImage(pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "png", extensionFor("", detected))
	assert.Equal(t, "png", extensionFor("weird.p$g", detected))
	assert.Equal(t, "jpeg", extensionFor("photo.JPEG", detected))
}

func TestRandomSuffixIsBase36(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-z]{9}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		s, err := randomSuffix()
		require.NoError(t, err)
		assert.Regexp(t, re, s)
		seen[s] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestNewServiceRequiresStore(t *testing.T) {
	_, err := NewService(nil, config.MediaConfig{}, config.StorageConfig{})
	require.Error(t, err)

	svc, err := NewService(&fakeStore{}, config.MediaConfig{MaxUploadMB: 2}, config.StorageConfig{})
	require.NoError(t, err)
	assert.Equal(t, int64(2<<20), svc.(*service).maxBytes)
}
