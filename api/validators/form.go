package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/bigbestmart/catalog-backend/internal/media"
	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
)

// imageFields are the multipart field names accepted for an uploaded image.
var imageFields = []string{"image_url", "image"}

const formMemoryOverhead = 1 << 20

// ParseEntityForm reads an entity write request in any of the accepted
// encodings: multipart (with an optional image file), urlencoded, or JSON.
// Scalar values come back untrimmed, keyed by field name.
func ParseEntityForm(r *http.Request, maxImageBytes int64) (map[string]string, *media.File, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return parseMultipart(r, maxImageBytes)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
		}
		return firstValues(r.PostForm), nil, nil
	default:
		body, err := DecodeJSONMap(r)
		if err != nil {
			return nil, nil, err
		}
		fields, err := scalarFields(body)
		return fields, nil, err
	}
}

func parseMultipart(r *http.Request, maxImageBytes int64) (map[string]string, *media.File, error) {
	if maxImageBytes <= 0 {
		maxImageBytes = 10 << 20
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxImageBytes+formMemoryOverhead)
	if err := r.ParseMultipartForm(maxImageBytes + formMemoryOverhead); err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body")
	}
	fields := firstValues(r.MultipartForm.Value)

	for _, name := range imageFields {
		headers := r.MultipartForm.File[name]
		if len(headers) == 0 {
			continue
		}
		header := headers[0]
		if header.Size > maxImageBytes {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("image must be at most %d MB", maxImageBytes>>20))
		}
		f, err := header.Open()
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image file")
		}
		data, err := io.ReadAll(io.LimitReader(f, maxImageBytes+1))
		_ = f.Close()
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read image file")
		}
		// a file part wins over a text field of the same name
		delete(fields, name)
		return fields, &media.File{Name: header.Filename, Data: data}, nil
	}
	return fields, nil, nil
}

func firstValues(values map[string][]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			out[key] = vals[0]
		}
	}
	return out
}

func scalarFields(body map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(body))
	for key, raw := range body {
		switch v := raw.(type) {
		case nil:
		case string:
			out[key] = v
		case json.Number:
			out[key] = v.String()
		case bool:
			out[key] = strconv.FormatBool(v)
		default:
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a scalar value", strings.TrimSpace(key)))
		}
	}
	return out, nil
}
