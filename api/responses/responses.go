package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
	"github.com/bigbestmart/catalog-backend/pkg/types"
)

// WriteEntity writes {"success":true,"<key>":data}.
func WriteEntity(w http.ResponseWriter, status int, key string, data any) {
	WriteEnvelope(w, status, types.SuccessEnvelope{Key: key, Data: data})
}

// WriteList writes a page of results under key, with next_cursor when more rows exist.
func WriteList(w http.ResponseWriter, key string, data any, nextCursor string) {
	WriteEnvelope(w, http.StatusOK, types.SuccessEnvelope{Key: key, Data: data, NextCursor: nextCursor})
}

// WriteMessage writes {"success":true,"message":msg}.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteEnvelope(w, status, types.SuccessEnvelope{Message: msg})
}

func WriteEnvelope(w http.ResponseWriter, status int, env types.SuccessEnvelope) {
	writeJSON(w, status, env)
}

// WriteError maps err onto the public error envelope and logs the full chain.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())

	msg := meta.PublicMessage
	if meta.ClientSafe {
		if m := typed.Message(); m != "" {
			msg = m
		}
	}

	payload := types.ErrorEnvelope{
		Success: false,
		Error:   msg,
		Code:    string(typed.Code()),
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Details = details
		}
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		if meta.HTTPStatus >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.error")
		}
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
