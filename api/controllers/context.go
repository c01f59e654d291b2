package controllers

import (
	"context"
	"net/http"

	"github.com/bigbestmart/catalog-backend/internal/catalog"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
	"github.com/bigbestmart/catalog-backend/pkg/types"
)

func entityContext(r *http.Request, logg *logger.Logger, d *catalog.Descriptor) context.Context {
	if logg == nil {
		return r.Context()
	}
	return logg.WithEntity(r.Context(), d.Key)
}

func mappingContext(r *http.Request, logg *logger.Logger, m *catalog.Mapping) context.Context {
	if logg == nil {
		return r.Context()
	}
	return logg.WithField(r.Context(), "mapping", m.Slug)
}

func entityEnvelope(key string, data any, message string) types.SuccessEnvelope {
	return types.SuccessEnvelope{Key: key, Data: data, Message: message}
}
