package controllers

import (
	"net/http"

	"github.com/bigbestmart/catalog-backend/api/responses"
	"github.com/bigbestmart/catalog-backend/api/validators"
	"github.com/bigbestmart/catalog-backend/internal/notifications"
	"github.com/bigbestmart/catalog-backend/pkg/logger"
)

func notificationInput(r *http.Request, maxImageBytes int64) (notifications.Input, error) {
	fields, image, err := validators.ParseEntityForm(r, maxImageBytes)
	if err != nil {
		return notifications.Input{}, err
	}
	return notifications.Input{
		Heading:     fields["heading"],
		Description: fields["description"],
		ExpiryDate:  fields["expiry_date"],
		ImageURL:    fields["image_url"],
		Image:       image,
	}, nil
}

func CreateNotification(svc notifications.Service, maxImageBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := notificationInput(r, maxImageBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		notification, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteEntity(w, http.StatusCreated, "notification", notification)
	}
}

// CollectNotifications returns the non-expired notifications, newest first.
func CollectNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Collect(r.Context(), notifications.ListParams{Limit: params.Limit, Cursor: params.Cursor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteList(w, "notifications", result.Items, result.Cursor)
	}
}

func UpdateNotification(svc notifications.Service, maxImageBytes int64, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := notificationInput(r, maxImageBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		notification, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteEntity(w, http.StatusOK, "notification", notification)
	}
}

func DeleteNotification(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseIDParam(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteMessage(w, http.StatusOK, notifications.DeletedMessage)
	}
}
