package middleware

import (
	"net/http"

	"github.com/skilllinkup/backend/internal/models"
)

// Locale returns the request locale: the ?locale= query parameter when it is
// one of the supported locales, otherwise the default.
func Locale(r *http.Request) string {
	l := r.URL.Query().Get("locale")
	if models.IsSupportedLocale(l) {
		return l
	}
	return models.DefaultLocale
}
