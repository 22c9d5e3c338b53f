package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/mealtrack/internal/common"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
)

// statusFor maps a service error to an HTTP status and a client safe text.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, "refresh token expired"
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, nutritionix.ErrNoFoods):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrVersionConflict):
		return http.StatusConflict, "version conflict"
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict, "already exists"
	default:
		return http.StatusInternalServerError, "server error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	code, msg := statusFor(err)
	http.Error(w, msg, code)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
