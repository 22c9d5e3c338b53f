package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/common"
	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type handlers struct {
	Services
	logger       logging.Logger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

type credentialsReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type appendEntryReq struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

type nutrientsReq struct {
	Query string `json:"query"`
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	u, err := h.Users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user_id": u.ID, "username": u.UserName})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	tokens, err := h.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	tokens, err := h.Users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if err := h.Users.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func setETag(w http.ResponseWriter, l meallog.DailyLog) {
	w.Header().Set("ETag", fmt.Sprintf("%q", strconv.FormatInt(l.Version, 10)))
}

func (h *handlers) getLog(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	l, err := h.Logs.Fetch(r.Context(), uid, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, err)
		return
	}
	setETag(w, l)
	writeJSON(w, http.StatusOK, l)
}

func (h *handlers) appendEntry(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	var req appendEntryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	c, err := meallog.ParseCategory(req.Category)
	if err != nil {
		writeError(w, err)
		return
	}

	e, l, err := h.Logs.AppendEntry(r.Context(), uid, chi.URLParam(r, "date"), c, strings.TrimSpace(req.Name), req.Calories)
	if err != nil {
		writeError(w, err)
		return
	}
	setETag(w, l)
	writeJSON(w, http.StatusCreated, map[string]any{"entry": e, "log": l})
}

// parseIfMatch reads a version from If-Match. ok is false when the header is
// absent or "*", which means unconditional.
func parseIfMatch(r *http.Request) (version int64, ok bool, err error) {
	v := strings.TrimSpace(r.Header.Get("If-Match"))
	if v == "" || v == "*" {
		return 0, false, nil
	}
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, false, fmt.Errorf("invalid If-Match %q", r.Header.Get("If-Match"))
	}
	return n, true, nil
}

func (h *handlers) deleteEntry(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	c, err := meallog.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	expected, conditional, err := parseIfMatch(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var l meallog.DailyLog
	if conditional && expected == 0 {
		// "0" is the ETag of a log that was never written. Such a log has no
		// entries, so the delete only has to confirm it still does not exist.
		l, err = h.Logs.Fetch(r.Context(), uid, chi.URLParam(r, "date"))
		if err == nil && l.Version != 0 {
			err = common.ErrVersionConflict
		}
	} else {
		l, err = h.Logs.DeleteEntry(r.Context(), uid, chi.URLParam(r, "date"), c, id, expected)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	setETag(w, l)
	writeJSON(w, http.StatusOK, l)
}

func (h *handlers) totals(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	sum, err := h.Logs.Summary(r.Context(), uid, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, err)
		return
	}
	setETag(w, sum.Log)
	writeJSON(w, http.StatusOK, sum)
}

func (h *handlers) export(w http.ResponseWriter, r *http.Request) {
	uid, _ := UserIDFromContext(r.Context())

	key, url, err := h.Exports.Export(r.Context(), uid, chi.URLParam(r, "date"))
	if err != nil {
		h.logger.Warn(r.Context(), "export failed", "user_id", uid, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"key": key, "url": url})
}

func (h *handlers) searchFoods(w http.ResponseWriter, r *http.Request) {
	res := h.Foods.Search(r.Context(), r.URL.Query().Get("query"))
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) lookupNutrients(w http.ResponseWriter, r *http.Request) {
	var req nutrientsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	d, err := h.Foods.LookupNutrients(r.Context(), req.Query)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
