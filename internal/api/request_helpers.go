package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/tasktracker/internal/api/shared"
	"github.com/phrazzld/tasktracker/internal/domain"
	"github.com/phrazzld/tasktracker/internal/platform/logger"
)

// DateLayout is the format of the start_date and end_date query parameters.
const DateLayout = "2006-01-02"

// getPathID extracts a positive integer id from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", nil)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}
	return id, nil
}

// handleUserAndPathID extracts the authenticated user and the path id. It
// writes an error response and returns false if either is missing.
func handleUserAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	fallback *slog.Logger,
) (*domain.User, int64, bool) {
	log := logger.FromContextOrDefault(r.Context(), fallback)

	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		log.Warn("user not found in request context")
		HandleAPIError(w, r, domain.ErrUnauthorized, "")
		return nil, 0, false
	}

	id, err := getPathID(r, paramName)
	if err != nil {
		log.Debug("invalid path parameter",
			slog.String("param_name", paramName),
			slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return nil, 0, false
	}

	return user, id, true
}

// parseTaskFilter reads the task list query parameters. Dates are calendar
// days in UTC; both ends are inclusive.
func parseTaskFilter(r *http.Request, now time.Time) (domain.TaskFilter, error) {
	q := r.URL.Query()
	filter := domain.TaskFilter{Now: now}

	if v := q.Get("title"); v != "" {
		filter.Title = &v
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"start_date", &filter.StartDate},
		{"end_date", &filter.EndDate},
	} {
		v := strings.TrimSpace(q.Get(p.name))
		if v == "" {
			continue
		}
		day, err := time.ParseInLocation(DateLayout, v, time.UTC)
		if err != nil {
			return domain.TaskFilter{}, domain.NewValidationError(p.name, "must be a date in YYYY-MM-DD format", err)
		}
		*p.dst = &day
	}

	if v := q.Get("creator_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return domain.TaskFilter{}, domain.NewValidationError("creator_id", "must be a positive integer", domain.ErrInvalidID)
		}
		filter.CreatorID = &id
	}

	if v := q.Get("expired"); v != "" {
		expired, err := strconv.ParseBool(v)
		if err != nil {
			return domain.TaskFilter{}, domain.NewValidationError("expired", "must be true or false", err)
		}
		filter.Expired = &expired
	}

	return filter, nil
}
