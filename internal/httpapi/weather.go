// Package httpapi is the HTTP Surface: a chi.Router exposing the Fetch
// Pipeline over GET /data/3.0/onecall plus the administrative,
// stats, and health endpoint families.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/alfreddev/weatherproxy/internal/apierrors"
	"github.com/alfreddev/weatherproxy/internal/fetch"
	appmiddleware "github.com/alfreddev/weatherproxy/internal/middleware"
)

type weatherHandler struct {
	pipeline *fetch.Pipeline
	appID    string
}

func (h *weatherHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := appmiddleware.RequestIDFromContext(r.Context())
	q := r.URL.Query()

	params, appid, err := parseOnecallQuery(
		q.Get("lat"), q.Get("lon"), q.Get("appid"),
		q.Get("exclude"), q.Get("units"), q.Get("lang"),
	)
	if err != nil {
		writeError(w, requestID, err)
		return
	}

	if appid != h.appID {
		writeError(w, requestID, &apierrors.AuthError{Message: "appid mismatch"})
		return
	}

	body, err := h.pipeline.GetWeather(r.Context(), params)
	if err != nil {
		var upstreamErr *apierrors.UpstreamHTTPError
		if errors.As(err, &upstreamErr) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(upstreamErr.Status)
			_, _ = w.Write(upstreamErr.Body)
			return
		}
		writeError(w, requestID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
