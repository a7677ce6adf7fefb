package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alfreddev/weatherproxy/internal/apierrors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, requestID string, err error) {
	var noCreds *apierrors.NoCredentialsAvailable
	if errors.As(err, &noCreds) {
		w.Header().Set("Retry-After", strconv.Itoa(noCreds.RetryAfterSeconds))
	}

	status := apierrors.StatusFor(err)
	writeJSON(w, status, apierrors.Envelope{
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	})
}
