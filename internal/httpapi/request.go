package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/alfreddev/weatherproxy/internal/apierrors"
	"github.com/alfreddev/weatherproxy/internal/fingerprint"
)

var errEmptyFloat = errors.New("empty numeric field")

var validate = validator.New()

// onecallQuery is the validated subset of the query parameters for
// GET /data/3.0/onecall.
type onecallQuery struct {
	Lat     float64 `validate:"min=-90,max=90"`
	Lon     float64 `validate:"min=-180,max=180"`
	AppID   string  `validate:"required"`
	Exclude string  `validate:"omitempty"`
	Units   string  `validate:"omitempty,oneof=standard metric imperial"`
	Lang    string  `validate:"omitempty,min=2,max=5"`
}

var validExclude = map[string]bool{
	"current": true, "minutely": true, "hourly": true, "daily": true, "alerts": true,
}

// parseOnecallQuery validates and normalizes the raw query values into
// onecallQuery, and fingerprint.Params on success.
func parseOnecallQuery(latRaw, lonRaw, appid, exclude, units, lang string) (fingerprint.Params, string, error) {
	lat, err := parseFloat(latRaw)
	if err != nil {
		return fingerprint.Params{}, "", &apierrors.ValidationError{Field: "lat", Message: "must be a number"}
	}
	lon, err := parseFloat(lonRaw)
	if err != nil {
		return fingerprint.Params{}, "", &apierrors.ValidationError{Field: "lon", Message: "must be a number"}
	}
	if appid == "" {
		return fingerprint.Params{}, "", &apierrors.ValidationError{Field: "appid", Message: "is required"}
	}

	var excludeList []string
	if exclude != "" {
		for _, part := range strings.Split(exclude, ",") {
			part = strings.TrimSpace(strings.ToLower(part))
			if part == "" {
				continue
			}
			if !validExclude[part] {
				return fingerprint.Params{}, "", &apierrors.ValidationError{Field: "exclude", Message: "unknown segment: " + part}
			}
			excludeList = append(excludeList, part)
		}
	}

	q := onecallQuery{Lat: lat, Lon: lon, AppID: appid, Exclude: exclude, Units: units, Lang: lang}
	if err := validate.Struct(q); err != nil {
		return fingerprint.Params{}, "", &apierrors.ValidationError{Field: "query", Message: err.Error()}
	}

	return fingerprint.Params{
		Lat:     lat,
		Lon:     lon,
		Exclude: excludeList,
		Units:   units,
		Lang:    lang,
	}, appid, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errEmptyFloat
	}
	return strconv.ParseFloat(s, 64)
}
