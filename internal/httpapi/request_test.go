package httpapi

import "testing"

func TestParseOnecallQueryAcceptsValidParams(t *testing.T) {
	params, appid, err := parseOnecallQuery("37.7749", "-122.4194", "shared-secret", "minutely,Alerts", "metric", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appid != "shared-secret" {
		t.Fatalf("unexpected appid: %s", appid)
	}
	if params.Lat != 37.7749 || params.Lon != -122.4194 {
		t.Fatalf("unexpected lat/lon: %+v", params)
	}
	if len(params.Exclude) != 2 || params.Exclude[0] != "minutely" || params.Exclude[1] != "alerts" {
		t.Fatalf("expected normalized exclude list, got %v", params.Exclude)
	}
}

func TestParseOnecallQueryRejectsMissingLat(t *testing.T) {
	_, _, err := parseOnecallQuery("", "2", "appid", "", "", "")
	if err == nil {
		t.Fatal("expected error for missing lat")
	}
}

func TestParseOnecallQueryRejectsOutOfRangeLon(t *testing.T) {
	_, _, err := parseOnecallQuery("1", "200", "appid", "", "", "")
	if err == nil {
		t.Fatal("expected error for out-of-range lon")
	}
}

func TestParseOnecallQueryRejectsUnknownExcludeSegment(t *testing.T) {
	_, _, err := parseOnecallQuery("1", "2", "appid", "tomorrow", "", "")
	if err == nil {
		t.Fatal("expected error for unknown exclude segment")
	}
}

func TestParseOnecallQueryRejectsInvalidUnits(t *testing.T) {
	_, _, err := parseOnecallQuery("1", "2", "appid", "", "kelvin", "")
	if err == nil {
		t.Fatal("expected error for invalid units")
	}
}

func TestParseOnecallQueryRejectsMissingAppID(t *testing.T) {
	_, _, err := parseOnecallQuery("1", "2", "", "", "", "")
	if err == nil {
		t.Fatal("expected error for missing appid")
	}
}
