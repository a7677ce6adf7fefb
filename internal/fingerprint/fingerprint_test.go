package fingerprint_test

import (
	"testing"

	"github.com/alfreddev/weatherproxy/internal/fingerprint"
)

func TestOfIsDeterministic(t *testing.T) {
	p := fingerprint.Params{Lat: 40.7128, Lon: -74.0060, Units: "metric", Lang: "en"}
	a := fingerprint.Of(p)
	b := fingerprint.Of(p)
	if a != b {
		t.Fatalf("expected stable fingerprint, got %q vs %q", a, b)
	}
}

func TestOfIgnoresSubMeterPrecision(t *testing.T) {
	a := fingerprint.Of(fingerprint.Params{Lat: 40.71280001, Lon: -74.00600004})
	b := fingerprint.Of(fingerprint.Params{Lat: 40.712801, Lon: -74.006002})
	if a != b {
		t.Fatalf("expected sub-4-decimal noise to collapse, got %q vs %q", a, b)
	}
}

func TestOfDistinguishesCoordinates(t *testing.T) {
	a := fingerprint.Of(fingerprint.Params{Lat: 40.7128, Lon: -74.0060})
	b := fingerprint.Of(fingerprint.Params{Lat: 34.0522, Lon: -118.2437})
	if a == b {
		t.Fatal("expected distinct coordinates to fingerprint differently")
	}
}

func TestOfNormalizesExcludeOrderAndCase(t *testing.T) {
	a := fingerprint.Of(fingerprint.Params{Lat: 1, Lon: 2, Exclude: []string{"Minutely", "current"}})
	b := fingerprint.Of(fingerprint.Params{Lat: 1, Lon: 2, Exclude: []string{"current", "minutely"}})
	if a != b {
		t.Fatalf("expected order/case-insensitive exclude match, got %q vs %q", a, b)
	}
}

func TestOfNormalizesUnitsAndLangCase(t *testing.T) {
	a := fingerprint.Of(fingerprint.Params{Lat: 1, Lon: 2, Units: "METRIC", Lang: "EN"})
	b := fingerprint.Of(fingerprint.Params{Lat: 1, Lon: 2, Units: "metric", Lang: "en"})
	if a != b {
		t.Fatalf("expected case-insensitive units/lang match, got %q vs %q", a, b)
	}
}

func TestOfDistinguishesExcludeSets(t *testing.T) {
	a := fingerprint.Of(fingerprint.Params{Lat: 1, Lon: 2, Exclude: []string{"current"}})
	b := fingerprint.Of(fingerprint.Params{Lat: 1, Lon: 2, Exclude: []string{"daily"}})
	if a == b {
		t.Fatal("expected distinct exclude sets to fingerprint differently")
	}
}
