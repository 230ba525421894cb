package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amarfts/ph-scheduler/platform/apperr"
	"github.com/amarfts/ph-scheduler/platform/config"
	"github.com/amarfts/ph-scheduler/platform/logger"
)

func newTestService(serverURL string) *Service {
	return NewService(&config.Config{
		GeocodeBaseURL:      serverURL,
		GeocodeCountryCodes: "be",
	}, logger.New("test"))
}

func TestLookup(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"q":            q.Get("q"),
			"format":       q.Get("format"),
			"limit":        q.Get("limit"),
			"countrycodes": q.Get("countrycodes"),
		}
		if r.Header.Get("User-Agent") == "" {
			t.Fatal("expected a user agent header")
		}
		_, _ = w.Write([]byte(`[{"lat":"50.8503","lon":"4.3517"}]`))
	}))
	defer server.Close()

	coords, err := newTestService(server.URL).Lookup(context.Background(), "Grand Place 1, Brussels")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coords.Latitude != 50.8503 || coords.Longitude != 4.3517 {
		t.Fatalf("unexpected coordinates: %+v", coords)
	}

	if gotQuery["q"] != "Grand Place 1, Brussels" {
		t.Fatalf("expected the address forwarded, got %q", gotQuery["q"])
	}
	if gotQuery["format"] != "json" || gotQuery["limit"] != "1" {
		t.Fatalf("unexpected query: %v", gotQuery)
	}
	if gotQuery["countrycodes"] != "be" {
		t.Fatalf("expected country filter, got %q", gotQuery["countrycodes"])
	}
}

func TestLookup_NoResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := newTestService(server.URL).Lookup(context.Background(), "nowhere")
	if apperr.GetKind(err) != apperr.KindGeocoding {
		t.Fatalf("expected geocoding error, got %v", err)
	}
}

func TestLookup_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestService(server.URL).Lookup(context.Background(), "Main Street 1")
	if apperr.GetKind(err) != apperr.KindGeocoding {
		t.Fatalf("expected geocoding error, got %v", err)
	}
}

func TestLookup_MalformedCoordinates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"lat":"not-a-number","lon":"4.35"}]`))
	}))
	defer server.Close()

	_, err := newTestService(server.URL).Lookup(context.Background(), "Main Street 1")
	if apperr.GetKind(err) != apperr.KindGeocoding {
		t.Fatalf("expected geocoding error, got %v", err)
	}
}
