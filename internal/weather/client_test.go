package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const currentJSON = `{
	"name": "Moscow",
	"weather": [{"description": "overcast clouds"}],
	"main": {"temp": 9.4, "pressure": 1008, "humidity": 81},
	"wind": {"speed": 4.1}
}`

// newTestClient points a Client at srv with resilience wrappers that do not
// slow the test down.
func newTestClient(srv *httptest.Server) *Client {
	return &Client{
		apiKey:  "test-key",
		lang:    "en",
		baseURL: srv.URL,
		http:    srv.Client(),
		limiter: rate.NewLimiter(rate.Inf, 1),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{Name: "test"}),
	}
}

func TestCurrent(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/weather" {
			t.Errorf("path = %q, want /weather", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"lat": q.Get("lat"), "lon": q.Get("lon"),
			"units": q.Get("units"), "appid": q.Get("appid"),
		}
		_, _ = w.Write([]byte(currentJSON))
	}))
	defer srv.Close()

	c := newTestClient(srv)
	r, err := c.Current(context.Background(), 55.75, 37.61)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	if r.City != "Moscow" || r.Description != "overcast clouds" ||
		r.Temp != 9.4 || r.Pressure != 1008 || r.Humidity != 81 || r.WindSpeed != 4.1 {
		t.Fatalf("unexpected report: %+v", r)
	}
	if gotQuery["lat"] != "55.75" || gotQuery["lon"] != "37.61" {
		t.Fatalf("coordinates not passed through: %v", gotQuery)
	}
	if gotQuery["units"] != "metric" || gotQuery["appid"] != "test-key" {
		t.Fatalf("missing request params: %v", gotQuery)
	}
}

func TestCurrentServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Current(context.Background(), 1, 2)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("want ErrFetch, got %v", err)
	}
}

func TestCurrentMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name": `))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Current(context.Background(), 1, 2)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("want ErrFetch, got %v", err)
	}
}

func TestCurrentIncompleteBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name": "Moscow", "weather": []}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Current(context.Background(), 1, 2)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("partial response must not produce a report, got %v", err)
	}
}

func TestTomorrowParsesAndFilters(t *testing.T) {
	tomorrowNoon := time.Now().AddDate(0, 0, 1)
	tomorrowNoon = time.Date(tomorrowNoon.Year(), tomorrowNoon.Month(), tomorrowNoon.Day(), 12, 0, 0, 0, time.Local)
	todayNoon := tomorrowNoon.AddDate(0, 0, -1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forecast" {
			t.Errorf("path = %q, want /forecast", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{
			"city": {"name": "Moscow"},
			"list": [
				{"dt": ` + itoa(todayNoon.Unix()) + `, "weather": [{"description": "mist"}], "main": {"temp": 8, "pressure": 1000, "humidity": 70}, "wind": {"speed": 2}},
				{"dt": ` + itoa(tomorrowNoon.Unix()) + `, "weather": [{"description": "clear sky"}], "main": {"temp": 12, "pressure": 1010, "humidity": 60}, "wind": {"speed": 3}}
			]
		}`))
	}))
	defer srv.Close()

	got, err := newTestClient(srv).Tomorrow(context.Background(), 55.75, 37.61)
	if err != nil {
		t.Fatalf("Tomorrow: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want exactly tomorrow's entry, got %d entries", len(got))
	}
	if got[0].Description != "clear sky" || got[0].City != "Moscow" {
		t.Fatalf("unexpected entry: %+v", got[0])
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
