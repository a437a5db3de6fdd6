package weather

import (
	"strings"
	"testing"
	"time"
)

func TestRender(t *testing.T) {
	r := Report{
		City:        "Moscow",
		Description: "light rain",
		Temp:        11.5,
		Pressure:    1013,
		Humidity:    76,
		WindSpeed:   3.2,
	}

	got := Render(r)

	for _, want := range []string{
		"*Moscow*",
		"_Light rain_", // description is capitalized
		"*Temp:* _11.5°C_",
		"*Pressure:* _1013 hPa_",
		"*Humidity:* _76%_",
		"*Wind:* _3.2 m/s_",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderForecastUsesTimestampHeader(t *testing.T) {
	r := Report{
		City:        "Moscow",
		Description: "clear sky",
		Temp:        5,
		At:          time.Date(2025, time.May, 6, 15, 0, 0, 0, time.UTC),
	}

	got := RenderForecast(r)
	if !strings.HasPrefix(got, "*2025-05-06 15:00*") {
		t.Fatalf("forecast header = %q", strings.SplitN(got, "\n", 2)[0])
	}
	if strings.Contains(got, "Moscow") {
		t.Fatalf("forecast entry should not repeat the city: %s", got)
	}
}

func TestCity(t *testing.T) {
	rendered := Render(Report{City: "Moscow", Description: "mist"})
	if got := City(rendered); got != "Moscow" {
		t.Fatalf("City() = %q, want Moscow", got)
	}
}

func TestTomorrowOnly(t *testing.T) {
	now := time.Date(2025, time.May, 5, 13, 0, 0, 0, time.UTC)
	at := func(day, hour int) time.Time {
		return time.Date(2025, time.May, day, hour, 0, 0, 0, time.UTC)
	}

	entries := []Report{
		{At: at(5, 15)},  // today
		{At: at(5, 23)},  // today, late
		{At: at(6, 0)},   // tomorrow, midnight
		{At: at(6, 12)},  // tomorrow
		{At: at(6, 21)},  // tomorrow, evening
		{At: at(7, 3)},   // day after
	}

	got := tomorrowOnly(entries, now)
	if len(got) != 3 {
		t.Fatalf("want 3 entries for tomorrow, got %d", len(got))
	}
	for _, e := range got {
		if e.At.Day() != 6 {
			t.Errorf("entry %v is not from tomorrow", e.At)
		}
	}
}
