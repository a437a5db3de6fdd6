package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrFetch marks any provider failure: network error, non-2xx status or a
// malformed response body. Callers branch with errors.Is and must not treat
// the message text as weather data.
var ErrFetch = errors.New("weather fetch failed")

const defaultBaseURL = "https://api.openweathermap.org/data/2.5"

// Client talks to the OpenWeatherMap current-weather and 5-day forecast
// endpoints. Outbound calls go through a rate limiter and a circuit breaker
// so a degraded provider does not stall the bot.
type Client struct {
	apiKey  string
	lang    string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a Client for the given API key. lang controls the
// language of provider descriptions ("en", "ru", ...).
func NewClient(apiKey, lang string) *Client {
	return &Client{
		apiKey:  apiKey,
		lang:    lang,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		// Free tier allows 60 calls/min; stay well under it.
		limiter: rate.NewLimiter(rate.Limit(1), 2),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "openweathermap",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// Current fetches current conditions at the coordinate pair.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Report, error) {
	body, err := c.get(ctx, "/weather", lat, lon)
	if err != nil {
		return Report{}, err
	}

	var resp struct {
		Name    string `json:"name"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp     float64 `json:"temp"`
			Pressure int     `json:"pressure"`
			Humidity int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return Report{}, fmt.Errorf("%w: decode current response: %v", ErrFetch, err)
	}
	if resp.Name == "" || len(resp.Weather) == 0 {
		return Report{}, fmt.Errorf("%w: incomplete current response", ErrFetch)
	}

	return Report{
		City:        resp.Name,
		Description: resp.Weather[0].Description,
		Temp:        resp.Main.Temp,
		Pressure:    resp.Main.Pressure,
		Humidity:    resp.Main.Humidity,
		WindSpeed:   resp.Wind.Speed,
	}, nil
}

// Tomorrow fetches the 3-hour-step forecast and keeps only the entries whose
// local calendar date is tomorrow.
func (c *Client) Tomorrow(ctx context.Context, lat, lon float64) ([]Report, error) {
	body, err := c.get(ctx, "/forecast", lat, lon)
	if err != nil {
		return nil, err
	}

	var resp struct {
		City struct {
			Name string `json:"name"`
		} `json:"city"`
		List []struct {
			Dt      int64 `json:"dt"`
			Weather []struct {
				Description string `json:"description"`
			} `json:"weather"`
			Main struct {
				Temp     float64 `json:"temp"`
				Pressure int     `json:"pressure"`
				Humidity int     `json:"humidity"`
			} `json:"main"`
			Wind struct {
				Speed float64 `json:"speed"`
			} `json:"wind"`
		} `json:"list"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode forecast response: %v", ErrFetch, err)
	}
	if resp.City.Name == "" {
		return nil, fmt.Errorf("%w: incomplete forecast response", ErrFetch)
	}

	var all []Report
	for _, e := range resp.List {
		desc := ""
		if len(e.Weather) > 0 {
			desc = e.Weather[0].Description
		}
		all = append(all, Report{
			City:        resp.City.Name,
			Description: desc,
			Temp:        e.Main.Temp,
			Pressure:    e.Main.Pressure,
			Humidity:    e.Main.Humidity,
			WindSpeed:   e.Wind.Speed,
			At:          time.Unix(e.Dt, 0).Local(),
		})
	}
	return tomorrowOnly(all, time.Now()), nil
}

// tomorrowOnly keeps entries whose local date matches tomorrow relative to now.
func tomorrowOnly(entries []Report, now time.Time) []Report {
	tomorrow := now.AddDate(0, 0, 1)
	ty, tm, td := tomorrow.Date()

	var res []Report
	for _, e := range entries {
		y, m, d := e.At.In(now.Location()).Date()
		if y == ty && m == tm && d == td {
			res = append(res, e)
		}
	}
	return res
}

// get performs one rate-limited, circuit-broken GET against the provider
// and returns the response body.
func (c *Client) get(ctx context.Context, endpoint string, lat, lon float64) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrFetch, err)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("lang", c.lang)
	params.Set("units", "metric")
	params.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFetch, err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, body)
		}
		return body, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return result.([]byte), nil
}
