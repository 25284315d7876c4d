// Package openweather implements the outbound OpenWeather API boundary:
// geocoding, reverse geocoding and current conditions, sharing one API key
// and one retry policy.
package openweather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-chatbot/internal/chatbot"
)

const (
	defaultBaseURL   = "https://api.openweathermap.org"
	geocodingPath    = "/geo/1.0/direct"
	reverseGeoPath   = "/geo/1.0/reverse"
	currentWxPath    = "/data/2.5/weather"
	maxAttempts      = 3
	backoffPerRetry  = 2 * time.Second // sleep = backoffPerRetry * (attempt+1)
)

var errCircuitOpen = errors.New("circuit breaker open")

// Client calls the OpenWeather endpoints with retries and a circuit breaker
// per endpoint family, so a broken weather endpoint does not take geocoding
// down with it. It implements chatbot.GeoClient.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client

	geoCircuit *gobreaker.CircuitBreaker
	wxCircuit  *gobreaker.CircuitBreaker

	// backoff is the delay before retry attempt+1; overridable in tests.
	backoff func(attempt int) time.Duration
}

// NewClient builds a Client. The http.Client carries the per-attempt timeout.
func NewClient(httpClient *http.Client, apiKey string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		client:     httpClient,
		geoCircuit: newCircuit("openweather-geocoding"),
		wxCircuit:  newCircuit("openweather-weather"),
		backoff: func(attempt int) time.Duration {
			return backoffPerRetry * time.Duration(attempt+1)
		},
	}
}

func newCircuit(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// Geocode resolves a place name to coordinates, limit 1. A successful lookup
// with zero results returns (nil, nil).
func (c *Client) Geocode(ctx context.Context, query string) (*chatbot.Place, error) {
	values := url.Values{}
	values.Set("q", query)
	values.Set("limit", "1")

	var results []geoEntry
	if err := c.get(ctx, c.geoCircuit, geocodingPath, values, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0].place(), nil
}

// ReverseGeocode resolves coordinates to a display name, limit 1.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*chatbot.Place, error) {
	values := url.Values{}
	values.Set("lat", formatCoord(lat))
	values.Set("lon", formatCoord(lon))
	values.Set("limit", "1")

	var results []geoEntry
	if err := c.get(ctx, c.geoCircuit, reverseGeoPath, values, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0].place(), nil
}

// CurrentWeather fetches current conditions in metric units with Spanish
// descriptions.
func (c *Client) CurrentWeather(ctx context.Context, lat, lon float64) (*chatbot.WeatherPayload, error) {
	values := url.Values{}
	values.Set("lat", formatCoord(lat))
	values.Set("lon", formatCoord(lon))
	values.Set("units", "metric")
	values.Set("lang", "es")

	var payload weatherResponse
	if err := c.get(ctx, c.wxCircuit, currentWxPath, values, &payload); err != nil {
		return nil, err
	}
	return payload.toPayload(), nil
}

// get performs the request with up to maxAttempts tries, a linear backoff
// between them, and the family's circuit breaker around each attempt. The
// final failure surfaces as a chatbot.ServiceError carrying the upstream
// message.
func (c *Client) get(ctx context.Context, cb *gobreaker.CircuitBreaker, path string, values url.Values, out any) error {
	values.Set("appid", c.apiKey)
	endpoint := c.baseURL + path + "?" + values.Encode()

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		body, err := c.doOnce(ctx, cb, endpoint)
		if err == nil {
			return json.Unmarshal(body, out)
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &chatbot.ServiceError{Op: "openweather", Err: fmt.Errorf("%w: %v", errCircuitOpen, err)}
		}

		lastErr = err
		log.Printf("openweather: attempt %d/%d for %s failed: %v", attempt+1, maxAttempts, path, err)

		if attempt < maxAttempts-1 {
			timer := time.NewTimer(c.backoff(attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return &chatbot.ServiceError{
		Op:  "openweather",
		Err: fmt.Errorf("error después de %d intentos: %w", maxAttempts, lastErr),
	}
}

func (c *Client) doOnce(ctx context.Context, cb *gobreaker.CircuitBreaker, endpoint string) ([]byte, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, errors.New(upstreamMessage(body, resp.StatusCode))
		}
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// upstreamMessage extracts the API's error message from a non-200 body.
func upstreamMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fmt.Sprintf("código de estado inesperado: %d", status)
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type geoEntry struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
}

func (g geoEntry) place() *chatbot.Place {
	return &chatbot.Place{
		Name:    g.Name,
		Lat:     g.Lat,
		Lon:     g.Lon,
		Country: g.Country,
	}
}

type weatherResponse struct {
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Wind *struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

func (w weatherResponse) toPayload() *chatbot.WeatherPayload {
	payload := &chatbot.WeatherPayload{}
	for _, cond := range w.Weather {
		payload.Conditions = append(payload.Conditions, chatbot.WeatherCondition{
			Main:        cond.Main,
			Description: cond.Description,
			Icon:        cond.Icon,
		})
	}
	if w.Main != nil {
		payload.Main = &chatbot.WeatherMain{
			Temp:      w.Main.Temp,
			FeelsLike: w.Main.FeelsLike,
			Humidity:  w.Main.Humidity,
			Pressure:  w.Main.Pressure,
		}
	}
	if w.Wind != nil {
		payload.Wind = &chatbot.WeatherWind{Speed: w.Wind.Speed}
	}
	return payload
}
