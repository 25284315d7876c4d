package chatbot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/weather-chatbot/internal/cache"
)

// fakeGeo is a scriptable GeoClient that counts calls.
type fakeGeo struct {
	geocodeCalls int
	place        *Place
	geocodeErr   error

	reversePlace *Place
	reverseErr   error

	payload    *WeatherPayload
	weatherErr error
}

func (f *fakeGeo) Geocode(ctx context.Context, query string) (*Place, error) {
	f.geocodeCalls++
	return f.place, f.geocodeErr
}

func (f *fakeGeo) ReverseGeocode(ctx context.Context, lat, lon float64) (*Place, error) {
	return f.reversePlace, f.reverseErr
}

func (f *fakeGeo) CurrentWeather(ctx context.Context, lat, lon float64) (*WeatherPayload, error) {
	return f.payload, f.weatherErr
}

func newTestBot(t *testing.T, geo GeoClient) *Bot {
	t.Helper()
	registry := NewCountryRegistry()
	tz := NewTimezoneResolver(registry)
	tz.now = func() time.Time { return time.Date(2024, 3, 4, 18, 30, 0, 0, time.UTC) }
	tz.lookup = func(lat, lon float64) string { return "Europe/Madrid" }
	return NewBot(registry, geo, tz, cache.New[TimeResult](8, time.Minute))
}

// A greeting must short-circuit even when other intents and a location are
// present; no network calls happen.
func TestProcessMessage_GreetingShortCircuits(t *testing.T) {
	geo := &fakeGeo{geocodeErr: errors.New("must not be called")}
	bot := newTestBot(t, geo)

	reply := bot.ProcessMessage(context.Background(), "Hola, ¿qué clima hace en España?")
	if reply.Text != msgWelcome {
		t.Errorf("reply = %q, want welcome message", reply.Text)
	}
	if geo.geocodeCalls != 0 {
		t.Errorf("geocode called %d times, want 0", geo.geocodeCalls)
	}
}

func TestProcessMessage_ClarifyingPrompts(t *testing.T) {
	bot := newTestBot(t, &fakeGeo{})

	tests := []struct {
		msg  string
		want string
	}{
		{"clima", msgAskWeatherPlace},
		{"hora", msgAskTimePlace},
		{"xyzzy", msgUnclear},
	}
	for _, tt := range tests {
		reply := bot.ProcessMessage(context.Background(), tt.msg)
		if reply.Text != tt.want {
			t.Errorf("ProcessMessage(%q) = %q, want %q", tt.msg, reply.Text, tt.want)
		}
	}
}

func TestProcessMessage_LocationWithoutIntent(t *testing.T) {
	bot := newTestBot(t, &fakeGeo{})

	reply := bot.ProcessMessage(context.Background(), "chile")
	want := "¿Te gustaría saber el clima o la hora en chile?"
	if reply.Text != want {
		t.Errorf("reply = %q, want %q", reply.Text, want)
	}
}

func TestProcessMessage_WeatherPipeline(t *testing.T) {
	geo := &fakeGeo{
		place:        &Place{Name: "Madrid", Lat: 40.41, Lon: -3.70, Country: "ES"},
		reversePlace: &Place{Name: "Madrid", Country: "ES"},
		payload: &WeatherPayload{
			Conditions: []WeatherCondition{{Description: "cielo claro", Icon: "01d"}},
			Main:       &WeatherMain{Temp: 25.0, FeelsLike: 24.0, Humidity: 40, Pressure: 1015},
			Wind:       &WeatherWind{Speed: 5},
		},
	}
	bot := newTestBot(t, geo)

	reply := bot.ProcessMessage(context.Background(), "¿qué clima hace en españa?")
	if reply.Text == "" || reply.Time != nil {
		t.Fatalf("want text reply, got %+v", reply)
	}
	for _, want := range []string{"*Madrid, ES*", "Temperatura: 25.0°C", "Viento: 18.0 km/h", "Cielo claro"} {
		if !strings.Contains(reply.Text, want) {
			t.Errorf("reply missing %q:\n%s", want, reply.Text)
		}
	}
}

func TestProcessMessage_WeatherNotFound(t *testing.T) {
	bot := newTestBot(t, &fakeGeo{}) // geocode returns nil place

	reply := bot.ProcessMessage(context.Background(), "clima en xyzville")
	if !strings.Contains(reply.Text, "No pude encontrar la ubicación: xyzville") {
		t.Errorf("reply = %q, want not-found message", reply.Text)
	}
}

func TestProcessMessage_WeatherServiceError(t *testing.T) {
	geo := &fakeGeo{geocodeErr: &ServiceError{Op: "openweather", Err: errors.New("boom")}}
	bot := newTestBot(t, geo)

	reply := bot.ProcessMessage(context.Background(), "clima en chile")
	if !strings.Contains(reply.Text, "Error al obtener el clima") {
		t.Errorf("reply = %q, want service error message", reply.Text)
	}
}

func TestProcessMessage_TimePipeline(t *testing.T) {
	geo := &fakeGeo{place: &Place{Name: "Moscú", Lat: 55.75, Lon: 37.61, Country: "RU"}}
	bot := newTestBot(t, geo)

	reply := bot.ProcessMessage(context.Background(), "¿qué hora es en rusia?")
	if reply.Time == nil {
		t.Fatalf("want structured time reply, got %+v", reply)
	}
	if reply.Time.Timezone != "Europe/Moscow" {
		t.Errorf("Timezone = %q, want pinned Europe/Moscow", reply.Time.Timezone)
	}
	if reply.Time.Location != "Moscú, RU" {
		t.Errorf("Location = %q, want Moscú, RU", reply.Time.Location)
	}
	if reply.Time.Type != "time" {
		t.Errorf("Type = %q, want time", reply.Time.Type)
	}
	// 18:30 UTC is 21:30 in Moscow.
	if reply.Time.Time != "21:30" {
		t.Errorf("Time = %q, want 21:30", reply.Time.Time)
	}
	if reply.Time.TimezoneDisplay != "GMT+03:00" {
		t.Errorf("TimezoneDisplay = %q, want GMT+03:00", reply.Time.TimezoneDisplay)
	}
}

// Repeated time lookups for the same mention answer from the memo.
func TestCityTime_Memoized(t *testing.T) {
	geo := &fakeGeo{place: &Place{Name: "Santiago", Lat: -33.45, Lon: -70.66, Country: "CL"}}
	bot := newTestBot(t, geo)

	first, err := bot.CityTime(context.Background(), "chile")
	if err != nil {
		t.Fatalf("CityTime returned error: %v", err)
	}
	second, err := bot.CityTime(context.Background(), "Chile")
	if err != nil {
		t.Fatalf("CityTime returned error: %v", err)
	}
	if geo.geocodeCalls != 1 {
		t.Errorf("geocode called %d times, want 1 (second hit cached)", geo.geocodeCalls)
	}
	if *first != *second {
		t.Errorf("cached result differs: %+v vs %+v", first, second)
	}
}

// A city mention inside a multi-zone country resolves by its coordinates;
// the country's representative zone applies only to country mentions.
func TestCityTime_RawCityInMultiZoneCountry(t *testing.T) {
	geo := &fakeGeo{place: &Place{Name: "Los Ángeles", Lat: 34.05, Lon: -118.24, Country: "US"}}
	bot := newTestBot(t, geo)
	bot.tz.lookup = func(lat, lon float64) string { return "America/Los_Angeles" }

	res, err := bot.CityTime(context.Background(), "los angeles")
	if err != nil {
		t.Fatalf("CityTime returned error: %v", err)
	}
	if res.Timezone != "America/Los_Angeles" {
		t.Errorf("Timezone = %q, want America/Los_Angeles", res.Timezone)
	}
	// 18:30 UTC is 10:30 PST.
	if res.Time != "10:30" {
		t.Errorf("Time = %q, want 10:30", res.Time)
	}
	if res.TimezoneDisplay != "GMT-08:00" {
		t.Errorf("TimezoneDisplay = %q, want GMT-08:00", res.TimezoneDisplay)
	}
	if res.Location != "Los Ángeles" {
		t.Errorf("Location = %q, want city name without country code", res.Location)
	}
}

func TestWeatherByCoordinates_TimezoneFailureDegrades(t *testing.T) {
	geo := &fakeGeo{
		reversePlace: &Place{Name: "Algún Lugar", Country: ""},
		payload: &WeatherPayload{
			Conditions: []WeatherCondition{{Description: "lluvia", Icon: "10d"}},
			Main:       &WeatherMain{Temp: 10, FeelsLike: 8, Humidity: 90, Pressure: 1000},
		},
	}
	bot := newTestBot(t, geo)
	bot.tz.lookup = func(lat, lon float64) string { return "" }

	result, err := bot.WeatherByCoordinates(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("WeatherByCoordinates returned error: %v", err)
	}
	if result.Time != "--:--" {
		t.Errorf("Time = %q, want placeholder", result.Time)
	}
	if result.Location != "Algún Lugar" {
		t.Errorf("Location = %q, want reverse-geocoded name without code", result.Location)
	}
}

func TestReplyPayload(t *testing.T) {
	if got := (Reply{Text: "hola"}).Payload(); got != "hola" {
		t.Errorf("Payload() = %v, want text", got)
	}
	tr := &TimeResult{Type: "time"}
	if got := (Reply{Time: tr}).Payload(); got != any(tr) {
		t.Errorf("Payload() = %v, want time result", got)
	}
}
