package chatbot

import (
	"fmt"
	"strings"
	"testing"
)

func samplePayload() *WeatherPayload {
	return &WeatherPayload{
		Conditions: []WeatherCondition{{Main: "Clouds", Description: "nubes dispersas", Icon: "03d"}},
		Main:       &WeatherMain{Temp: 21.456, FeelsLike: 20.04, Humidity: 65, Pressure: 1013},
		Wind:       &WeatherWind{Speed: 10},
	}
}

func sampleTZ() *TimezoneInfo {
	return &TimezoneInfo{
		Zone:    "Europe/Madrid",
		Time24:  "18:45",
		Time12:  "06:45 p.m.",
		Moment:  "de la tarde",
		Weekday: "lunes",
	}
}

func TestFormatWeather(t *testing.T) {
	got, err := FormatWeather(samplePayload(), sampleTZ(), "Madrid, ES", Coordinates{Lat: 40.41, Lon: -3.70})
	if err != nil {
		t.Fatalf("FormatWeather returned error: %v", err)
	}

	if got.Temp != 21.5 {
		t.Errorf("Temp = %v, want 21.5", got.Temp)
	}
	if got.FeelsLike != 20.0 {
		t.Errorf("FeelsLike = %v, want 20.0", got.FeelsLike)
	}
	// 10 m/s converts to exactly 36.0 km/h.
	if got.WindSpeed != 36.0 {
		t.Errorf("WindSpeed = %v, want 36.0", got.WindSpeed)
	}
	if got.Description != "Nubes dispersas" {
		t.Errorf("Description = %q, want capitalized", got.Description)
	}
	if got.Icon != "☁️" {
		t.Errorf("Icon = %q, want ☁️", got.Icon)
	}
	if got.Time != "18:45" || got.Moment != "de la tarde" || got.Weekday != "lunes" {
		t.Errorf("timezone fields not merged: %+v", got)
	}
	if got.Location != "Madrid, ES" {
		t.Errorf("Location = %q", got.Location)
	}
}

func TestFormatWeather_MissingMainIsError(t *testing.T) {
	payload := samplePayload()
	payload.Main = nil
	if _, err := FormatWeather(payload, sampleTZ(), "x", Coordinates{}); err == nil {
		t.Fatal("missing main block: want error")
	}
}

func TestFormatWeather_NoConditionsIsError(t *testing.T) {
	payload := samplePayload()
	payload.Conditions = nil
	if _, err := FormatWeather(payload, sampleTZ(), "x", Coordinates{}); err == nil {
		t.Fatal("empty conditions: want error")
	}
}

func TestFormatWeather_MissingWindDefaultsToZero(t *testing.T) {
	payload := samplePayload()
	payload.Wind = nil
	got, err := FormatWeather(payload, sampleTZ(), "x", Coordinates{})
	if err != nil {
		t.Fatalf("FormatWeather returned error: %v", err)
	}
	if got.WindSpeed != 0 {
		t.Errorf("WindSpeed = %v, want 0", got.WindSpeed)
	}
}

func TestFormatWeather_NilTimezonePlaceholders(t *testing.T) {
	got, err := FormatWeather(samplePayload(), nil, "x", Coordinates{})
	if err != nil {
		t.Fatalf("FormatWeather returned error: %v", err)
	}
	if got.Time != "--:--" {
		t.Errorf("Time = %q, want --:--", got.Time)
	}
	if got.Moment != "" || got.Weekday != "" {
		t.Errorf("Moment/Weekday = %q/%q, want empty", got.Moment, got.Weekday)
	}
}

func TestFormatWeather_TranslatesWhenDescriptionEmpty(t *testing.T) {
	payload := samplePayload()
	payload.Conditions[0].Description = ""
	payload.Conditions[0].Main = "Thunderstorm"
	got, err := FormatWeather(payload, sampleTZ(), "x", Coordinates{})
	if err != nil {
		t.Fatalf("FormatWeather returned error: %v", err)
	}
	if got.Description != "Tormenta" {
		t.Errorf("Description = %q, want Tormenta", got.Description)
	}
}

func TestIconGlyph(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"01d", "☀️"},
		{"01n", "☀️"},
		{"10d", "🌦️"},
		{"13n", "❄️"},
		{"50d", "🌫️"},
		{"99x", iconDefault},
		{"", iconDefault},
		{"0", iconDefault},
	}
	for _, tt := range tests {
		if got := iconGlyph(tt.code); got != tt.want {
			t.Errorf("iconGlyph(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

// The rendered text must carry the rounded temperature verbatim so it can be
// parsed back from the reply.
func TestRenderWeatherText_FormatStability(t *testing.T) {
	result, err := FormatWeather(samplePayload(), sampleTZ(), "Madrid, ES", Coordinates{})
	if err != nil {
		t.Fatalf("FormatWeather returned error: %v", err)
	}
	text := RenderWeatherText(result)

	wantTemp := fmt.Sprintf("Temperatura: %.1f°C", result.Temp)
	if !strings.Contains(text, wantTemp) {
		t.Errorf("rendered text missing %q:\n%s", wantTemp, text)
	}
	if !strings.Contains(text, "Viento: 36.0 km/h") {
		t.Errorf("rendered text missing wind:\n%s", text)
	}
	if !strings.Contains(text, "*Madrid, ES*") {
		t.Errorf("rendered text missing location:\n%s", text)
	}
	if !strings.Contains(text, "Hora local: 18:45") {
		t.Errorf("rendered text missing local time:\n%s", text)
	}
}

func TestRound1(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{36.0, 36.0},
		{21.449, 21.4},
		{21.46, 21.5},
		{-3.14, -3.1},
	}
	for _, tt := range tests {
		if got := round1(tt.in); got != tt.want {
			t.Errorf("round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
