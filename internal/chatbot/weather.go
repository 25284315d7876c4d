package chatbot

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Coordinates is a validated lat/lon pair. Both fields are always set
// together; no partial pair flows through the pipeline.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// WeatherPayload is the raw shape handed over by the weather client. Main is
// a pointer so a missing block is distinguishable from zero values.
type WeatherPayload struct {
	Conditions []WeatherCondition
	Main       *WeatherMain
	Wind       *WeatherWind
}

type WeatherCondition struct {
	Main        string
	Description string
	Icon        string
}

type WeatherMain struct {
	Temp      float64
	FeelsLike float64
	Humidity  int
	Pressure  int
}

type WeatherWind struct {
	Speed float64 // m/s
}

// WeatherResult is the structured reply for a weather lookup, local-time
// fields merged in.
type WeatherResult struct {
	Location    string      `json:"location"`
	Coordinates Coordinates `json:"coordinates"`
	Temp        float64     `json:"temp"`
	FeelsLike   float64     `json:"feels_like"`
	Humidity    int         `json:"humidity"`
	WindSpeed   float64     `json:"wind_speed"` // km/h
	Pressure    int         `json:"pressure"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Time        string      `json:"time"`
	Moment      string      `json:"moment"`
	Weekday     string      `json:"weekday"`
}

// weatherIcons maps the first two characters of an OpenWeather icon code to a
// glyph. Unknown codes fall back to iconDefault.
var weatherIcons = map[string]string{
	"01": "☀️",
	"02": "⛅",
	"03": "☁️",
	"04": "☁️",
	"09": "🌧️",
	"10": "🌦️",
	"11": "⛈️",
	"13": "❄️",
	"50": "🌫️",
}

const iconDefault = "🌤️"

// FormatWeather combines a raw payload with resolved local time into a
// WeatherResult. tzInfo may be nil; the time fields then degrade to
// placeholders rather than failing the whole reply.
func FormatWeather(payload *WeatherPayload, tzInfo *TimezoneInfo, locationLabel string, coords Coordinates) (*WeatherResult, error) {
	if payload == nil || payload.Main == nil {
		return nil, errors.New("respuesta del clima malformada: falta el bloque principal")
	}
	if len(payload.Conditions) == 0 {
		return nil, errors.New("respuesta del clima malformada: sin condiciones")
	}
	cond := payload.Conditions[0]

	windMS := 0.0
	if payload.Wind != nil {
		windMS = payload.Wind.Speed
	}

	description := capitalize(cond.Description)
	if description == "" {
		description = translateCondition(cond.Main)
	}

	result := &WeatherResult{
		Location:    locationLabel,
		Coordinates: coords,
		Temp:        round1(payload.Main.Temp),
		FeelsLike:   round1(payload.Main.FeelsLike),
		Humidity:    payload.Main.Humidity,
		WindSpeed:   round1(windMS * 3.6),
		Pressure:    payload.Main.Pressure,
		Description: description,
		Icon:        iconGlyph(cond.Icon),
		Time:        "--:--",
	}
	if tzInfo != nil {
		result.Time = tzInfo.Time24
		result.Moment = tzInfo.Moment
		result.Weekday = tzInfo.Weekday
	}
	return result, nil
}

// RenderWeatherText renders the human-readable reply for a WeatherResult.
func RenderWeatherText(w *WeatherResult) string {
	return fmt.Sprintf(
		"%s *%s*\n\n"+
			"🌡️ Temperatura: %.1f°C\n"+
			"🤔 Sensación térmica: %.1f°C\n"+
			"💧 Humedad: %d%%\n"+
			"💨 Viento: %.1f km/h\n"+
			"📝 Condición: %s\n"+
			"🕒 Hora local: %s",
		w.Icon, w.Location, w.Temp, w.FeelsLike, w.Humidity, w.WindSpeed, w.Description, w.Time,
	)
}

func iconGlyph(code string) string {
	if len(code) >= 2 {
		if glyph, ok := weatherIcons[code[:2]]; ok {
			return glyph
		}
	}
	return iconDefault
}

func translateCondition(main string) string {
	if es, ok := conditionTranslations[strings.ToLower(main)]; ok {
		return es
	}
	return capitalize(main)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
