package chatbot

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/i474232898/weather-chatbot/internal/cache"
)

// Fixed conversational replies.
const (
	msgWelcome = "¡Hola! Soy tu asistente de clima y hora. " +
		"Puedes preguntarme por el clima o la hora en cualquier ciudad o país del mundo. " +
		"¿En qué puedo ayudarte hoy?"
	msgAskWeatherPlace = "¿De qué ciudad o país te gustaría saber el clima? " +
		"Por ejemplo: '¿Qué clima hace en París?'"
	msgAskTimePlace = "¿De qué ciudad o país te gustaría saber la hora? " +
		"Por ejemplo: '¿Qué hora es en Tokio?'"
	msgUnclear = "No estoy seguro de qué necesitas. " +
		"¿Te gustaría saber el clima o la hora en alguna ciudad o país?"
)

// Place is a geocoding result: display name, coordinates and ISO country code.
type Place struct {
	Name    string
	Lat     float64
	Lon     float64
	Country string
}

// GeoClient is the outbound collaborator the router depends on. Geocode and
// ReverseGeocode return (nil, nil) when the lookup succeeds but finds nothing.
type GeoClient interface {
	Geocode(ctx context.Context, query string) (*Place, error)
	ReverseGeocode(ctx context.Context, lat, lon float64) (*Place, error)
	CurrentWeather(ctx context.Context, lat, lon float64) (*WeatherPayload, error)
}

// TimeResult is the structured reply for a time lookup.
type TimeResult struct {
	Type            string `json:"type"`
	Location        string `json:"location"`
	Timezone        string `json:"timezone"`
	TimezoneDisplay string `json:"timezone_display"`
	Time            string `json:"time"`
	Time12          string `json:"time_12"`
	Moment          string `json:"moment"`
	Weekday         string `json:"weekday"`
}

// Reply is what a processed message produces: either plain text or a
// structured payload.
type Reply struct {
	Text    string
	Time    *TimeResult
	Weather *WeatherResult
}

// Payload returns the value to serialize for the client.
func (r Reply) Payload() any {
	switch {
	case r.Time != nil:
		return r.Time
	case r.Weather != nil:
		return r.Weather
	default:
		return r.Text
	}
}

// Bot routes a message through intent extraction to the weather or time
// pipeline. Safe for concurrent use; the only mutable state is the bounded
// time memo.
type Bot struct {
	registry  *CountryRegistry
	extractor *IntentExtractor
	geo       GeoClient
	tz        *TimezoneResolver
	timeMemo  *cache.Memo[TimeResult]
}

func NewBot(registry *CountryRegistry, geo GeoClient, tz *TimezoneResolver, timeMemo *cache.Memo[TimeResult]) *Bot {
	return &Bot{
		registry:  registry,
		extractor: NewIntentExtractor(registry),
		geo:       geo,
		tz:        tz,
		timeMemo:  timeMemo,
	}
}

// ProcessMessage handles one conversational message. Every failure is turned
// into a user-facing Spanish sentence; the reply is always usable.
func (b *Bot) ProcessMessage(ctx context.Context, message string) Reply {
	ent := b.extractor.Extract(message)

	// A greeting wins over everything else.
	if ent.IsGreeting {
		return Reply{Text: msgWelcome}
	}

	if ent.Location == "" {
		switch {
		case ent.IsWeather:
			return Reply{Text: msgAskWeatherPlace}
		case ent.IsTime:
			return Reply{Text: msgAskTimePlace}
		default:
			return Reply{Text: msgUnclear}
		}
	}

	switch {
	case ent.IsWeather:
		text, err := b.CurrentWeatherText(ctx, ent.Location)
		if err != nil {
			return Reply{Text: weatherErrorText(ent.Location, err)}
		}
		return Reply{Text: text}
	case ent.IsTime:
		res, err := b.CityTime(ctx, ent.Location)
		if err != nil {
			log.Printf("time lookup failed for %q: %v", ent.Location, err)
			var nf *NotFoundError
			if errors.As(err, &nf) {
				return Reply{Text: capitalize(nf.Error())}
			}
			return Reply{Text: fmt.Sprintf("Lo siento, ocurrió un error al obtener la hora para %s", ent.Location)}
		}
		return Reply{Time: res}
	default:
		return Reply{Text: fmt.Sprintf("¿Te gustaría saber el clima o la hora en %s?", ent.Location)}
	}
}

// CurrentWeatherText resolves a place mention to coordinates and renders the
// current conditions reply.
func (b *Bot) CurrentWeatherText(ctx context.Context, location string) (string, error) {
	query := b.resolvePlaceQuery(location)

	place, err := b.geo.Geocode(ctx, query)
	if err != nil {
		return "", err
	}
	if place == nil {
		return "", &NotFoundError{Location: location}
	}

	result, err := b.WeatherByCoordinates(ctx, place.Lat, place.Lon)
	if err != nil {
		return "", err
	}
	return RenderWeatherText(result), nil
}

// WeatherByCoordinates fetches current conditions for a validated coordinate
// pair and merges in the reverse-geocoded name and local time.
func (b *Bot) WeatherByCoordinates(ctx context.Context, lat, lon float64) (*WeatherResult, error) {
	payload, err := b.geo.CurrentWeather(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	label := "Ubicación"
	isoCode := ""
	if place, err := b.geo.ReverseGeocode(ctx, lat, lon); err != nil {
		log.Printf("reverse geocoding failed for %.4f,%.4f: %v", lat, lon, err)
	} else if place != nil {
		label = place.Name
		isoCode = place.Country
		if isoCode != "" {
			label += ", " + isoCode
		}
	}

	tzInfo, err := b.tz.Resolve(lat, lon, "")
	if err != nil {
		// Degrade to placeholder time fields rather than losing the weather.
		log.Printf("timezone resolution failed for %.4f,%.4f: %v", lat, lon, err)
		tzInfo = nil
	}

	result, err := FormatWeather(payload, tzInfo, label, Coordinates{Lat: lat, Lon: lon})
	if err != nil {
		return nil, &ServiceError{Op: "clima", Err: err}
	}
	return result, nil
}

// CityTime answers the local time for a city or country mention. Results are
// memoized per normalized mention in a bounded LRU with a short TTL.
func (b *Bot) CityTime(ctx context.Context, city string) (*TimeResult, error) {
	key := Normalize(city)
	if cached, ok := b.timeMemo.Get(key); ok {
		return &cached, nil
	}

	query := city
	isoCode := ""
	if c := b.registry.Lookup(city); c != nil {
		query = c.Capital
		isoCode = c.ISOCode
	} else if pinned := b.registry.SpecialCityQuery(city); pinned != "" {
		query = pinned
	}

	place, err := b.geo.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, &NotFoundError{Location: city}
	}

	tzInfo, err := b.tz.Resolve(place.Lat, place.Lon, key)
	if err != nil {
		return nil, err
	}

	display, err := b.tz.OffsetDisplay(tzInfo.Zone)
	if err != nil {
		return nil, err
	}

	label := place.Name
	if isoCode != "" {
		label += ", " + isoCode
	}

	result := TimeResult{
		Type:            "time",
		Location:        label,
		Timezone:        tzInfo.Zone,
		TimezoneDisplay: display,
		Time:            tzInfo.Time24,
		Time12:          tzInfo.Time12,
		Moment:          tzInfo.Moment,
		Weekday:         tzInfo.Weekday,
	}
	b.timeMemo.Add(key, result)
	return &result, nil
}

// resolvePlaceQuery maps a country mention to its capital and a well-known
// foreign city spelling to its pinned query; anything else passes through.
func (b *Bot) resolvePlaceQuery(location string) string {
	if c := b.registry.Lookup(location); c != nil {
		return c.Capital
	}
	if pinned := b.registry.SpecialCityQuery(location); pinned != "" {
		return pinned
	}
	return location
}

func weatherErrorText(location string, err error) string {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return capitalize(nf.Error())
	}
	var se *ServiceError
	if errors.As(err, &se) {
		return fmt.Sprintf("Error al obtener el clima: %v", se.Err)
	}
	log.Printf("unexpected weather error for %q: %v", location, err)
	return "Lo siento, ha ocurrido un error al obtener el clima."
}
