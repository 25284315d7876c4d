package chatbot

import (
	"strings"
	"time"

	// Embed the tz database so zone loading does not depend on the host.
	_ "time/tzdata"

	"github.com/bradfitz/latlong"
)

// TimezoneInfo holds the derived local-time view for a resolved zone.
type TimezoneInfo struct {
	Zone    string // IANA zone identifier
	Time24  string // "15:04"
	Time12  string // "03:04 p.m."
	Moment  string // "de la mañana" / "de la tarde" / "de la noche"
	Weekday string // Spanish weekday name
}

var weekdaysES = map[time.Weekday]string{
	time.Monday:    "lunes",
	time.Tuesday:   "martes",
	time.Wednesday: "miércoles",
	time.Thursday:  "jueves",
	time.Friday:    "viernes",
	time.Saturday:  "sábado",
	time.Sunday:    "domingo",
}

// ZoneLookupFunc maps coordinates to an IANA zone identifier, returning ""
// when the point falls outside every known zone.
type ZoneLookupFunc func(lat, lon float64) string

// TimezoneResolver picks a time zone for a coordinate and derives the local
// time strings. Countries with a listed representative zone are pinned to it
// regardless of the supplied coordinates.
type TimezoneResolver struct {
	registry *CountryRegistry
	lookup   ZoneLookupFunc
	now      func() time.Time
}

func NewTimezoneResolver(registry *CountryRegistry) *TimezoneResolver {
	return &TimezoneResolver{
		registry: registry,
		lookup:   latlong.LookupZoneName,
		now:      time.Now,
	}
}

// Resolve determines the zone for the given coordinates. When countryHint
// matches a registry entry with zone candidates, the first candidate wins and
// the coordinates are ignored: multi-zone countries (Russia, the US, Brazil,
// Mexico) answer with one representative zone. Everything else, including
// specific cities inside those countries, resolves by coordinates.
func (r *TimezoneResolver) Resolve(lat, lon float64, countryHint string) (*TimezoneInfo, error) {
	zone := ""
	if countryHint != "" {
		if c := r.registry.Lookup(countryHint); c != nil && len(c.Timezones) > 0 {
			zone = c.Timezones[0]
		}
	}
	if zone == "" {
		zone = r.lookup(lat, lon)
	}
	if zone == "" {
		return nil, &ResolutionError{Reason: "no se pudo determinar la zona horaria"}
	}
	return r.localTime(zone)
}

func (r *TimezoneResolver) localTime(zone string) (*TimezoneInfo, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, &ResolutionError{Zone: zone}
	}
	local := r.now().UTC().In(loc)

	return &TimezoneInfo{
		Zone:    zone,
		Time24:  local.Format("15:04"),
		Time12:  time12(local),
		Moment:  moment(local.Hour()),
		Weekday: weekdaysES[local.Weekday()],
	}, nil
}

// OffsetDisplay renders the zone's current UTC offset as "GMT-07:00".
func (r *TimezoneResolver) OffsetDisplay(zone string) (string, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return "", &ResolutionError{Zone: zone}
	}
	offset := r.now().In(loc).Format("-0700")
	return "GMT" + offset[:3] + ":" + offset[3:], nil
}

func time12(t time.Time) string {
	s := strings.ToLower(t.Format("03:04 PM"))
	s = strings.ReplaceAll(s, "pm", "p.m.")
	return strings.ReplaceAll(s, "am", "a.m.")
}

// moment buckets: [5,12) morning, [12,20) afternoon, else night.
func moment(hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return "de la mañana"
	case hour >= 12 && hour < 20:
		return "de la tarde"
	default:
		return "de la noche"
	}
}
