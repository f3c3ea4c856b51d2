package vpn

import (
	"fmt"
	"strings"

	"github.com/yllada/mullvadctl/common"
)

// ErrInvalidLocation is returned for relay selections that cannot be represented.
var ErrInvalidLocation = common.ErrInvalidLocation

type locationKind int

const (
	kindNone locationKind = iota
	kindCountry
	kindCity
	kindServer
)

// Location is a relay selection of increasing specificity: a country,
// a city within a country, or a server within a city. A server without
// a city cannot be constructed. The zero value selects nothing.
type Location struct {
	kind    locationKind
	country string
	city    string
	server  string
}

// CountryOnly selects any relay in country.
func CountryOnly(country string) Location {
	return Location{kind: kindCountry, country: country}
}

// CountryCity selects any relay in city.
func CountryCity(country, city string) Location {
	return Location{kind: kindCity, country: country, city: city}
}

// CountryCityServer selects one server.
func CountryCityServer(country, city, server string) Location {
	return Location{kind: kindServer, country: country, city: city, server: server}
}

// ParseLocation builds a Location from loose input, choosing the most
// specific shape the fields allow. A server without a city is rejected
// instead of being silently widened to the country.
func ParseLocation(country, city, server string) (Location, error) {
	country = strings.TrimSpace(country)
	city = strings.TrimSpace(city)
	server = strings.TrimSpace(server)

	switch {
	case country == "":
		return Location{}, fmt.Errorf("%w: country is required", ErrInvalidLocation)
	case server != "" && city == "":
		return Location{}, fmt.Errorf("%w: server %q requires a city", ErrInvalidLocation, server)
	case server != "":
		return CountryCityServer(country, city, server), nil
	case city != "":
		return CountryCity(country, city), nil
	default:
		return CountryOnly(country), nil
	}
}

// IsZero reports whether the location selects nothing.
func (l Location) IsZero() bool {
	return l.kind == kindNone
}

// Country returns the country code.
func (l Location) Country() string { return l.country }

// City returns the city code, or "" for a country-only selection.
func (l Location) City() string { return l.city }

// Server returns the server hostname, or "" unless one server is selected.
func (l Location) Server() string { return l.server }

// Args returns the positional arguments for `relay set location`.
func (l Location) Args() []string {
	switch l.kind {
	case kindCountry:
		return []string{l.country}
	case kindCity:
		return []string{l.country, l.city}
	case kindServer:
		return []string{l.country, l.city, l.server}
	default:
		return nil
	}
}

// String returns the arguments joined by spaces, e.g. "se got se-got-wg-001".
func (l Location) String() string {
	if l.IsZero() {
		return "<none>"
	}
	return strings.Join(l.Args(), " ")
}
