// Package model contains the value types exchanged with the host runtime.
//
// Every structured record has a canonical JSON form. Decoding is strict about
// the identifying fields (provider, ids) because the text comes from outside
// the process.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Provider identifies the external service an event originated from.
// The integer value is the stable wire encoding.
type Provider int

// Known providers.
const (
	Facebook Provider = iota
	Foursquare
	Google
	LinkedIn
	Myspace
	Twitter
	Yahoo
	Salesforce
	Yelp
	Orkut
	Renren
	Vkontakte
	GameCenter
	GooglePlay
)

var providerNames = [...]string{
	Facebook:   "facebook",
	Foursquare: "foursquare",
	Google:     "google",
	LinkedIn:   "linkedin",
	Myspace:    "myspace",
	Twitter:    "twitter",
	Yahoo:      "yahoo",
	Salesforce: "salesforce",
	Yelp:       "yelp",
	Orkut:      "orkut",
	Renren:     "renren",
	Vkontakte:  "vkontakte",
	GameCenter: "game_center",
	GooglePlay: "google_play",
}

// Providers returns every known provider in value order.
func Providers() []Provider {
	out := make([]Provider, len(providerNames))
	for i := range providerNames {
		out[i] = Provider(i)
	}
	return out
}

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	return p >= 0 && int(p) < len(providerNames)
}

// String returns the provider name, or "provider(N)" for unknown values.
func (p Provider) String() string {
	if !p.Valid() {
		return "provider(" + strconv.Itoa(int(p)) + ")"
	}
	return providerNames[p]
}

// ParseProvider resolves a provider from its name (case-insensitive) or its
// decimal value. Unknown input returns an error wrapping ErrUnknownProvider.
func ParseProvider(s string) (Provider, error) {
	v := strings.TrimSpace(s)
	if n, err := strconv.Atoi(v); err == nil {
		p := Provider(n)
		if !p.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrUnknownProvider, s)
		}
		return p, nil
	}
	for i, name := range providerNames {
		if strings.EqualFold(name, v) {
			return Provider(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownProvider, s)
}

// MarshalJSON encodes the provider as its decimal value in a JSON string.
func (p Provider) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownProvider, int(p))
	}
	return json.Marshal(strconv.Itoa(int(p)))
}

// UnmarshalJSON accepts a JSON number or a string holding a name or a number.
func (p *Provider) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: %s", ErrUnknownProvider, data)
		}
		s = strconv.Itoa(n)
	}
	v, err := ParseProvider(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}
