package gantt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// instantLayouts are the accepted zone-less layouts, tried in order.
// Zone-less values are interpreted in the location passed to Resolve.
// Fractional seconds are accepted after any seconds field.
var instantLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Instant is a task boundary: either a resolved time or the raw string it
// was read from. The zero Instant is "unset".
type Instant struct {
	t   time.Time
	raw string
}

// At returns an Instant for an already parsed time.
func At(t time.Time) Instant { return Instant{t: t} }

// ParseInstant returns an Instant that resolves s lazily.
// Whitespace around s is ignored.
func ParseInstant(s string) Instant { return Instant{raw: strings.TrimSpace(s)} }

// IsZero reports whether the instant is unset.
func (i Instant) IsZero() bool { return i.raw == "" && i.t.IsZero() }

// Raw returns the string the instant was decoded from, if any.
func (i Instant) Raw() string { return i.raw }

// Resolve converts the instant to a time. Zone-less strings are interpreted
// in loc; a nil loc means UTC.
func (i Instant) Resolve(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if i.raw == "" {
		if i.t.IsZero() {
			return time.Time{}, fmt.Errorf("instant is not set")
		}
		return i.t, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, i.raw); err == nil {
		return t, nil
	}
	for _, layout := range instantLayouts {
		if t, err := time.ParseInLocation(layout, i.raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a time", i.raw)
}

// String returns the raw form, or the RFC 3339 form of a resolved time.
func (i Instant) String() string {
	if i.raw != "" {
		return i.raw
	}
	if i.t.IsZero() {
		return ""
	}
	return i.t.Format(time.RFC3339Nano)
}

// MarshalText implements encoding.TextMarshaler.
func (i Instant) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Instant) UnmarshalText(text []byte) error {
	*i = ParseInstant(string(text))
	return nil
}

// MarshalJSON writes the instant as a string, or null when unset.
func (i Instant) MarshalJSON() ([]byte, error) {
	if i.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(i.String())
}

// UnmarshalJSON accepts a string or a number of Unix milliseconds.
func (i *Instant) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*i = Instant{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*i = ParseInstant(s)
		return nil
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("instant must be a string or unix milliseconds: %s", data)
	}
	*i = At(time.UnixMilli(ms).UTC())
	return nil
}

// tomlLocalZones are the locations the TOML decoder attaches to local
// date-times, dates and times that were written without an offset.
var tomlLocalZones = map[string]bool{
	"datetime-local": true,
	"date-local":     true,
	"time-local":     true,
}

var _ toml.Unmarshaler = (*Instant)(nil)

// UnmarshalTOML accepts quoted strings and native TOML date-times. Native
// values written without an offset stay zone-less.
func (i *Instant) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*i = ParseInstant(v)
	case time.Time:
		if tomlLocalZones[v.Location().String()] {
			*i = ParseInstant(v.Format("2006-01-02T15:04:05.999999999"))
			return nil
		}
		*i = At(v)
	case int64:
		*i = At(time.UnixMilli(v).UTC())
	default:
		return fmt.Errorf("instant must be a string or date-time, got %T", v)
	}
	return nil
}

// MarshalYAML writes the instant as a plain string.
func (i Instant) MarshalYAML() (any, error) { return i.String(), nil }

// UnmarshalYAML keeps the scalar text as written, so that YAML's own
// timestamp resolution does not apply a zone to zone-less values.
func (i *Instant) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: instant must be a scalar", value.Line)
	}
	*i = ParseInstant(value.Value)
	return nil
}
