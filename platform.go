package mangaingest

import "strings"

// Platform identifies the source site that owns a series.
type Platform string

// Supported platforms.
const (
	PlatformAsheq    Platform = "ASHEQ"
	PlatformAres     Platform = "ARES"
	PlatformAzora    Platform = "AZORA"
	PlatformHijala   Platform = "HIJALA"
	PlatformRocks    Platform = "ROCKS"
	PlatformLekmanga Platform = "LEKMANGA"
)

// DefaultPlatform is used when a request does not name a platform.
const DefaultPlatform = PlatformAsheq

// Platforms returns every known platform in declaration order.
func Platforms() []Platform {
	return []Platform{
		PlatformAsheq,
		PlatformAres,
		PlatformAzora,
		PlatformHijala,
		PlatformRocks,
		PlatformLekmanga,
	}
}

// ParsePlatform converts a case-insensitive name into a Platform.
// An empty name yields DefaultPlatform.
func ParsePlatform(s string) (Platform, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPlatform, nil
	}
	p := Platform(strings.ToUpper(s))
	if !p.Valid() {
		return "", Errorf(EUNSUPPORTED, "unsupported platform %q", s)
	}
	return p, nil
}

// Valid reports whether p is one of the known platforms.
func (p Platform) Valid() bool {
	for _, known := range Platforms() {
		if p == known {
			return true
		}
	}
	return false
}

func (p Platform) String() string {
	return string(p)
}

// UnmarshalText normalizes the name to upper case. Unknown names are kept so
// that request validation can report them.
func (p *Platform) UnmarshalText(text []byte) error {
	*p = Platform(strings.ToUpper(strings.TrimSpace(string(text))))
	return nil
}
