package routing

import (
	"net/url"
	"strings"
)

// Fragment constants of the client-side location scheme.
const (
	HomeFragment      = "#/"
	DashboardFragment = "#/dashboard"
	PublicPrefix      = "#/u/"
)

// Kind is the closed set of route kinds a fragment can resolve to.
type Kind int

const (
	KindHome Kind = iota
	KindDashboard
	KindPublicProfile
	KindUnrecognized
)

func (k Kind) String() string {
	switch k {
	case KindHome:
		return "home"
	case KindDashboard:
		return "dashboard"
	case KindPublicProfile:
		return "public_profile"
	default:
		return "unrecognized"
	}
}

// Route is the parsed form of a location fragment.
type Route struct {
	Kind Kind
	// Path is the fragment before the first '?', exactly as given.
	Path string
	// RawQuery is the fragment after the first '?', without the '?'.
	RawQuery string
	// ProfileID is set for KindPublicProfile: everything after "#/u/".
	ProfileID string
	// Preview is true only when the last "preview" query value is "true".
	Preview bool
}

// Parse splits fragment on the first '?' and classifies the path.
// Matching is exact for the dashboard and a plain prefix test for public
// profiles; trailing slashes are not normalized.
func Parse(fragment string) Route {
	path, rawQuery, _ := strings.Cut(fragment, "?")
	if path == "" || path == "#" {
		path = HomeFragment
	}

	r := Route{Path: path, RawQuery: rawQuery}
	if v, ok := lastValue(rawQuery, "preview"); ok && v == "true" {
		r.Preview = true
	}

	switch {
	case strings.HasPrefix(path, PublicPrefix):
		r.Kind = KindPublicProfile
		r.ProfileID = strings.TrimPrefix(path, PublicPrefix)
	case path == HomeFragment:
		r.Kind = KindHome
	case path == DashboardFragment:
		r.Kind = KindDashboard
	default:
		r.Kind = KindUnrecognized
	}
	return r
}

// IsPublic reports whether the route addresses a public profile.
func (r Route) IsPublic() bool {
	return r.Kind == KindPublicProfile
}

// String renders the route back into a fragment.
func (r Route) String() string {
	switch r.Kind {
	case KindHome:
		return HomeFragment
	case KindDashboard:
		return DashboardFragment
	case KindPublicProfile:
		return PublicProfileFragment(r.ProfileID, r.Preview)
	default:
		if r.RawQuery == "" {
			return r.Path
		}
		return r.Path + "?" + r.RawQuery
	}
}

// PublicProfileFragment builds "#/u/<id>", with "?preview=true" when preview is set.
func PublicProfileFragment(id string, preview bool) string {
	if preview {
		return PublicPrefix + id + "?preview=true"
	}
	return PublicPrefix + id
}

// lastValue returns the last occurrence of key in a URL query string.
// Malformed pairs are skipped rather than failing the whole parse.
func lastValue(rawQuery, key string) (string, bool) {
	values, _ := url.ParseQuery(rawQuery)
	vs := values[key]
	if len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}
