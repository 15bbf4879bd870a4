package views

import (
	"context"

	"profileplus/internal/identity"
	"profileplus/internal/profiles"
	"profileplus/internal/routing"
	"profileplus/internal/session"
)

// Kind names the screen a fragment resolves to.
type Kind string

const (
	KindHome          Kind = "home"
	KindDashboard     Kind = "dashboard"
	KindPublicProfile Kind = "public_profile"
)

// Dashboard is the payload of the signed-in editor screen.
type Dashboard struct {
	Profile    profiles.Profile `json:"profile"`
	IsNew      bool             `json:"isNew"`
	PublicURL  string           `json:"publicUrl"`
	PreviewURL string           `json:"previewUrl"`
}

// View is the outcome of resolving one fragment for one session.
type View struct {
	Kind  Kind          `json:"kind"`
	Route routing.Route `json:"-"`
	// Location is the session location after resolving.
	Location string `json:"location"`
	// Redirected is set when the location was rewritten to the dashboard.
	Redirected bool                    `json:"redirected"`
	User       *identity.User          `json:"user,omitempty"`
	Profile    *profiles.PublicProfile `json:"profile,omitempty"`
	ProfileID  string                  `json:"profileId,omitempty"`
	IsPreview  bool                    `json:"isPreview"`
	NotFound   bool                    `json:"notFound"`
	Dashboard  *Dashboard              `json:"dashboard,omitempty"`
}

// Resolver picks the screen for a fragment.
type Resolver struct {
	Store *profiles.Store
}

// Resolve routes fragment for st. Public profile paths win over
// authentication; a signed-in user on any other path gets the dashboard
// and, unless already there, a rewritten location. The resolved location
// is recorded on the session.
func (r *Resolver) Resolve(ctx context.Context, fragment string, st *session.State) View {
	route := routing.Parse(fragment)

	if route.Kind == routing.KindPublicProfile {
		st.Navigate(route.String())
		return r.publicView(ctx, route, st)
	}

	if user, ok := st.User(); ok {
		v := View{Kind: KindDashboard, Route: route, User: &user}
		if route.Kind != routing.KindDashboard {
			v.Redirected = true
		}
		st.Navigate(routing.DashboardFragment)
		v.Location = routing.DashboardFragment
		v.Dashboard = DashboardFor(st, user)
		return v
	}

	st.Navigate(route.String())
	return View{Kind: KindHome, Route: route, Location: route.String()}
}

func (r *Resolver) publicView(ctx context.Context, route routing.Route, st *session.State) View {
	v := View{
		Kind:      KindPublicProfile,
		Route:     route,
		Location:  route.String(),
		ProfileID: route.ProfileID,
	}
	if u, ok := st.User(); ok {
		v.User = &u
	}

	p, preview, ok := r.Lookup(ctx, st.Catalog(), route.ProfileID, route.Preview)
	if !ok {
		v.NotFound = true
		return v
	}
	pub := profiles.ToPublic(p, st.Revealed(p.ID))
	v.Profile = &pub
	v.IsPreview = preview
	return v
}

// Lookup finds the record to show for id. The preview slot is consulted
// only when preview is requested and the slot holds the same id;
// otherwise the catalog record is used.
func (r *Resolver) Lookup(ctx context.Context, catalog *profiles.Catalog, id string, preview bool) (profiles.Profile, bool, bool) {
	if preview {
		if slot := r.Store.ReadPreview(ctx); slot != nil && slot.ID == id {
			return *slot, true, true
		}
	}
	p, ok := catalog.Get(id)
	return p, false, ok
}

// DashboardFor returns the user's saved profile, or a fresh draft.
func DashboardFor(st *session.State, user identity.User) *Dashboard {
	id := st.DraftID()
	d := &Dashboard{
		PublicURL:  routing.PublicProfileFragment(id, false),
		PreviewURL: routing.PublicProfileFragment(id, true),
	}
	if p, ok := st.Catalog().Get(id); ok {
		d.Profile = p
		return d
	}
	d.Profile = profiles.NewDraft(id)
	d.IsNew = true
	return d
}
