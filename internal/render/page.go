package render

import (
	"sky24/web/internal/models"
	"sky24/web/internal/view"
)

type Nav struct {
	LoggedIn bool
	Username string
	Founder  bool
	Broker   bool
}

// NavFor is the navigation for the session user, or the anonymous bar.
func NavFor(user *models.User) Nav {
	if user == nil {
		return Nav{}
	}
	return Nav{
		LoggedIn: true,
		Username: user.Username,
		Founder:  user.IsFounder(),
		Broker:   user.IsBroker(),
	}
}

type Filters struct {
	State    string
	City     string
	Area     string
	Type     string
	BrokerID string
	Q        string
}

type Home struct {
	Cards   []Card
	Filters Filters
	States  []string
	Cities  []string
	Areas   []string
	Types   []string
}

// NewHome fills the location cascade for the selected filters.
func NewHome(cards []Card, f Filters) *Home {
	return &Home{
		Cards:   cards,
		Filters: f,
		States:  States(),
		Cities:  Cities(f.State),
		Areas:   Areas(f.State, f.City),
		Types:   PropertyTypes,
	}
}

type Details struct {
	Listing     models.Listing
	Images      []string
	CanMarkSold bool
}

type BrokerPage struct {
	Query   string
	Profile *models.BrokerProfile
	Cards   []Card
}

type PendingRow struct {
	models.PendingBroker
	Docs []string
}

// Admin holds the three dashboard sections. Each section carries its own
// error so one failing load does not hide the others.
type Admin struct {
	Pending     []PendingRow
	PendingErr  string
	Users       []models.User
	UsersErr    string
	Listings    []models.Listing
	ListingsErr string
}

type Field struct {
	Name  string
	Value string
}

// Confirm asks before a destructive POST; accepting re-posts Fields to
// Action with confirmed=1.
type Confirm struct {
	Message string
	Action  string
	Button  string
	Cancel  string
	Fields  []Field
}

type GalleryView struct {
	ListingID string
	view.Gallery
}

type Page struct {
	Title        string
	View         view.View
	Nav          Nav
	Notice       string
	CookieBanner bool
	ResetToken   string
	// Here is the current location without ?modal, used by close links.
	Here string

	Home    *Home
	Details *Details
	Broker  *BrokerPage
	Admin   *Admin
	Confirm *Confirm
	Gallery *GalleryView
}
