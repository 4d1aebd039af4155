package render

import (
	"strconv"
	"strings"

	"sky24/web/internal/models"
)

const (
	EmptyDefault  = "No listings yet."
	EmptyLocation = "No property listings from this location."
	EmptyType     = "No property listings found for this type."
	EmptyBroker   = "No properties listed by this broker."
	EmptySearch   = "No listings match your search."
)

// ImageResolver turns a stored photo path into a URL the browser can load.
type ImageResolver func(path string) string

type Card struct {
	Placeholder bool
	Message     string

	ID          string
	Href        string
	Title       string
	Image       string
	Sold        bool
	CanMarkSold bool
	City        string
	State       string
	Type        string
	Price       string
	AgentName   string
}

// Cards builds the grid for listings as seen by user. An empty input gives
// exactly one placeholder card carrying empty as its text. Listings without
// an id are skipped.
func Cards(listings []models.Listing, user *models.User, resolve ImageResolver, empty string) []Card {
	cards := make([]Card, 0, len(listings))
	for _, l := range listings {
		if l.ID == "" {
			continue
		}
		title := l.Title
		if title == "" {
			title = "Property"
		}
		agent := l.AgentName
		if agent == "" {
			agent = "Agent"
		}
		cards = append(cards, Card{
			ID:          l.ID,
			Href:        "/listings/" + l.ID,
			Title:       title,
			Image:       resolve(l.Photos.Main),
			Sold:        l.IsSold,
			CanMarkSold: CanMarkSold(user, l),
			City:        l.City,
			State:       l.State,
			Type:        l.PropertyType,
			Price:       FormatPrice(l.Price),
			AgentName:   agent,
		})
	}
	if len(cards) == 0 {
		if empty == "" {
			empty = EmptyDefault
		}
		return []Card{{Placeholder: true, Message: empty}}
	}
	return cards
}

// CanMarkSold decides whether the mark-sold control is offered. Founders may
// mark anything; brokers only their own listings, matched either by broker
// id or by the older agent id field.
func CanMarkSold(user *models.User, l models.Listing) bool {
	if user == nil || l.IsSold {
		return false
	}
	switch user.Role {
	case models.UserRoleFounder:
		return true
	case models.UserRoleBroker:
		if user.BrokerID != "" && user.BrokerID == l.BrokerID {
			return true
		}
		return user.ID != "" && user.ID == l.AgentID
	}
	return false
}

// Filter keeps listings whose title, city or type contains q, ignoring case.
func Filter(listings []models.Listing, q string) []models.Listing {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return listings
	}
	out := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		hay := strings.ToLower(l.Title + " " + l.City + " " + l.PropertyType)
		if strings.Contains(hay, q) {
			out = append(out, l)
		}
	}
	return out
}

// FormatPrice renders rupees with Indian digit grouping, e.g. ₹ 12,34,567.
// An unknown price renders as "-".
func FormatPrice(p models.Price) string {
	n := int64(p)
	if n == 0 {
		return "-"
	}
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		s = strings.Join(groups, ",") + "," + tail
	}
	return "₹ " + sign + s
}
