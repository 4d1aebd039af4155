package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type Photos struct {
	Main      string   `json:"main"`
	Hall      string   `json:"hall,omitempty"`
	Kitchen   string   `json:"kitchen,omitempty"`
	Bedrooms  []string `json:"bedrooms,omitempty"`
	Bathrooms []string `json:"bathrooms,omitempty"`
}

// All returns every photo in gallery order: main, hall, kitchen, bedrooms, bathrooms.
func (p Photos) All() []string {
	out := make([]string, 0, 3+len(p.Bedrooms)+len(p.Bathrooms))
	for _, src := range []string{p.Main, p.Hall, p.Kitchen} {
		if src != "" {
			out = append(out, src)
		}
	}
	for _, src := range append(append([]string{}, p.Bedrooms...), p.Bathrooms...) {
		if src != "" {
			out = append(out, src)
		}
	}
	return out
}

type ListingOwner struct {
	Name         string `json:"name"`
	MobileNumber string `json:"MobileNumber"`
}

type Listing struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	State        string        `json:"state"`
	City         string        `json:"city"`
	Area         string        `json:"area"`
	Address      string        `json:"address"`
	Pincode      Flex          `json:"pincode"`
	PropertyType string        `json:"propertyType"`
	Type         string        `json:"type,omitempty"`
	Mode         string        `json:"mode"`
	Price        Price         `json:"price"`
	Sqft         Flex          `json:"sqft"`
	Carpet       Flex          `json:"carpet"`
	Floor        Flex          `json:"floor"`
	TotalFloors  Flex          `json:"totalFloors"`
	Bedrooms     Flex          `json:"bedrooms"`
	Bathrooms    Flex          `json:"bathrooms"`
	Description  string        `json:"description"`
	OwnerName    string        `json:"ownerName"`
	OwnerMobile  string        `json:"ownerMobile"`
	Owner        *ListingOwner `json:"owner,omitempty"`
	BrokerID     string        `json:"brokerId"`
	AgentID      string        `json:"agentId,omitempty"`
	AgentName    string        `json:"agentName"`
	IsSold       bool          `json:"isSold"`
	MainPhoto    string        `json:"mainPhoto,omitempty"`
	Photos       Photos        `json:"photos"`
}

// Normalize folds the older flat payload shapes (mainPhoto, owner{},
// type) into the canonical fields.
func (l *Listing) Normalize() {
	if l.Photos.Main == "" && l.MainPhoto != "" {
		l.Photos.Main = l.MainPhoto
	}
	if l.PropertyType == "" {
		l.PropertyType = l.Type
	}
	if l.Owner != nil {
		if l.OwnerName == "" {
			l.OwnerName = l.Owner.Name
		}
		if l.OwnerMobile == "" {
			l.OwnerMobile = l.Owner.MobileNumber
		}
	}
}

// Location renders "area, city, state" skipping empty parts.
func (l Listing) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Area, l.City, l.State} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Price is a whole-rupee amount. Backends have sent it both as a number
// and as a numeric string. Free text such as "50 Lakh" decodes as 0 so one
// bad record does not fail the whole listing set.
type Price int64

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	if raw == "" {
		*p = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*p = 0
		return nil
	}
	*p = Price(f)
	return nil
}

// Flex holds a spec value that may arrive as a JSON number or string.
type Flex string

func (f *Flex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	}
	*f = Flex(data)
	return nil
}

func (f Flex) OrDash() string {
	if strings.TrimSpace(string(f)) == "" {
		return "-"
	}
	return string(f)
}
