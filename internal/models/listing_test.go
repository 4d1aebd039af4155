package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_DecodeLegacyShape(t *testing.T) {
	payload := `{
		"id": "L1",
		"title": "2BHK",
		"type": "Flat",
		"price": "4500000",
		"sqft": 950,
		"bedrooms": "2",
		"mainPhoto": "uploads\\main.jpg",
		"owner": {"name": "Ravi", "MobileNumber": "9876543210"}
	}`

	var l Listing
	require.NoError(t, json.Unmarshal([]byte(payload), &l))
	l.Normalize()

	assert.Equal(t, Price(4500000), l.Price)
	assert.Equal(t, Flex("950"), l.Sqft)
	assert.Equal(t, Flex("2"), l.Bedrooms)
	assert.Equal(t, "Flat", l.PropertyType)
	assert.Equal(t, `uploads\main.jpg`, l.Photos.Main)
	assert.Equal(t, "Ravi", l.OwnerName)
	assert.Equal(t, "9876543210", l.OwnerMobile)
}

func TestListing_NormalizeKeepsCanonicalFields(t *testing.T) {
	l := Listing{
		PropertyType: "Villa",
		Type:         "Flat",
		MainPhoto:    "old.jpg",
		Photos:       Photos{Main: "new.jpg"},
		OwnerName:    "Asha",
		Owner:        &ListingOwner{Name: "Other"},
	}
	l.Normalize()

	assert.Equal(t, "Villa", l.PropertyType)
	assert.Equal(t, "new.jpg", l.Photos.Main)
	assert.Equal(t, "Asha", l.OwnerName)
}

func TestPrice_Invalid(t *testing.T) {
	var p Price
	p = 7
	require.NoError(t, json.Unmarshal([]byte(`"50 Lakh"`), &p))
	assert.Equal(t, Price(0), p)
	p = 7
	require.NoError(t, json.Unmarshal([]byte(`null`), &p))
	assert.Equal(t, Price(0), p)
}

func TestPhotos_All(t *testing.T) {
	p := Photos{
		Main:      "m.jpg",
		Kitchen:   "k.jpg",
		Bedrooms:  []string{"b1.jpg", ""},
		Bathrooms: []string{"t1.jpg"},
	}
	assert.Equal(t, []string{"m.jpg", "k.jpg", "b1.jpg", "t1.jpg"}, p.All())
}

func TestListing_Location(t *testing.T) {
	l := Listing{Area: "Vesu", City: "Surat", State: "Gujarat"}
	assert.Equal(t, "Vesu, Surat, Gujarat", l.Location())

	l.Area = ""
	assert.Equal(t, "Surat, Gujarat", l.Location())
}

func TestSession_LoggedIn(t *testing.T) {
	assert.False(t, Session{}.LoggedIn())
	assert.False(t, Session{Token: "abc"}.LoggedIn())
	assert.True(t, Session{Token: "abc", User: &User{ID: "u1"}}.LoggedIn())
}
