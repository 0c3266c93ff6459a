// Package placetag extracts inline place-reference tags from final answer
// text.
//
// The agent is instructed to annotate places it mentions with tags of the
// shape:
//
//	<place id="4bf58dd8" lat=40.689 lng=-73.974>Fort Greene Park</place>
//
// Extract pulls these into structured records for the map view and replaces
// each tag in place with a clickable link, preserving surrounding text and
// tag order.
package placetag

import (
	"fmt"
	"regexp"
	"strconv"
)

// The id may be quoted or bare; lat/lng are bare numbers.
var tagPattern = regexp.MustCompile(`<place id="?([^" >]+)"? lat=([-0-9.]+) lng=([-0-9.]+)>([^<]*)</place>`)

// Place is one extracted place reference.
type Place struct {
	ID   string  `json:"id"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name"`
}

// URL returns the public page for the place.
func (p Place) URL() string {
	return "https://foursquare.com/v/" + p.ID
}

// Extract replaces every place tag in text with an anchor to the place's
// public page and returns the extracted places in their original tag order.
// Text without tags is returned unchanged with a nil slice.
func Extract(text string) (string, []Place) {
	var places []Place
	replaced := tagPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := tagPattern.FindStringSubmatch(match)
		lat, _ := strconv.ParseFloat(groups[2], 64)
		lng, _ := strconv.ParseFloat(groups[3], 64)
		place := Place{ID: groups[1], Lat: lat, Lng: lng, Name: groups[4]}
		places = append(places, place)
		return fmt.Sprintf(`<a href="%s" target="_blank" rel="noreferrer nofollow noopener">%s</a>`,
			place.URL(), place.Name)
	})
	return replaced, places
}
