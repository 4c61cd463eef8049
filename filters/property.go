// Package filters turns listing query parameters into property filters.
package filters

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dcode-github/rental_listing_platform/models"
)

const (
	DefaultPage  int64 = 1
	DefaultLimit int64 = 10

	preferenceAny    = "Any"
	preferenceFamily = "Family"
)

// PropertyFilter holds the parsed facets of a listing search. Nil slices
// mean the facet is absent; an empty non-nil slice matches nothing.
type PropertyFilter struct {
	BHK              []int
	PropertyTypes    []string
	Preference       string
	GenderPreference string
	HouseTypes       []string
	City             string
	Page             int64
	Limit            int64
}

// ParseProperty reads the bhk, residential, commercial, preferenceHousing,
// genderPreference, houseType, city, page and limit parameters.
func ParseProperty(q url.Values) PropertyFilter {
	f := PropertyFilter{Page: DefaultPage, Limit: DefaultLimit}

	if bhk := q.Get("bhk"); bhk != "" {
		f.BHK = []int{}
		for _, tok := range strings.Split(bhk, ",") {
			digits := strings.Map(func(r rune) rune {
				if r >= '0' && r <= '9' {
					return r
				}
				return -1
			}, tok)
			n, err := strconv.Atoi(digits)
			if err != nil {
				continue
			}
			f.BHK = append(f.BHK, n)
		}
	}

	if residential := q.Get("residential"); residential != "" {
		f.PropertyTypes = append(f.PropertyTypes, splitTypes(residential)...)
	}
	if commercial := q.Get("commercial"); commercial != "" {
		f.PropertyTypes = append(f.PropertyTypes, splitTypes(commercial)...)
	}

	preference := q.Get("preferenceHousing")
	if preference != "" && preference != preferenceAny {
		f.Preference = preference
	}
	if gender := q.Get("genderPreference"); gender != "" && preference != preferenceFamily {
		f.GenderPreference = gender
	}

	if houseType := q.Get("houseType"); houseType != "" {
		f.HouseTypes = strings.Split(houseType, ",")
	}

	f.City = q.Get("city")

	if n, err := strconv.ParseInt(q.Get("page"), 10, 64); err == nil && n >= 1 {
		f.Page = n
	}
	if n, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil && n >= 1 {
		f.Limit = n
	}
	if maxPage := math.MaxInt64 / f.Limit; f.Page > maxPage {
		f.Page = maxPage
	}

	return f
}

func splitTypes(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimPrefix(p, "+ "))
	}
	return out
}

// Skip is the number of matching documents before the requested page. It
// saturates at math.MaxInt64 instead of overflowing.
func (f PropertyFilter) Skip() int64 {
	if f.Page <= 1 || f.Limit <= 0 {
		return 0
	}
	if f.Page-1 > math.MaxInt64/f.Limit {
		return math.MaxInt64
	}
	return (f.Page - 1) * f.Limit
}

// BSON renders the filter as a MongoDB query document.
func (f PropertyFilter) BSON() bson.M {
	filter := bson.M{}
	if f.BHK != nil {
		filter["bhk"] = bson.M{"$in": f.BHK}
	}
	if f.PropertyTypes != nil {
		filter["propertyType"] = bson.M{"$in": f.PropertyTypes}
	}
	if f.Preference != "" {
		filter["preference"] = f.Preference
	}
	if f.GenderPreference != "" {
		filter["genderPreference"] = f.GenderPreference
	}
	if f.HouseTypes != nil {
		filter["type"] = bson.M{"$in": f.HouseTypes}
	}
	if f.City != "" {
		filter["city"] = f.City
	}
	return filter
}

// Matches evaluates the same predicate as BSON against p.
func (f PropertyFilter) Matches(p *models.Property) bool {
	if f.BHK != nil {
		found := false
		for _, n := range f.BHK {
			if float64(n) == p.BHK {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.PropertyTypes != nil && !contains(f.PropertyTypes, p.PropertyType) {
		return false
	}
	if f.Preference != "" && p.Preference != f.Preference {
		return false
	}
	if f.GenderPreference != "" && p.GenderPreference != f.GenderPreference {
		return false
	}
	if f.HouseTypes != nil && !contains(f.HouseTypes, p.Type) {
		return false
	}
	if f.City != "" && p.City != f.City {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
