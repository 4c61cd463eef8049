package filters

import (
	"math"
	"net/url"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dcode-github/rental_listing_platform/models"
)

func parse(t *testing.T, raw string) PropertyFilter {
	t.Helper()
	q, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("parse query %q: %v", raw, err)
	}
	return ParseProperty(q)
}

func TestParseBHKStripsNonDigits(t *testing.T) {
	f := parse(t, "bhk=2BHK,3+bhk,x")
	if want := []int{2, 3}; !reflect.DeepEqual(f.BHK, want) {
		t.Errorf("BHK = %v, want %v", f.BHK, want)
	}
	got := f.BSON()["bhk"]
	if want := (bson.M{"$in": []int{2, 3}}); !reflect.DeepEqual(got, want) {
		t.Errorf("bson bhk = %v, want %v", got, want)
	}
}

func TestBHKWithoutDigitsMatchesNothing(t *testing.T) {
	f := parse(t, "bhk=studio")
	if f.BHK == nil || len(f.BHK) != 0 {
		t.Fatalf("BHK = %#v, want empty non-nil", f.BHK)
	}
	if f.Matches(&models.Property{BHK: 2}) {
		t.Error("expected no match for empty bhk set")
	}
}

func TestResidentialAndCommercialShareOneSet(t *testing.T) {
	// "+" decodes to a space in query strings, so "%2B " is a literal "+ ".
	f := parse(t, "residential=%2B Flat,Villa&commercial=%2B Office")
	want := []string{"Flat", "Villa", "Office"}
	if !reflect.DeepEqual(f.PropertyTypes, want) {
		t.Errorf("PropertyTypes = %v, want %v", f.PropertyTypes, want)
	}
	if !f.Matches(&models.Property{PropertyType: "Office"}) {
		t.Error("commercial value should match")
	}
	if !f.Matches(&models.Property{PropertyType: "Flat"}) {
		t.Error("residential value should match")
	}
	if f.Matches(&models.Property{PropertyType: "Shop"}) {
		t.Error("unlisted type should not match")
	}
}

func TestPreferenceAnySkipsFacet(t *testing.T) {
	f := parse(t, "preferenceHousing=Any")
	if _, ok := f.BSON()["preference"]; ok {
		t.Error("preference should be absent for Any")
	}
	if !f.Matches(&models.Property{Preference: "Family"}) {
		t.Error("Any should match every preference")
	}
}

func TestFamilySuppressesGender(t *testing.T) {
	f := parse(t, "preferenceHousing=Family&genderPreference=Male")
	m := f.BSON()
	if m["preference"] != "Family" {
		t.Errorf("preference = %v, want Family", m["preference"])
	}
	if _, ok := m["genderPreference"]; ok {
		t.Error("genderPreference should be ignored for Family")
	}
	if !f.Matches(&models.Property{Preference: "Family", GenderPreference: "Female"}) {
		t.Error("gender should not constrain family listings")
	}
}

func TestGenderAppliesOtherwise(t *testing.T) {
	f := parse(t, "preferenceHousing=Bachelors&genderPreference=Male")
	if f.BSON()["genderPreference"] != "Male" {
		t.Errorf("genderPreference = %v, want Male", f.BSON()["genderPreference"])
	}
	if f.Matches(&models.Property{Preference: "Bachelors", GenderPreference: "Female"}) {
		t.Error("expected gender mismatch to fail")
	}
}

func TestHouseTypeAndCity(t *testing.T) {
	f := parse(t, "houseType=Apartment,Independent House&city=Pune")
	m := f.BSON()
	if want := (bson.M{"$in": []string{"Apartment", "Independent House"}}); !reflect.DeepEqual(m["type"], want) {
		t.Errorf("type = %v, want %v", m["type"], want)
	}
	if m["city"] != "Pune" {
		t.Errorf("city = %v, want Pune", m["city"])
	}
	if f.Matches(&models.Property{Type: "Apartment", City: "Mumbai"}) {
		t.Error("city mismatch should fail")
	}
	if !f.Matches(&models.Property{Type: "Apartment", City: "Pune"}) {
		t.Error("expected match")
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		raw         string
		page, limit int64
		skip        int64
	}{
		{"", 1, 10, 0},
		{"page=2&limit=5", 2, 5, 5},
		{"page=0&limit=-3", 1, 10, 0},
		{"page=abc&limit=1000", 1, 1000, 0},
		{"page=9223372036854775807&limit=10", math.MaxInt64 / 10, 10, (math.MaxInt64/10 - 1) * 10},
		{"page=9223372036854775807&limit=9223372036854775807", 1, math.MaxInt64, 0},
		{"page=2&limit=9223372036854775807", 1, math.MaxInt64, 0},
	}
	for _, tt := range tests {
		f := parse(t, tt.raw)
		if f.Page != tt.page || f.Limit != tt.limit || f.Skip() != tt.skip {
			t.Errorf("%q: page=%d limit=%d skip=%d, want %d %d %d",
				tt.raw, f.Page, f.Limit, f.Skip(), tt.page, tt.limit, tt.skip)
		}
	}
}

func TestSkipSaturates(t *testing.T) {
	f := PropertyFilter{Page: math.MaxInt64, Limit: 10}
	if got := f.Skip(); got != math.MaxInt64 {
		t.Errorf("Skip() = %d, want %d", got, int64(math.MaxInt64))
	}
	if got := (PropertyFilter{Page: 3}).Skip(); got != 0 {
		t.Errorf("Skip() without limit = %d, want 0", got)
	}
}

func TestEmptyQueryMatchesEverything(t *testing.T) {
	f := parse(t, "")
	if len(f.BSON()) != 0 {
		t.Errorf("BSON = %v, want empty", f.BSON())
	}
	if !f.Matches(&models.Property{City: "Delhi", BHK: 4}) {
		t.Error("empty filter should match")
	}
}
