package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/rental_listing_platform/cache"
	"github.com/dcode-github/rental_listing_platform/models"
)

func listingForm() map[string]string {
	return map[string]string{
		"firstName":      "Asha",
		"city":           "Pune",
		"locality":       "Baner",
		"propertyType":   "Flat",
		"type":           "Apartment",
		"rent":           "15000",
		"security":       "30000",
		"bhk":            "2",
		"squareFeetArea": "850.5",
		"petsAllowed":    "true",
		"carParking":     "yes",
	}
}

func TestCreatePropertyStoresNumbersAndImagesInOrder(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Asha", "asha@example.com")

	body, ct := multipartBody(t, listingForm(), pngFile("a.png"), pngFile("b.png"), pngFile("c.png"))
	req := request(http.MethodPost, "/api/v1/property/add-property", body, owner.ID, nil)
	req.Header.Set("Content-Type", ct)

	rr := serve(CreateProperty(f.stores.Properties, f.media, nil), req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}

	var resp struct {
		StatusCode int             `json:"statusCode"`
		Msg        string          `json:"msg"`
		Property   models.Property `json:"property"`
	}
	decode(t, rr, &resp)
	if resp.StatusCode != 201 || resp.Msg != "Property registered successfully." {
		t.Fatalf("unexpected envelope %+v", resp)
	}

	stored, err := f.stores.Properties.FindByID(context.Background(), resp.Property.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Rent != 15000 || stored.Security != 30000 || stored.BHK != 2 || stored.SquareFeetArea != 850.5 {
		t.Errorf("numerics not stored as numbers: %+v", stored)
	}
	if !stored.PetsAllowed || stored.CarParking {
		t.Errorf("petsAllowed=%v carParking=%v, want true/false", stored.PetsAllowed, stored.CarParking)
	}
	if stored.UserID != owner.ID {
		t.Errorf("owner = %s, want %s", stored.UserID.Hex(), owner.ID.Hex())
	}
	if stored.Slug != "pune-baner-2bhk-"+stored.ID.Hex() {
		t.Errorf("slug = %q", stored.Slug)
	}
	if len(stored.Images) != 3 || f.media.Len() != 3 {
		t.Fatalf("images = %v, stored assets = %d", stored.Images, f.media.Len())
	}
	for i, want := range []string{"a.png", "b.png", "c.png"} {
		obj, err := f.media.Open(context.Background(), strings.TrimPrefix(stored.Images[i], testMediaURL+"/"))
		if err != nil {
			t.Fatalf("image %d not hosted: %v", i, err)
		}
		if obj.Name != want {
			t.Errorf("image %d = %s, want %s", i, obj.Name, want)
		}
	}
}

func TestCreatePropertyAcceptsBracketFieldName(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Asha", "asha@example.com")

	img := pngFile("a.png")
	img.field = "images[]"
	body, ct := multipartBody(t, listingForm(), img)
	req := request(http.MethodPost, "/", body, owner.ID, nil)
	req.Header.Set("Content-Type", ct)

	if rr := serve(CreateProperty(f.stores.Properties, f.media, nil), req); rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
}

func TestCreatePropertyValidation(t *testing.T) {
	cases := []struct {
		name   string
		fields func(map[string]string)
		files  []formFile
		want   string
	}{
		{"non-numeric rent", func(m map[string]string) { m["rent"] = "abc" }, []formFile{pngFile("a.png")}, msgInvalidNumbers},
		{"empty bhk", func(m map[string]string) { m["bhk"] = "" }, []formFile{pngFile("a.png")}, msgInvalidNumbers},
		{"negative security", func(m map[string]string) { m["security"] = "-1" }, []formFile{pngFile("a.png")}, msgInvalidNumbers},
		{"bad optional number", func(m map[string]string) { m["concession"] = "lots" }, []formFile{pngFile("a.png")}, msgInvalidNumbers},
		{"numbers checked before images", func(m map[string]string) { m["rent"] = "NaN" }, nil, msgInvalidNumbers},
		{"no images", nil, nil, msgImagesRequired},
		{"not an image", nil, []formFile{{field: "images", name: "a.pdf", contentType: "application/pdf", data: []byte("%PDF")}}, "Invalid file type. Only image files are allowed."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			owner := f.user(t, "Asha", "asha@example.com")

			fields := listingForm()
			if tc.fields != nil {
				tc.fields(fields)
			}
			body, ct := multipartBody(t, fields, tc.files...)
			req := request(http.MethodPost, "/", body, owner.ID, nil)
			req.Header.Set("Content-Type", ct)

			rr := serve(CreateProperty(f.stores.Properties, f.media, nil), req)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			if got := messageOf(t, rr); got != tc.want {
				t.Errorf("message = %q, want %q", got, tc.want)
			}
			all, _ := f.stores.Properties.FindAll(context.Background())
			if len(all) != 0 || f.media.Len() != 0 {
				t.Errorf("rejected request left %d properties and %d assets", len(all), f.media.Len())
			}
		})
	}
}

func TestCreatePropertyRollsBackOnUploadFailure(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Asha", "asha@example.com")
	up := &failingUploader{Memory: f.media, failOn: "b.png"}

	body, ct := multipartBody(t, listingForm(), pngFile("a.png"), pngFile("b.png"), pngFile("c.png"))
	req := request(http.MethodPost, "/", body, owner.ID, nil)
	req.Header.Set("Content-Type", ct)

	rr := serve(CreateProperty(f.stores.Properties, up, nil), req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if got := messageOf(t, rr); got != msgUploadFailed {
		t.Errorf("message = %q", got)
	}
	all, _ := f.stores.Properties.FindAll(context.Background())
	if len(all) != 0 {
		t.Errorf("property persisted despite failed upload")
	}
	if f.media.Len() != 0 {
		t.Errorf("%d uploaded assets were not rolled back", f.media.Len())
	}
	if up.deletes.Load() != 2 {
		t.Errorf("deletes = %d, want 2", up.deletes.Load())
	}
}

func TestUpdatePropertyExplicitPresence(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Asha", "asha@example.com")
	p := f.property(t, owner.ID, func(p *models.Property) {
		p.Comments = "sunny"
		p.PetsAllowed = true
		p.Security = 5000
	})

	body := strings.NewReader(`{"rent":0,"comments":"","petsAllowed":false,"security":"7500","bhk":"3"}`)
	req := request(http.MethodPut, "/", body, owner.ID, map[string]string{"id": p.ID.Hex()})
	rr := serve(UpdateProperty(f.stores.Properties, f.stores.Users, nil, UpdatePolicy{}), req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}

	var resp models.PropertyResponse
	decode(t, rr, &resp)
	if resp.Message != "Property updated successfully." || resp.StatusCode != 200 {
		t.Errorf("unexpected envelope %+v", resp)
	}

	got, _ := f.stores.Properties.FindByID(context.Background(), p.ID)
	if got.Rent != 0 || got.Comments != "" || got.PetsAllowed {
		t.Errorf("zero values not applied: rent=%v comments=%q pets=%v", got.Rent, got.Comments, got.PetsAllowed)
	}
	if got.Security != 7500 || got.BHK != 3 {
		t.Errorf("numeric strings not stored as numbers: security=%v bhk=%v", got.Security, got.BHK)
	}
	if got.City != "Pune" || got.Slug != p.Slug {
		t.Errorf("absent fields changed: city=%q slug=%q", got.City, got.Slug)
	}
}

func TestUpdatePropertyErrors(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Asha", "asha@example.com")
	p := f.property(t, owner.ID, nil)
	orphan := f.property(t, primitive.NewObjectID(), nil)

	cases := []struct {
		name   string
		id     string
		body   string
		status int
		msg    string
	}{
		{"bad id", "nope", `{}`, http.StatusBadRequest, msgInvalidProperty},
		{"bad body", p.ID.Hex(), `{`, http.StatusBadRequest, "Invalid request body"},
		{"non-numeric", p.ID.Hex(), `{"rent":"abc"}`, http.StatusBadRequest, msgInvalidNumbers},
		{"negative", p.ID.Hex(), `{"rent":-4}`, http.StatusBadRequest, msgInvalidNumbers},
		{"missing", primitive.NewObjectID().Hex(), `{}`, http.StatusNotFound, msgPropertyNotFound},
		{"owner gone", orphan.ID.Hex(), `{}`, http.StatusNotFound, msgOwnerNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := request(http.MethodPut, "/", strings.NewReader(tc.body), owner.ID, map[string]string{"id": tc.id})
			rr := serve(UpdateProperty(f.stores.Properties, f.stores.Users, nil, UpdatePolicy{}), req)
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", rr.Code, tc.status, rr.Body)
			}
			if got := messageOf(t, rr); got != tc.msg {
				t.Errorf("message = %q, want %q", got, tc.msg)
			}
		})
	}
}

func TestUpdateOwnershipPolicy(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Asha", "asha@example.com")
	other := f.user(t, "Ravi", "ravi@example.com")
	p := f.property(t, owner.ID, nil)

	update := func(policy UpdatePolicy, rent int) int {
		body := strings.NewReader(fmt.Sprintf(`{"rent":%d}`, rent))
		req := request(http.MethodPut, "/", body, other.ID, map[string]string{"id": p.ID.Hex()})
		return serve(UpdateProperty(f.stores.Properties, f.stores.Users, nil, policy), req).Code
	}

	if code := update(UpdatePolicy{EnforceOwnership: true}, 1); code != http.StatusForbidden {
		t.Fatalf("enforced: status = %d, want 403", code)
	}
	got, _ := f.stores.Properties.FindByID(context.Background(), p.ID)
	if got.Rent != p.Rent {
		t.Fatalf("forbidden update changed rent to %v", got.Rent)
	}

	if code := update(UpdatePolicy{}, 2); code != http.StatusOK {
		t.Fatalf("unenforced: status = %d, want 200", code)
	}
	got, _ = f.stores.Properties.FindByID(context.Background(), p.ID)
	if got.Rent != 2 {
		t.Fatalf("rent = %v, want 2", got.Rent)
	}
}

func TestDeleteProperty(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Asha", "asha@example.com")
	other := f.user(t, "Ravi", "ravi@example.com")
	p := f.property(t, owner.ID, nil)

	review := &models.Review{Property: p.ID, User: other.ID.Hex(), Rating: 4, Comment: "nice"}
	if err := f.stores.Reviews.Create(context.Background(), review); err != nil {
		t.Fatal(err)
	}
	if err := f.stores.Properties.PushReview(context.Background(), p.ID, review.ID); err != nil {
		t.Fatal(err)
	}

	del := func(actor primitive.ObjectID) *http.Request {
		return request(http.MethodDelete, "/", nil, actor, map[string]string{"id": p.ID.Hex()})
	}
	handler := DeleteProperty(f.stores.Properties, f.stores.Users, nil)

	rr := serve(handler, del(other.ID))
	if rr.Code != http.StatusForbidden || messageOf(t, rr) != msgNotOwner {
		t.Fatalf("non-owner delete: %d %s", rr.Code, rr.Body)
	}
	if _, err := f.stores.Properties.FindByID(context.Background(), p.ID); err != nil {
		t.Fatalf("property gone after forbidden delete: %v", err)
	}

	rr = serve(handler, del(owner.ID))
	if rr.Code != http.StatusOK {
		t.Fatalf("owner delete: %d %s", rr.Code, rr.Body)
	}
	var resp models.PropertyResponse
	decode(t, rr, &resp)
	if resp.StatusCode != 200 || resp.Message != "Property deleted successfully." {
		t.Errorf("unexpected envelope %+v", resp)
	}

	get := request(http.MethodGet, "/", nil, primitive.NilObjectID, map[string]string{"id": p.ID.Hex()})
	if rr := serve(GetPropertyByID(f.stores.Properties), get); rr.Code != http.StatusNotFound {
		t.Errorf("GET after delete = %d, want 404", rr.Code)
	}
	if _, err := f.stores.Reviews.FindByID(context.Background(), review.ID); err != nil {
		t.Errorf("review removed with its property: %v", err)
	}

	if rr := serve(handler, del(owner.ID)); rr.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rr.Code)
	}
}

func TestGetPropertyEmptyIs404(t *testing.T) {
	f := newFixture(t)
	rr := serve(GetProperty(f.stores.Properties, nil), request(http.MethodGet, "/", nil, primitive.NilObjectID, nil))
	if rr.Code != http.StatusNotFound || messageOf(t, rr) != "No Property found" {
		t.Fatalf("empty list: %d %s", rr.Code, rr.Body)
	}

	owner := f.user(t, "Asha", "asha@example.com")
	f.property(t, owner.ID, nil)
	f.property(t, owner.ID, nil)
	rr = serve(GetProperty(f.stores.Properties, nil), request(http.MethodGet, "/", nil, primitive.NilObjectID, nil))
	var list []models.Property
	decode(t, rr, &list)
	if rr.Code != http.StatusOK || len(list) != 2 {
		t.Fatalf("list: %d, %d items", rr.Code, len(list))
	}
}

func TestGetPropertyByIDExpandsReviewsInOrder(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Asha", "asha@example.com")
	p := f.property(t, owner.ID, nil)

	var ids []primitive.ObjectID
	for i, comment := range []string{"first", "second", "third"} {
		r := &models.Review{Property: p.ID, Rating: float64(i + 1), Comment: comment}
		if err := f.stores.Reviews.Create(context.Background(), r); err != nil {
			t.Fatal(err)
		}
		if err := f.stores.Properties.PushReview(context.Background(), p.ID, r.ID); err != nil {
			t.Fatal(err)
		}
		ids = append(ids, r.ID)
	}

	rr := serve(GetPropertyByID(f.stores.Properties), request(http.MethodGet, "/", nil, primitive.NilObjectID, map[string]string{"id": p.ID.Hex()}))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var detail struct {
		ID      primitive.ObjectID `json:"_id"`
		Reviews []models.Review    `json:"reviews"`
	}
	decode(t, rr, &detail)
	if detail.ID != p.ID || len(detail.Reviews) != 3 {
		t.Fatalf("detail = %+v", detail)
	}
	for i, r := range detail.Reviews {
		if r.ID != ids[i] {
			t.Errorf("review %d = %s, want %s", i, r.ID.Hex(), ids[i].Hex())
		}
	}

	bad := request(http.MethodGet, "/", nil, primitive.NilObjectID, map[string]string{"id": "123"})
	if rr := serve(GetPropertyByID(f.stores.Properties), bad); rr.Code != http.StatusBadRequest {
		t.Errorf("malformed id = %d, want 400", rr.Code)
	}
}

func TestCityAndLocationLookups(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Asha", "asha@example.com")
	f.property(t, owner.ID, nil)
	f.property(t, owner.ID, func(p *models.Property) { p.City = "Mumbai"; p.Locality = "Bandra" })

	var resp models.APIResponse

	rr := serve(GetPropertyByCity(f.stores.Properties, nil), request(http.MethodGet, "/", nil, primitive.NilObjectID, map[string]string{"city": "Mumbai"}))
	decode(t, rr, &resp)
	if rr.Code != http.StatusOK || !resp.Success || len(resp.Data.([]interface{})) != 1 {
		t.Fatalf("city: %d %s", rr.Code, rr.Body)
	}

	rr = serve(GetPropertyByCity(f.stores.Properties, nil), request(http.MethodGet, "/", nil, primitive.NilObjectID, map[string]string{"city": "Delhi"}))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown city = %d, want 404", rr.Code)
	}

	rr = serve(GetPropertiesByLocation(f.stores.Properties, nil), request(http.MethodGet, "/", nil, primitive.NilObjectID, map[string]string{"location": "Baner"}))
	resp = models.APIResponse{}
	decode(t, rr, &resp)
	if rr.Code != http.StatusOK || len(resp.Data.([]interface{})) != 1 {
		t.Fatalf("location: %d %s", rr.Code, rr.Body)
	}

	rr = serve(GetPropertiesByLocation(f.stores.Properties, nil), request(http.MethodGet, "/", nil, primitive.NilObjectID, map[string]string{"location": "Nowhere"}))
	if rr.Code != http.StatusNotFound || messageOf(t, rr) != "No properties found in Nowhere" {
		t.Fatalf("unknown location: %d %s", rr.Code, rr.Body)
	}
}

func TestPropertyBySlugUsesCentralErrors(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Asha", "asha@example.com")
	p := f.property(t, owner.ID, nil)

	rr := serve(PropertyBySlug(f.stores.Properties), request(http.MethodGet, "/", nil, primitive.NilObjectID, map[string]string{"slug": p.Slug}))
	var got models.Property
	decode(t, rr, &got)
	if rr.Code != http.StatusOK || got.ID != p.ID {
		t.Fatalf("slug lookup: %d %s", rr.Code, rr.Body)
	}

	rr = serve(PropertyBySlug(f.stores.Properties), request(http.MethodGet, "/", nil, primitive.NilObjectID, map[string]string{"slug": "missing"}))
	var failure models.APIResponse
	decode(t, rr, &failure)
	if rr.Code != http.StatusNotFound || failure.Success || failure.Message != msgPropertyNotFound {
		t.Fatalf("missing slug: %d %s", rr.Code, rr.Body)
	}
}

func TestGetFilteredProperties(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Asha", "asha@example.com")
	for i := 1; i <= 4; i++ {
		bhk := float64(i)
		f.property(t, owner.ID, func(p *models.Property) { p.BHK = bhk })
	}
	f.property(t, owner.ID, func(p *models.Property) { p.BHK = 2; p.City = "Mumbai" })

	cases := []struct {
		query string
		want  int
	}{
		{"", 5},
		{"?bhk=2BHK", 2},
		{"?bhk=2BHK,3%20BHK&city=Pune", 2},
		{"?bhk=studio", 0},
		{"?residential=%2B%20Flat", 5},
		{"?limit=2", 2},
		{"?limit=2&page=3", 1},
		{"?page=0&limit=-1", 5},
		{"?page=9223372036854775807&limit=10", 0},
		{"?page=9223372036854775807&limit=9223372036854775807", 5},
		{"?page=2&limit=9223372036854775807", 5},
	}
	for _, tc := range cases {
		rr := serve(GetFilteredProperties(f.stores.Properties, nil), request(http.MethodGet, "/api/v1/property/filter"+tc.query, nil, primitive.NilObjectID, nil))
		var resp models.FilterResponse
		decode(t, rr, &resp)
		if rr.Code != http.StatusOK || !resp.Success {
			t.Fatalf("%q: %d %s", tc.query, rr.Code, rr.Body)
		}
		if len(resp.Data) != tc.want {
			t.Errorf("%q: %d results, want %d", tc.query, len(resp.Data), tc.want)
		}
	}

	rr := serve(GetFilteredProperties(f.stores.Properties, nil), request(http.MethodGet, "/filter?page=0&limit=x", nil, primitive.NilObjectID, nil))
	var resp models.FilterResponse
	decode(t, rr, &resp)
	if resp.Page != 1 || resp.Limit != 10 {
		t.Errorf("page/limit = %d/%d, want defaults", resp.Page, resp.Limit)
	}
}

func TestListingCacheServesAndInvalidates(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	listings := cache.New(client, time.Minute)

	f := newFixture(t)
	owner := f.user(t, "Asha", "asha@example.com")
	p := f.property(t, owner.ID, nil)

	filter := func() (string, []models.Property) {
		rr := serve(GetFilteredProperties(f.stores.Properties, listings), request(http.MethodGet, "/filter?city=Pune", nil, primitive.NilObjectID, nil))
		var resp models.FilterResponse
		decode(t, rr, &resp)
		return rr.Header().Get("X-Cache"), resp.Data
	}

	if state, _ := filter(); state != "MISS" {
		t.Fatalf("first read X-Cache = %q, want MISS", state)
	}
	if state, data := filter(); state != "HIT" || len(data) != 1 {
		t.Fatalf("second read X-Cache = %q (%d items), want HIT", state, len(data))
	}

	body := strings.NewReader(`{"city":"Mumbai"}`)
	req := request(http.MethodPut, "/", body, owner.ID, map[string]string{"id": p.ID.Hex()})
	if rr := serve(UpdateProperty(f.stores.Properties, f.stores.Users, listings, UpdatePolicy{}), req); rr.Code != http.StatusOK {
		t.Fatalf("update: %d", rr.Code)
	}

	// Invalidation runs in the background.
	deadline := time.Now().Add(2 * time.Second)
	for len(mr.Keys()) > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if state, data := filter(); state != "MISS" || len(data) != 0 {
		t.Fatalf("after write X-Cache = %q with %d items, want fresh empty result", state, len(data))
	}
}
