package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/rental_listing_platform/apierror"
	"github.com/dcode-github/rental_listing_platform/cache"
	"github.com/dcode-github/rental_listing_platform/filters"
	"github.com/dcode-github/rental_listing_platform/media"
	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
	"github.com/dcode-github/rental_listing_platform/utils"
)

const (
	MaxImageSize   = 5 << 20
	MaxImages      = 10
	multipartLimit = MaxImages*MaxImageSize + 1<<20
)

const (
	msgInvalidNumbers   = "Numeric fields must be valid numbers"
	msgImagesRequired   = "Image files are required"
	msgUploadFailed     = "Failed to upload some images"
	msgPropertyNotFound = "Property not found"
	msgOwnerNotFound    = "User associated with this property not found"
	msgNotOwner         = "Unauthorized: You do not own this property"
	msgInvalidProperty  = "Invalid property ID"
)

// UpdatePolicy controls who may update a listing.
type UpdatePolicy struct {
	EnforceOwnership bool
}

// CreateProperty registers a listing from a multipart form. Images are
// uploaded before anything is persisted; a failed batch leaves no trace.
func CreateProperty(props store.PropertyStore, uploader media.Uploader, listings *cache.Listings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, multipartLimit)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			log.Warn().Err(err).Msg("invalid multipart form")
			writeMessage(w, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		defer r.MultipartForm.RemoveAll()

		property, err := propertyFromForm(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, msgInvalidNumbers)
			return
		}

		headers := imageHeaders(r.MultipartForm)
		if len(headers) == 0 {
			writeMessage(w, http.StatusBadRequest, msgImagesRequired)
			return
		}
		if msg := checkImages(headers); msg != "" {
			writeMessage(w, http.StatusBadRequest, msg)
			return
		}

		files := make([]media.File, len(headers))
		for i, fh := range headers {
			fh := fh
			files[i] = media.File{
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Open:        func() (io.ReadCloser, error) { return fh.Open() },
			}
		}

		assets, err := media.UploadAll(r.Context(), uploader, files)
		if err != nil {
			log.Error().Err(err).Int("images", len(files)).Msg("image upload failed")
			writeMessage(w, http.StatusBadRequest, msgUploadFailed)
			return
		}

		property.ID = primitive.NewObjectID()
		property.UserID = actor
		property.Images = make([]string, len(assets))
		for i, a := range assets {
			property.Images[i] = a.URL
		}
		property.Reviews = []primitive.ObjectID{}
		property.Slug = propertySlug(property)
		now := time.Now().UTC()
		property.CreatedAt, property.UpdatedAt = now, now

		if err := props.Create(r.Context(), property); err != nil {
			log.Error().Err(err).Str("slug", property.Slug).Msg("insert failed")
			discardAssets(r.Context(), uploader, assets)
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		listings.InvalidateAsync()

		log.Info().Str("property", property.ID.Hex()).Str("owner", actor.Hex()).Int("images", len(assets)).Msg("property created")
		writeJSON(w, http.StatusCreated, models.PropertyResponse{
			StatusCode: http.StatusCreated,
			Property:   property,
			Msg:        "Property registered successfully.",
		})
	}
}

// propertyFromForm reads the listing fields. The four required numerics
// must parse; the optional ones must parse when sent.
func propertyFromForm(r *http.Request) (*models.Property, error) {
	p := &models.Property{
		FirstName:                    r.FormValue("firstName"),
		LastName:                     r.FormValue("lastName"),
		OwnerName:                    r.FormValue("ownerName"),
		OwnersContactNumber:          r.FormValue("ownersContactNumber"),
		OwnersAlternateContactNumber: r.FormValue("ownersAlternateContactNumber"),
		CurrentResidenceOfOwner:      r.FormValue("currentResidenceOfOwner"),
		Pincode:                      r.FormValue("pincode"),
		City:                         r.FormValue("city"),
		Locality:                     r.FormValue("locality"),
		Address:                      r.FormValue("address"),
		NearestLandmark:              r.FormValue("nearestLandmark"),
		LocationLink:                 r.FormValue("locationLink"),
		SpaceType:                    r.FormValue("spaceType"),
		PropertyType:                 r.FormValue("propertyType"),
		Type:                         r.FormValue("type"),
		Floor:                        r.FormValue("floor"),
		Preference:                   r.FormValue("preference"),
		GenderPreference:             r.FormValue("genderPreference"),
		Bachelors:                    r.FormValue("bachelors"),
		TypeOfWashroom:               r.FormValue("typeOfWashroom"),
		CoolingFacility:              r.FormValue("coolingFacility"),
		Appliances:                   r.FormValue("appliances"),
		Amenities:                    r.FormValue("amenities"),
		AboutTheProperty:             r.FormValue("aboutTheProperty"),
		Comments:                     r.FormValue("comments"),
		CommentByAnalyst:             r.FormValue("commentByAnalyst"),
		PetsAllowed:                  r.FormValue("petsAllowed") == "true",
		CarParking:                   r.FormValue("carParking") == "true",
	}

	required := map[string]*float64{
		"rent":           &p.Rent,
		"security":       &p.Security,
		"bhk":            &p.BHK,
		"squareFeetArea": &p.SquareFeetArea,
	}
	for field, dst := range required {
		v, err := models.ParseNumber(r.FormValue(field))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		*dst = v
	}

	optional := map[string]*float64{
		"concession":         &p.Concession,
		"subscriptionAmount": &p.SubscriptionAmount,
	}
	for field, dst := range optional {
		raw := r.FormValue(field)
		if raw == "" {
			continue
		}
		v, err := models.ParseNumber(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		*dst = v
	}
	return p, nil
}

// imageHeaders accepts both "images" and "images[]" field names, in form
// order.
func imageHeaders(form *multipart.Form) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	var out []*multipart.FileHeader
	out = append(out, form.File["images"]...)
	out = append(out, form.File["images[]"]...)
	return out
}

func checkImages(headers []*multipart.FileHeader) string {
	if len(headers) > MaxImages {
		return fmt.Sprintf("At most %d images are allowed", MaxImages)
	}
	for _, fh := range headers {
		if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
			return "Invalid file type. Only image files are allowed."
		}
		if fh.Size > MaxImageSize {
			return "File too large"
		}
	}
	return ""
}

func propertySlug(p *models.Property) string {
	bhk := strconv.FormatFloat(p.BHK, 'f', -1, 64) + "bhk"
	return utils.Slugify(p.City, p.Locality, bhk, p.ID.Hex())
}

// discardAssets removes uploads whose listing never made it to the store.
func discardAssets(ctx context.Context, uploader media.Uploader, assets []media.Asset) {
	cleanup := context.WithoutCancel(ctx)
	for _, a := range assets {
		if err := uploader.Delete(cleanup, a.ID); err != nil {
			log.Error().Err(err).Str("asset", a.ID).Msg("failed to discard uploaded asset")
		}
	}
}

func UpdateProperty(props store.PropertyStore, users store.UserStore, listings *cache.Listings, policy UpdatePolicy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}

		id, err := pathID(r, "id")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, msgInvalidProperty)
			return
		}

		var update models.PropertyUpdate
		if err := decodeJSON(w, r, &update); err != nil {
			if errors.Is(err, models.ErrInvalidNumber) {
				writeMessage(w, http.StatusBadRequest, msgInvalidNumbers)
				return
			}
			log.Warn().Err(err).Msg("invalid update body")
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		for field, v := range update.Numbers() {
			if v != nil && !v.Valid() {
				log.Warn().Str("field", field).Msg("rejected numeric update")
				writeMessage(w, http.StatusBadRequest, msgInvalidNumbers)
				return
			}
		}

		property, err := props.FindByID(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, msgPropertyNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("property", id.Hex()).Msg("lookup failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		if _, err := users.FindByID(r.Context(), property.UserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeMessage(w, http.StatusNotFound, msgOwnerNotFound)
				return
			}
			log.Error().Err(err).Str("owner", property.UserID.Hex()).Msg("owner lookup failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		if property.UserID != actor {
			if policy.EnforceOwnership {
				writeMessage(w, http.StatusForbidden, msgNotOwner)
				return
			}
			log.Warn().Str("property", id.Hex()).Str("actor", actor.Hex()).Str("owner", property.UserID.Hex()).Msg("property updated by non-owner")
		}

		update.Apply(property)
		property.UpdatedAt = time.Now().UTC()

		if err := props.Replace(r.Context(), property); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeMessage(w, http.StatusNotFound, msgPropertyNotFound)
				return
			}
			log.Error().Err(err).Str("property", id.Hex()).Msg("update failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		listings.InvalidateAsync()

		writeJSON(w, http.StatusOK, models.PropertyResponse{
			StatusCode: http.StatusOK,
			Property:   property,
			Message:    "Property updated successfully.",
		})
	}
}

// DeleteProperty removes the listing document only. Its reviews stay in
// place and are picked up by reconcile.
func DeleteProperty(props store.PropertyStore, users store.UserStore, listings *cache.Listings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}

		id, err := pathID(r, "id")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, msgInvalidProperty)
			return
		}

		property, err := props.FindByID(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, msgPropertyNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("property", id.Hex()).Msg("lookup failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		if _, err := users.FindByID(r.Context(), property.UserID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeMessage(w, http.StatusNotFound, msgOwnerNotFound)
				return
			}
			log.Error().Err(err).Str("owner", property.UserID.Hex()).Msg("owner lookup failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		if property.UserID != actor {
			writeMessage(w, http.StatusForbidden, msgNotOwner)
			return
		}

		if err := props.Delete(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("property", id.Hex()).Msg("delete failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		listings.InvalidateAsync()

		writeJSON(w, http.StatusOK, models.PropertyResponse{
			StatusCode: http.StatusOK,
			Message:    "Property deleted successfully.",
		})
	}
}

func GetProperty(props store.PropertyStore, listings *cache.Listings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cachedJSON(w, r, listings, "all", func() (int, interface{}, error) {
			data, err := props.FindAll(r.Context())
			if err != nil {
				return 0, nil, err
			}
			if len(data) == 0 {
				return http.StatusNotFound, models.MessageResponse{Message: "No Property found"}, nil
			}
			return http.StatusOK, data, nil
		})
	}
}

// GetPropertyByID returns the listing with its reviews expanded in the
// order they were added.
func GetPropertyByID(props store.PropertyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, msgInvalidProperty)
			return
		}

		detail, err := props.FindDetail(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, msgPropertyNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("property", id.Hex()).Msg("lookup failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, detail)
	}
}

func GetPropertyByCity(props store.PropertyStore, listings *cache.Listings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		city := mux.Vars(r)["city"]
		cachedJSON(w, r, listings, "city:"+city, func() (int, interface{}, error) {
			data, err := props.FindByCity(r.Context(), city)
			if err != nil {
				return 0, nil, err
			}
			if len(data) == 0 {
				return http.StatusNotFound, models.APIResponse{Success: false, Message: "No properties found in " + city}, nil
			}
			return http.StatusOK, models.APIResponse{Success: true, Data: data}, nil
		})
	}
}

func GetPropertiesByLocation(props store.PropertyStore, listings *cache.Listings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		location := mux.Vars(r)["location"]
		if strings.TrimSpace(location) == "" {
			writeMessage(w, http.StatusBadRequest, "Location is required")
			return
		}
		cachedJSON(w, r, listings, "location:"+location, func() (int, interface{}, error) {
			data, err := props.FindByLocality(r.Context(), location)
			if err != nil {
				return 0, nil, err
			}
			if len(data) == 0 {
				return http.StatusNotFound, models.APIResponse{Success: false, Message: "No properties found in " + location}, nil
			}
			return http.StatusOK, models.APIResponse{Success: true, Data: data}, nil
		})
	}
}

func PropertyBySlug(props store.PropertyStore) http.HandlerFunc {
	return apierror.Handler(func(w http.ResponseWriter, r *http.Request) error {
		slug := mux.Vars(r)["slug"]
		property, err := props.FindBySlug(r.Context(), slug)
		if errors.Is(err, store.ErrNotFound) {
			return apierror.New(apierror.NotFound, msgPropertyNotFound)
		}
		if err != nil {
			return apierror.Wrap(apierror.Server, err.Error(), err)
		}
		writeJSON(w, http.StatusOK, property)
		return nil
	})
}

func GetFilteredProperties(props store.PropertyStore, listings *cache.Listings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f := filters.ParseProperty(r.URL.Query())
		cachedJSON(w, r, listings, "filter", func() (int, interface{}, error) {
			data, err := props.Filter(r.Context(), f)
			if err != nil {
				return 0, nil, err
			}
			return http.StatusOK, models.FilterResponse{Success: true, Data: data, Page: f.Page, Limit: f.Limit}, nil
		})
	}
}
