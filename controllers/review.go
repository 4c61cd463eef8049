package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/rental_listing_platform/cache"
	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
)

const msgReviewNotFound = "Review not found"

// AddReview stores a review and links it to its property. When the link
// cannot be made the review is deleted again, so no review outlives a
// failed request.
func AddReview(props store.PropertyStore, reviews store.ReviewStore, users store.UserStore, listings *cache.Listings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}

		var req models.ReviewRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Comment = strings.TrimSpace(req.Comment)
		if err := validate.Struct(req); err != nil {
			writeFailure(w, http.StatusBadRequest, validationMessage(err))
			return
		}
		propertyID, err := primitive.ObjectIDFromHex(req.PropertyID)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, msgInvalidProperty)
			return
		}

		username := strings.TrimSpace(req.Username)
		if username == "" {
			if u, err := users.FindByID(r.Context(), actor); err == nil {
				username = u.Name
			}
		}

		review := &models.Review{
			Property:  propertyID,
			User:      actor.Hex(),
			Username:  username,
			Rating:    req.Rating,
			Comment:   req.Comment,
			CreatedAt: time.Now().UTC(),
		}
		if err := reviews.Create(r.Context(), review); err != nil {
			log.Error().Err(err).Str("property", propertyID.Hex()).Msg("review insert failed")
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := props.PushReview(r.Context(), propertyID, review.ID); err != nil {
			compensateReview(r.Context(), reviews, review.ID)
			if errors.Is(err, store.ErrNotFound) {
				writeFailure(w, http.StatusNotFound, msgPropertyNotFound)
				return
			}
			log.Error().Err(err).Str("property", propertyID.Hex()).Msg("linking review failed")
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}

		listings.InvalidateAsync()

		writeJSON(w, http.StatusCreated, models.APIResponse{Success: true, Data: review})
	}
}

func compensateReview(ctx context.Context, reviews store.ReviewStore, id primitive.ObjectID) {
	if _, err := reviews.Delete(context.WithoutCancel(ctx), id); err != nil {
		log.Error().Err(err).Str("review", id.Hex()).Msg("failed to remove unlinked review; run reconcile")
		return
	}
	log.Warn().Str("review", id.Hex()).Msg("removed review for missing property")
}

func DeleteReview(props store.PropertyStore, reviews store.ReviewStore, listings *cache.Listings) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorOf(w, r); !ok {
			return
		}

		id, err := pathID(r, "id")
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid review ID")
			return
		}

		review, err := reviews.Delete(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, msgReviewNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("review", id.Hex()).Msg("review delete failed")
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}

		if err := props.PullReview(r.Context(), review.Property, review.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("review", id.Hex()).Str("property", review.Property.Hex()).Msg("unlinking review failed; run reconcile")
			writeFailure(w, http.StatusBadRequest, err.Error())
			return
		}

		listings.InvalidateAsync()

		writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Message: "Review deleted"})
	}
}

func GetReview(reviews store.ReviewStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid review ID")
			return
		}

		review, err := reviews.FindByID(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, msgReviewNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("review", id.Hex()).Msg("review lookup failed")
			writeFailure(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: review})
	}
}
