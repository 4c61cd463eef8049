package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
)

// RecommendProperty points a listing out to another registered user, found
// by email.
func RecommendProperty(props store.PropertyStore, users store.UserStore, recs store.RecommendationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fromUserID, ok := actorOf(w, r)
		if !ok {
			return
		}

		var req models.RecommendationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid input")
			return
		}
		req.ToEmail = strings.ToLower(strings.TrimSpace(req.ToEmail))
		if err := validate.Struct(req); err != nil {
			writeMessage(w, http.StatusBadRequest, validationMessage(err))
			return
		}
		propertyID, _ := primitive.ObjectIDFromHex(req.PropertyID)

		recipient, err := users.FindByEmail(r.Context(), req.ToEmail)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeMessage(w, http.StatusBadRequest, "No such user")
				return
			}
			log.Error().Err(err).Msg("error checking recipient")
			writeMessage(w, http.StatusInternalServerError, "Error checking database")
			return
		}
		if recipient.ID == fromUserID {
			writeMessage(w, http.StatusBadRequest, "Cannot recommend a property to yourself")
			return
		}

		if _, err := props.FindByID(r.Context(), propertyID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeMessage(w, http.StatusNotFound, msgPropertyNotFound)
				return
			}
			log.Error().Err(err).Str("property", propertyID.Hex()).Msg("lookup failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		rec := &models.Recommendation{
			FromUserID: fromUserID,
			ToUserID:   recipient.ID,
			PropertyID: propertyID,
			CreatedAt:  time.Now().UTC(),
		}
		if err := recs.Create(r.Context(), rec); err != nil {
			log.Error().Err(err).Msg("recommendation insert failed")
			writeMessage(w, http.StatusInternalServerError, "Insert failed")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Recommendation sent"})
	}
}

func GetRecommendations(recs store.RecommendationStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		toUserID, ok := actorOf(w, r)
		if !ok {
			return
		}

		recommended, err := recs.ForUser(r.Context(), toUserID)
		if err != nil {
			log.Error().Err(err).Str("user", toUserID.Hex()).Msg("error aggregating recommendations")
			writeFailure(w, http.StatusInternalServerError, "Failed to retrieve recommendations")
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Fetched recommended properties",
			Data:    recommended,
		})
	}
}
