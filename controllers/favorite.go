package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
)

func AddFavorite(props store.PropertyStore, favorites store.FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}

		var req models.FavoriteRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid request data")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeFailure(w, http.StatusBadRequest, validationMessage(err))
			return
		}
		propertyID, err := primitive.ObjectIDFromHex(req.PropertyID)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, msgInvalidProperty)
			return
		}

		if _, err := props.FindByID(r.Context(), propertyID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeFailure(w, http.StatusNotFound, msgPropertyNotFound)
				return
			}
			log.Error().Err(err).Str("property", propertyID.Hex()).Msg("lookup failed")
			writeFailure(w, http.StatusInternalServerError, err.Error())
			return
		}

		fav := &models.Favorite{UserID: actor, PropertyID: propertyID, CreatedAt: time.Now().UTC()}
		if err := favorites.Add(r.Context(), fav); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				writeFailure(w, http.StatusConflict, "Property is already in favorites")
				return
			}
			log.Error().Err(err).Str("property", propertyID.Hex()).Msg("failed to add favorite")
			writeFailure(w, http.StatusInternalServerError, "Failed to add property to favorites")
			return
		}

		writeJSON(w, http.StatusCreated, models.APIResponse{
			Success: true,
			Message: "Property added to favorites",
			Data:    fav,
		})
	}
}

func GetFavorites(favorites store.FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}

		properties, err := favorites.Properties(r.Context(), actor)
		if err != nil {
			log.Error().Err(err).Str("user", actor.Hex()).Msg("failed to fetch favorite properties")
			writeFailure(w, http.StatusInternalServerError, "Failed to fetch favorite properties")
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Fetched favorite properties",
			Data:    properties,
		})
	}
}

func DeleteFavorite(favorites store.FavoriteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}

		propertyID, err := pathID(r, "propertyID")
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid property ID format")
			return
		}

		if err := favorites.Remove(r.Context(), actor, propertyID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeFailure(w, http.StatusNotFound, "Favorite not found")
				return
			}
			log.Error().Err(err).Str("property", propertyID.Hex()).Msg("failed to remove favorite")
			writeFailure(w, http.StatusInternalServerError, "Failed to remove property from favorites")
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Success: true,
			Message: "Property removed from favorites",
		})
	}
}
