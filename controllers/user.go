package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dcode-github/rental_listing_platform/media"
	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
)

const msgUserNotFound = "User not found"

func GetUserInfo(users store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}

		user, err := users.FindByID(r.Context(), actor)
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("user", actor.Hex()).Msg("user lookup failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, user)
	}
}

func UpdateUser(users store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}

		var update models.UserUpdate
		if err := decodeJSON(w, r, &update); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := validate.Struct(update); err != nil {
			writeMessage(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		user, err := users.FindByID(r.Context(), actor)
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("user", actor.Hex()).Msg("user lookup failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		if update.Name != nil {
			user.Name = strings.TrimSpace(*update.Name)
		}
		if update.Phone != nil {
			user.Phone = strings.TrimSpace(*update.Phone)
		}
		user.UpdatedAt = time.Now().UTC()

		if err := users.Replace(r.Context(), user); err != nil {
			log.Error().Err(err).Str("user", actor.Hex()).Msg("user update failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{"message": "User updated successfully", "user": user})
	}
}

// UploadProfilePicture replaces the user's picture. The previous asset is
// deleted once the new URL is saved.
func UploadProfilePicture(users store.UserStore, uploader media.Uploader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+1<<20)
		file, header, err := r.FormFile("profilePicture")
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer file.Close()

		if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
			writeMessage(w, http.StatusBadRequest, "Invalid file type. Only image files are allowed.")
			return
		}
		if header.Size > MaxImageSize {
			writeMessage(w, http.StatusBadRequest, "File too large")
			return
		}

		user, err := users.FindByID(r.Context(), actor)
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, msgUserNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("user", actor.Hex()).Msg("user lookup failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		asset, err := uploader.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
		if err != nil {
			log.Error().Err(err).Str("user", actor.Hex()).Msg("profile picture upload failed")
			writeMessage(w, http.StatusInternalServerError, "Failed to upload profile picture")
			return
		}

		previous := user.ProfilePicture
		user.ProfilePicture = asset.URL
		user.UpdatedAt = time.Now().UTC()
		if err := users.Replace(r.Context(), user); err != nil {
			log.Error().Err(err).Str("user", actor.Hex()).Msg("saving profile picture failed")
			discardAssets(r.Context(), uploader, []media.Asset{asset})
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		if id := media.AssetID(previous); id != "" {
			discardAssets(r.Context(), uploader, []media.Asset{{ID: id, URL: previous}})
		}

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":        "Profile picture updated successfully",
			"profilePicture": asset.URL,
		})
	}
}

func TestToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Token is valid", "userId": actor.Hex()})
	}
}
