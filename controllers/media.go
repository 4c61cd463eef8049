package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/dcode-github/rental_listing_platform/media"
)

// ServeMedia streams a stored asset with its recorded content type.
func ServeMedia(opener media.Opener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		obj, err := opener.Open(r.Context(), id)
		if errors.Is(err, media.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Media not found")
			return
		}
		if err != nil {
			log.Error().Err(err).Str("asset", id).Msg("opening asset failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		defer obj.Close()

		w.Header().Set("Content-Type", obj.ContentType)
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
		w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		if _, err := io.Copy(w, obj); err != nil {
			log.Warn().Err(err).Str("asset", id).Msg("streaming asset interrupted")
		}
	}
}
