package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/rental_listing_platform/cache"
	"github.com/dcode-github/rental_listing_platform/middleware"
	"github.com/dcode-github/rental_listing_platform/models"
)

const maxJSONBody = 1 << 20

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.MessageResponse{Message: msg})
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, models.APIResponse{Success: false, Message: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return json.NewDecoder(r.Body).Decode(dst)
}

func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(mux.Vars(r)[name])
}

// actorOf returns the authenticated user id. Routes that call it sit behind
// middleware.Auth, so a missing actor means the route table is miswired.
func actorOf(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	actor, ok := middleware.Actor(r.Context())
	if !ok {
		log.Error().Str("path", r.URL.Path).Msg("actor missing in context")
		writeMessage(w, http.StatusUnauthorized, "User ID missing in context")
	}
	return actor, ok
}

// validationMessage flattens validator errors into one client-facing line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

// cachedJSON serves a list response from the listing cache when present,
// otherwise runs load and caches 200 responses.
func cachedJSON(w http.ResponseWriter, r *http.Request, c *cache.Listings, route string, load func() (int, interface{}, error)) {
	key := cache.Key(route, r.URL.Query())
	if body, ok := c.Get(r.Context(), key); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		_, _ = w.Write(body)
		return
	}

	status, payload, err := load()
	if err != nil {
		log.Error().Err(err).Str("route", route).Msg("listing query failed")
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("route", route).Msg("failed to marshal listing")
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if status == http.StatusOK {
		c.Set(r.Context(), key, body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
