package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
)

func CreateContact(contacts store.ContactStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c models.Contact
		if err := decodeJSON(w, r, &c); err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		c.Name = strings.TrimSpace(c.Name)
		c.Email = strings.TrimSpace(c.Email)
		c.Message = strings.TrimSpace(c.Message)
		if err := validate.Struct(c); err != nil {
			writeFailure(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		c.ID = primitive.NilObjectID
		c.CreatedAt = time.Now().UTC()
		if err := contacts.Create(r.Context(), &c); err != nil {
			log.Error().Err(err).Msg("contact insert failed")
			writeFailure(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, models.APIResponse{Success: true, Message: "Message received", Data: c})
	}
}

func GetContacts(contacts store.ContactStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorOf(w, r); !ok {
			return
		}

		data, err := contacts.FindAll(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("contact query failed")
			writeFailure(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: data})
	}
}
