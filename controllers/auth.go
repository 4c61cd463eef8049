package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dcode-github/rental_listing_platform/middleware"
	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
	"github.com/dcode-github/rental_listing_platform/utils"
)

type Response struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// Tokens holds what login needs to issue a session.
type Tokens struct {
	Key          []byte
	TTL          time.Duration
	SecureCookie bool
}

func RegisterUser(users store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Warn().Err(err).Msg("error decoding user data")
			writeMessage(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		req.Name = strings.TrimSpace(req.Name)
		if err := validate.Struct(req); err != nil {
			writeMessage(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		if _, err := users.FindByEmail(r.Context(), req.Email); err == nil {
			writeMessage(w, http.StatusConflict, "Email already exists")
			return
		} else if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Msg("user lookup failed")
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}

		hashedPwd, err := utils.HashPassword(req.Password)
		if err != nil {
			log.Error().Err(err).Msg("error hashing password")
			writeMessage(w, http.StatusInternalServerError, "Failed to hash password")
			return
		}

		now := time.Now().UTC()
		user := &models.User{
			Name:      req.Name,
			Email:     req.Email,
			Password:  hashedPwd,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := users.Create(r.Context(), user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				writeMessage(w, http.StatusConflict, "Email already exists")
				return
			}
			log.Error().Err(err).Msg("error inserting user")
			writeMessage(w, http.StatusInternalServerError, "Failed to create user")
			return
		}

		log.Info().Str("user", user.ID.Hex()).Msg("user registered")
		writeJSON(w, http.StatusCreated, Response{Message: "User registered successfully"})
	}
}

func LoginUser(users store.UserStore, tokens Tokens) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var credentials models.LoginRequest
		if err := decodeJSON(w, r, &credentials); err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		credentials.Email = strings.ToLower(strings.TrimSpace(credentials.Email))
		if err := validate.Struct(credentials); err != nil {
			writeMessage(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		user, err := users.FindByEmail(r.Context(), credentials.Email)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				log.Error().Err(err).Msg("user lookup failed")
			}
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		if !utils.CheckPasswordHash(credentials.Password, user.Password) {
			log.Info().Str("user", user.ID.Hex()).Msg("invalid credentials")
			writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		token, err := utils.GenerateJWT(tokens.Key, user.ID.Hex(), tokens.TTL)
		if err != nil {
			log.Error().Err(err).Msg("error generating JWT token")
			writeMessage(w, http.StatusInternalServerError, "Failed to generate token")
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.TokenCookie,
			Value:    token,
			Path:     "/",
			Expires:  time.Now().Add(tokens.TTL),
			HttpOnly: true,
			Secure:   tokens.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, Response{Message: "Login successful", Token: token})
	}
}

func LogoutUser(tokens Tokens) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.TokenCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   tokens.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
		writeJSON(w, http.StatusOK, Response{Message: "Logged out"})
	}
}
