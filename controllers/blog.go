package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dcode-github/rental_listing_platform/models"
	"github.com/dcode-github/rental_listing_platform/store"
	"github.com/dcode-github/rental_listing_platform/utils"
)

const msgBlogNotFound = "Blog not found"

func GetBlogs(blogs store.BlogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := blogs.FindAll(r.Context())
		if err != nil {
			log.Error().Err(err).Msg("blog query failed")
			writeFailure(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: data})
	}
}

func GetBlogBySlug(blogs store.BlogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blog, err := blogs.FindBySlug(r.Context(), mux.Vars(r)["slug"])
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, msgBlogNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Msg("blog lookup failed")
			writeFailure(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Data: blog})
	}
}

// CreateBlog publishes a post. The slug comes from the title plus a short
// id suffix, so equal titles do not collide.
func CreateBlog(blogs store.BlogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}

		var req models.BlogRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		if err := validate.Struct(req); err != nil {
			writeFailure(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		id := primitive.NewObjectID()
		hex := id.Hex()
		blog := &models.Blog{
			ID:        id,
			Title:     req.Title,
			Slug:      utils.Slugify(req.Title, hex[len(hex)-6:]),
			Content:   req.Content,
			Author:    actor,
			Image:     req.Image,
			CreatedAt: time.Now().UTC(),
		}
		if err := blogs.Create(r.Context(), blog); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				writeFailure(w, http.StatusConflict, "A blog with this slug already exists")
				return
			}
			log.Error().Err(err).Msg("blog insert failed")
			writeFailure(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, models.APIResponse{Success: true, Data: blog})
	}
}

func DeleteBlog(blogs store.BlogStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorOf(w, r)
		if !ok {
			return
		}

		id, err := pathID(r, "id")
		if err != nil {
			writeFailure(w, http.StatusBadRequest, "Invalid blog ID")
			return
		}

		blog, err := blogs.FindByID(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, msgBlogNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("blog", id.Hex()).Msg("blog lookup failed")
			writeFailure(w, http.StatusInternalServerError, err.Error())
			return
		}
		if blog.Author != actor {
			writeFailure(w, http.StatusForbidden, "Unauthorized: You are not the author of this blog")
			return
		}

		if err := blogs.Delete(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("blog", id.Hex()).Msg("blog delete failed")
			writeFailure(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, models.APIResponse{Success: true, Message: "Blog deleted"})
	}
}
