package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"example.com/clyqfeed/internal/metrics"
	"example.com/clyqfeed/internal/middleware"
	"example.com/clyqfeed/internal/models"
)

const maxBodyBytes = 1 << 20 // one megabyte

const msgInvalidBody = "Invalid request body"

// --- HTTP Handlers ---

// rootHandler is the liveness probe.
func (s *Server) rootHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Clyq Backend is running 🚀"})
}

func (s *Server) trendingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.TrendingEvents())
}

func (s *Server) upcomingHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.UpcomingEvents())
}

// listPostsHandler returns the feed, newest first.
func (s *Server) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Posts())
}

// createPostHandler appends a post to the feed.
// Expects JSON body: {"content": "..."}
// Returns 201 with the created post, or 400 {"error": "..."}.
func (s *Server) createPostHandler(w http.ResponseWriter, r *http.Request) {
	body, err := readCreatePost(w, r)
	if err != nil {
		logg.Info("http/posts", "Rejected request body: "+err.Error())
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	// the placeholder identity is applied here and nowhere deeper
	author, ok := middleware.AuthorFromContext(r.Context())
	if !ok {
		author = s.cfg.PlaceholderAuthor
	}

	post, err := s.store.AddPost(models.NewPost{Content: body.Content, Author: author})
	if err != nil {
		if models.IsValidationError(err) {
			logg.Info("http/posts", "Validation failed: "+err.Error())
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logg.Error("http/posts", "Failed to add post", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.metrics.PostsCreated.Inc()

	// publishing is best-effort and never changes the response
	pubErr := s.publisher.Publish(r.Context(), post)
	s.metrics.EventsPublished.WithLabelValues(metrics.Result(pubErr)).Inc()
	if pubErr != nil {
		logg.Error("http/posts", fmt.Sprintf("Failed to publish post %d", post.ID), pubErr)
	}

	logg.Info("http/posts", fmt.Sprintf("Post %d created", post.ID))
	writeJSON(w, http.StatusCreated, post)
}

// readCreatePost decodes a single JSON value. A body that is empty or not declared
// as application/json decodes to the zero request so that validation reports the
// missing content.
func readCreatePost(w http.ResponseWriter, r *http.Request) (models.CreatePostRequest, error) {
	var req models.CreatePostRequest

	if !isJSON(r.Header.Get("Content-Type")) {
		return req, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		return req, err
	}

	// make sure only one JSON value in payload
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return req, errors.New("body must only contain a single JSON value")
	}
	return req, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		logg.Error("http", "Failed to encode response", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logg.Error("http", "Failed to write response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
