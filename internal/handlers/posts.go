package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/BorisDmv/posts-api/internal/auth"
	"github.com/BorisDmv/posts-api/internal/models"
	"github.com/BorisDmv/posts-api/internal/policy"
	"github.com/BorisDmv/posts-api/internal/validation"
)

const maxBodyBytes = 1 << 20

// maxPage keeps (page-1)*PageSize within int.
const maxPage = math.MaxInt / models.PageSize

// PostStore is the persistence the handlers need. GetPostByID and
// UpdatePost return nil, nil when the row does not exist.
type PostStore interface {
	ListPublishedPosts(ctx context.Context, limit, offset int) ([]models.Post, int, error)
	GetPostByID(ctx context.Context, id int64) (*models.Post, error)
	CreatePost(ctx context.Context, fields models.PostFields) (*models.Post, error)
	UpdatePost(ctx context.Context, id int64, fields models.PostFields) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

type PostsHandler struct {
	store     PostStore
	policy    policy.Authorizer
	validator *validation.Validator
}

// PostsResponse is one page of published posts.
type PostsResponse struct {
	Data        []models.Post `json:"data"`
	CurrentPage int           `json:"current_page"`
	PerPage     int           `json:"per_page"`
	Total       int           `json:"total"`
	LastPage    int           `json:"last_page"`
	From        *int          `json:"from"`
	To          *int          `json:"to"`
}

func NewPostsHandler(store PostStore, authorizer policy.Authorizer) *PostsHandler {
	return &PostsHandler{
		store:     store,
		policy:    authorizer,
		validator: validation.New(),
	}
}

func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := min(parsePositiveInt(r.URL.Query().Get("page"), 1), maxPage)
	offset := (page - 1) * models.PageSize

	posts, total, err := h.store.ListPublishedPosts(r.Context(), models.PageSize, offset)
	if err != nil {
		log.Printf("list posts: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to load posts")
		return
	}

	respondJSON(w, http.StatusOK, newPostsResponse(posts, page, total))
}

// Show answers 404 for unpublished posts exactly as for missing ones.
func (h *PostsHandler) Show(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	if !post.IsPublished() {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	var req StorePostRequest
	present, ok := h.bind(w, r, &req)
	if !ok {
		return
	}

	created, err := h.store.CreatePost(r.Context(), req.Fields(present))
	if err != nil {
		log.Printf("create post: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to create post")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	if !h.policy.Allows(actor, policy.ActionUpdate, post) {
		respondError(w, http.StatusForbidden, "This action is unauthorized.")
		return
	}

	var req UpdatePostRequest
	present, ok := h.bind(w, r, &req)
	if !ok {
		return
	}

	updated, err := h.store.UpdatePost(r.Context(), post.ID, req.Fields(present))
	if err != nil {
		log.Printf("update post %d: %v", post.ID, err)
		respondError(w, http.StatusInternalServerError, "failed to update post")
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	post, ok := h.loadPost(w, r)
	if !ok {
		return
	}
	if !h.policy.Allows(actor, policy.ActionDelete, post) {
		respondError(w, http.StatusForbidden, "This action is unauthorized.")
		return
	}

	if err := h.store.DeletePost(r.Context(), post.ID); err != nil {
		log.Printf("delete post %d: %v", post.ID, err)
		respondError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

// loadPost resolves the {id} path parameter. It writes the 404 itself;
// callers return when ok is false.
func (h *PostsHandler) loadPost(w http.ResponseWriter, r *http.Request) (*models.Post, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusNotFound, "Post not found")
		return nil, false
	}
	post, err := h.store.GetPostByID(r.Context(), id)
	if err != nil {
		log.Printf("get post %d: %v", id, err)
		respondError(w, http.StatusInternalServerError, "failed to load post")
		return nil, false
	}
	if post == nil {
		respondError(w, http.StatusNotFound, "Post not found")
		return nil, false
	}
	return post, true
}

func (h *PostsHandler) bind(w http.ResponseWriter, r *http.Request, dst any) (validation.Present, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		respondError(w, http.StatusBadRequest, "invalid body")
		return nil, false
	}

	present, err := h.validator.Bind(body, dst)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			respondJSON(w, http.StatusUnprocessableEntity, verr)
		case errors.Is(err, validation.ErrMalformedBody):
			respondError(w, http.StatusBadRequest, "invalid body")
		default:
			log.Printf("bind request: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to read request")
		}
		return nil, false
	}
	return present, true
}

func requireActor(w http.ResponseWriter, r *http.Request) (auth.Actor, bool) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthenticated.")
	}
	return actor, ok
}

func newPostsResponse(posts []models.Post, page, total int) PostsResponse {
	resp := PostsResponse{
		Data:        posts,
		CurrentPage: page,
		PerPage:     models.PageSize,
		Total:       total,
		LastPage:    1,
	}
	if total > 0 {
		resp.LastPage = (total + models.PageSize - 1) / models.PageSize
	}
	if len(posts) > 0 {
		from := (page-1)*models.PageSize + 1
		to := from + len(posts) - 1
		resp.From, resp.To = &from, &to
	}
	return resp
}

func parsePositiveInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
