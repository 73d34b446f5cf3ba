// Package httpapi exposes the services over HTTP with a chi router.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/filesmanager/internal/common"
	"github.com/dmitrijs2005/filesmanager/internal/logging"
	"github.com/dmitrijs2005/filesmanager/internal/server/auth"
	"github.com/dmitrijs2005/filesmanager/internal/server/models"
	"github.com/dmitrijs2005/filesmanager/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// fileResponse is the public view of a node. The content key stays
// server-side.
type fileResponse struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Name      string          `json:"name"`
	Type      models.FileType `json:"type"`
	ParentID  string          `json:"parentId"`
	IsPublic  bool            `json:"isPublic"`
	CreatedAt time.Time       `json:"createdAt"`
}

func toFileResponse(f *models.File) fileResponse {
	return fileResponse{
		ID:        f.ID,
		UserID:    f.UserID,
		Name:      f.Name,
		Type:      f.Type,
		ParentID:  f.ParentID,
		IsPublic:  f.IsPublic,
		CreatedAt: f.CreatedAt,
	}
}

type healthResponse struct {
	Status   string          `json:"status"`
	Services map[string]bool `json:"services"`
}

type statsResponse struct {
	Users     int64     `json:"users"`
	Files     int64     `json:"files"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler serves every route of the API.
type Handler struct {
	users          *services.UserService
	files          *services.FileService
	system         *services.SystemService
	guard          *auth.Guard
	maxUploadBytes int64
	logger         logging.Logger
}

func NewHandler(us *services.UserService, fs *services.FileService, ss *services.SystemService,
	guard *auth.Guard, maxUploadBytes int64, logger logging.Logger) *Handler {
	return &Handler{
		users:          us,
		files:          fs,
		system:         ss,
		guard:          guard,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With("component", "http_handler"),
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeError(w, err)
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body too large: %w", common.ErrInvalidArgument)
		}
		return fmt.Errorf("invalid request body: %w", common.ErrInvalidArgument)
	}
	return nil
}

// currentUser returns the user set by RequireUser.
func currentUser(r *http.Request) *models.User {
	u, _ := auth.UserFromContext(r.Context())
	return u
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := h.system.Health(r.Context())
	if !health.OK {
		writeJSON(w, http.StatusInternalServerError, healthResponse{Status: "Error", Services: health.Services})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK", Services: health.Services})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.system.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Users: st.Users, Files: st.Files, Timestamp: st.Timestamp})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if err := decodeBody(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	u, err := h.users.Register(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{ID: u.ID, Email: u.Email})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		h.fail(w, r, common.ErrorUnauthorized)
		return
	}

	token, err := h.users.Login(r.Context(), email, password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Logout(r.Context(), r.Header.Get(common.TokenHeaderName)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	writeJSON(w, http.StatusOK, userResponse{ID: u.ID, Email: u.Email})
}

func (h *Handler) CreateFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var in services.CreateFileInput
	if err := decodeBody(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}

	f, err := h.files.Create(r.Context(), currentUser(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toFileResponse(f))
}

func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	f, err := h.files.GetByID(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFileResponse(f))
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	in := services.ListFilesInput{ParentID: r.URL.Query().Get("parentId")}

	if p := r.URL.Query().Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil {
			h.fail(w, r, fmt.Errorf("invalid page: %w", common.ErrInvalidArgument))
			return
		}
		in.Page = page
	}

	list, err := h.files.List(r.Context(), currentUser(r), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := make([]fileResponse, 0, len(list))
	for _, f := range list {
		resp = append(resp, toFileResponse(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, true)
}

func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublic(w, r, false)
}

func (h *Handler) setPublic(w http.ResponseWriter, r *http.Request, value bool) {
	f, err := h.files.SetPublic(r.Context(), currentUser(r), chi.URLParam(r, "id"), value)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toFileResponse(f))
}

// FileData serves file bytes. Anonymous callers may read public files; an
// invalid token counts as anonymous.
func (h *Handler) FileData(w http.ResponseWriter, r *http.Request) {
	requester := h.guard.OptionalUser(r.Context(), r.Header.Get(common.TokenHeaderName))

	fc, err := h.files.Serve(r.Context(), requester, chi.URLParam(r, "id"), r.URL.Query().Get("size"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", fc.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(fc.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(fc.Data)
}
