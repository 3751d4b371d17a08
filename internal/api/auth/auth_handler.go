package auth

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/profilehub/profilehub/app/observability/metrics"
	"github.com/profilehub/profilehub/internal/api"
	"github.com/profilehub/profilehub/internal/types"
)

// AvatarStore persists an uploaded avatar asset and returns an opaque
// reference path. The authentication core never validates the ref.
type AvatarStore interface {
	Save(file multipart.File, header *multipart.FileHeader) (string, error)
}

type AuthHandler struct {
	authService AuthService
	avatars     AvatarStore
	logger      *slog.Logger
}

func NewAuthHandler(authService AuthService, avatars AvatarStore, logger *slog.Logger) *AuthHandler {
	metrics.InitAppMetrics()
	return &AuthHandler{
		authService: authService,
		avatars:     avatars,
		logger:      logger,
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// saveAvatar stores the optional profilePicture part and returns its ref,
// or nil when the part is absent.
func (h *AuthHandler) saveAvatar(r *http.Request) (*string, error) {
	file, header, err := r.FormFile("profilePicture")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ref, err := h.avatars.Save(file, header)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Register"))
	metrics.Get().RegisterRequestsTotal.Add(ctx, 1)

	var req RegisterRequest
	if isMultipart(r) {
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		req.Username = r.FormValue("username")
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")

		ref, err := h.saveAvatar(r)
		if err != nil {
			l.WarnContext(ctx, "Avatar upload rejected", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		req.ProfilePictureRef = ref
	} else if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.Register(ctx, req.Username, req.Email, req.Password, req.ProfilePictureRef)
	if err != nil {
		h.respondError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))
	metrics.Get().LoginRequestsTotal.Add(ctx, 1)

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.respondError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, LoginResponse{AccessToken: token})
}

func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GetProfile"))

	current, ok := UserFromContext(ctx)
	if !ok {
		l.ErrorContext(ctx, "User not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.authService.GetProfile(ctx, current.ID)
	if err != nil {
		h.respondError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "UpdateProfile"))

	current, ok := UserFromContext(ctx)
	if !ok {
		l.ErrorContext(ctx, "User not found in context")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var params types.UpdateProfileParams
	if isMultipart(r) {
		if err := r.ParseMultipartForm(4 << 20); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid multipart form")
			return
		}
		// Only fields present in the form are applied.
		if v, ok := formValue(r, "username"); ok {
			params.Username = &v
		}
		if v, ok := formValue(r, "email"); ok {
			params.Email = &v
		}
		if v, ok := formValue(r, "password"); ok {
			params.Password = &v
		}

		ref, err := h.saveAvatar(r)
		if err != nil {
			l.WarnContext(ctx, "Avatar upload rejected", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if ref != nil {
			params.ProfilePictureRef = ref
		}
	} else if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.authService.UpdateProfile(ctx, current.ID, params)
	if err != nil {
		h.respondError(w, r, l, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, user)
}

func formValue(r *http.Request, key string) (string, bool) {
	if r.MultipartForm == nil {
		return "", false
	}
	vals, ok := r.MultipartForm.Value[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// respondError maps domain errors to HTTP status codes.
func (h *AuthHandler) respondError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrValidation):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrInvalidCredentials):
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, types.ErrUnauthenticated):
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
	case errors.Is(err, types.ErrConflict):
		api.ErrorResponse(w, r, http.StatusConflict, "Email already registered")
	case errors.Is(err, types.ErrStoreUnavailable):
		l.ErrorContext(r.Context(), "Store unavailable", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		l.ErrorContext(r.Context(), "Unhandled error", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}
