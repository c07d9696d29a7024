package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/karen-colon/b3-backend-social-net/internal/httputil"
	"github.com/karen-colon/b3-backend-social-net/internal/logger"
	"github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/monitoring"
	"github.com/karen-colon/b3-backend-social-net/internal/service"
)

// MediaUploader stores validated uploads and returns their public URL.
type MediaUploader interface {
	UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
	UploadPublicationMedia(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error)
}

type UserHandler struct {
	userService   *service.UserService
	followService *service.FollowService
	tokenService  *service.TokenService
	media         MediaUploader
	log           *logrus.Entry
}

// NewUserHandler wires the user endpoints. media may be nil when object storage
// is not configured; avatar uploads then fail with 500.
func NewUserHandler(userService *service.UserService, followService *service.FollowService, tokenService *service.TokenService, media MediaUploader) *UserHandler {
	return &UserHandler{
		userService:   userService,
		followService: followService,
		tokenService:  tokenService,
		media:         media,
		log:           logger.For("user_handler"),
	}
}

// Register handles POST /api/user/register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrUserExists) {
			httputil.WriteConflict(w, "A user with this email or nick already exists")
			return
		}
		h.log.WithError(err).Error("Register failed")
		httputil.WriteInternalError(w, "Failed to register user")
		return
	}

	monitoring.RegisterSuccess.Inc()
	httputil.WriteSuccess(w, http.StatusCreated, "User registered", httputil.Payload{"user": user})
}

// Login handles POST /api/user/login
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			monitoring.LoginFailure.WithLabelValues("unknown_email").Inc()
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrInvalidCredentials):
			monitoring.LoginFailure.WithLabelValues("wrong_password").Inc()
			httputil.WriteUnauthorized(w, "Wrong password")
		default:
			monitoring.LoginFailure.WithLabelValues("error").Inc()
			h.log.WithError(err).Error("Login failed")
			httputil.WriteInternalError(w, "Failed to log in")
		}
		return
	}

	token, err := h.tokenService.Issue(user)
	if err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("Failed to issue token")
		httputil.WriteInternalError(w, "Failed to log in")
		return
	}

	monitoring.LoginSuccess.Inc()
	httputil.WriteSuccess(w, http.StatusOK, "Logged in", httputil.Payload{
		"token": token,
		"user":  user.Session(),
	})
}

// Profile handles GET /api/user/profile/{id}
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	userID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		h.log.WithError(err).WithField("user_id", userID).Error("Profile lookup failed")
		httputil.WriteInternalError(w, "Failed to load profile")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", httputil.Payload{
		"user":        user.Public(),
		"follow_info": h.followService.FollowStatus(r.Context(), callerID, userID),
	})
}

// List handles GET /api/user/list[/{page}]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	page, err := pageParams(r, model.DefaultUserPageSize)
	if err != nil {
		writePageError(w)
		return
	}

	list, err := h.userService.List(r.Context(), page)
	if err != nil {
		h.log.WithError(err).Error("List users failed")
		httputil.WriteInternalError(w, "Failed to list users")
		return
	}
	if len(list.Users) == 0 {
		httputil.WriteNotFound(w, "No users found")
		return
	}

	ids := h.followService.ListFollowIDs(r.Context(), callerID)
	payload := pagePayload(page, list.Total)
	payload["users"] = list.Users
	payload["following_users"] = ids.Following
	payload["followers"] = ids.Followers
	httputil.WriteSuccess(w, http.StatusOK, "", payload)
}

// Update handles PUT /api/user/update
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req model.UpdateUserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.userService.Update(r.Context(), callerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrIdentityTaken):
			httputil.WriteBadRequest(w, "Email or nick already in use")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			h.log.WithError(err).WithField("user_id", callerID).Error("Update user failed")
			httputil.WriteInternalError(w, "Failed to update user")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "User updated", httputil.Payload{"user": user})
}

// UploadAvatar handles POST /api/user/upload-avatar
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	file, header, err := formFile(w, r)
	if err != nil {
		writeUploadError(w, err)
		return
	}
	defer file.Close()

	if h.media == nil {
		httputil.WriteInternalError(w, "Media storage is not configured")
		return
	}

	result, err := h.media.UploadAvatar(r.Context(), file, header)
	if err != nil {
		if writeUploadError(w, err) {
			return
		}
		h.log.WithError(err).WithField("user_id", callerID).Error("Avatar upload failed")
		httputil.WriteInternalError(w, "Failed to upload avatar")
		return
	}

	user, err := h.userService.UpdateAvatar(r.Context(), callerID, result.URL)
	if err != nil {
		h.log.WithError(err).WithField("user_id", callerID).Error("Failed to save avatar reference")
		httputil.WriteInternalError(w, "Failed to update avatar")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Avatar updated", httputil.Payload{
		"user": user,
		"file": result.URL,
	})
}

// Avatar handles GET /api/user/avatar/{id} by redirecting to the stored image.
func (h *UserHandler) Avatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		h.log.WithError(err).WithField("user_id", userID).Error("Avatar lookup failed")
		httputil.WriteInternalError(w, "Failed to load avatar")
		return
	}
	// A relative reference is the bundled placeholder, which this API does not serve.
	target, err := url.Parse(user.Image)
	if user.Image == "" || err != nil || !target.IsAbs() {
		httputil.WriteNotFound(w, model.ErrImageNotFound.Error())
		return
	}

	http.Redirect(w, r, user.Image, http.StatusFound)
}

// Counters handles GET /api/user/counters[/{id}]. The target defaults to the caller.
func (h *UserHandler) Counters(w http.ResponseWriter, r *http.Request) {
	callerID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	target := callerID
	if hasParam(r, "id") {
		id, ok := parseIDParam(r, "id")
		if !ok {
			httputil.WriteBadRequest(w, "Invalid user ID")
			return
		}
		target = id
	}

	counters, err := h.followService.Counters(r.Context(), target)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		h.log.WithError(err).WithField("user_id", target).Error("Counters failed")
		httputil.WriteInternalError(w, "Failed to load counters")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", httputil.Payload{
		"user_id":      counters.UserID,
		"following":    counters.Following,
		"followers":    counters.Followers,
		"publications": counters.Publications,
	})
}
