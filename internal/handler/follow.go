package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/karen-colon/b3-backend-social-net/internal/httputil"
	"github.com/karen-colon/b3-backend-social-net/internal/logger"
	"github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/service"
)

type FollowHandler struct {
	followService *service.FollowService
	log           *logrus.Entry
}

func NewFollowHandler(followService *service.FollowService) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		log:           logger.For("follow_handler"),
	}
}

// Follow handles POST /api/follow/follow
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req model.FollowRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.followService.Follow(r.Context(), followerID, req.FollowedUser)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "You cannot follow yourself")
		case errors.Is(err, model.ErrAlreadyFollowing):
			httputil.WriteBadRequest(w, "You already follow this user")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User to follow not found")
		default:
			h.log.WithError(err).WithFields(logrus.Fields{"follower": followerID, "followee": req.FollowedUser}).Error("Follow failed")
			httputil.WriteInternalError(w, "Failed to follow user")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Now following user", httputil.Payload{
		"identity": followerID,
		"follow":   result,
	})
}

// Unfollow handles DELETE /api/follow/unfollow/{id}
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	followeeID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	if err := h.followService.Unfollow(r.Context(), followerID, followeeID); err != nil {
		if errors.Is(err, model.ErrNotFollowing) {
			httputil.WriteNotFound(w, "You do not follow this user")
			return
		}
		h.log.WithError(err).WithFields(logrus.Fields{"follower": followerID, "followee": followeeID}).Error("Unfollow failed")
		httputil.WriteInternalError(w, "Failed to unfollow user")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Unfollowed user", nil)
}

// Following handles GET /api/follow/following[/{id}[/{page}]]
func (h *FollowHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.followService.ListFollowing)
}

// Followers handles GET /api/follow/followers[/{id}[/{page}]]
func (h *FollowHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.followService.ListFollowers)
}

type listFollowsFunc func(ctx context.Context, userID int64, page model.Page) (*model.FollowList, error)

func (h *FollowHandler) list(w http.ResponseWriter, r *http.Request, fetch listFollowsFunc) {
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

	page, err := pageParams(r, model.DefaultPageSize)
	if err != nil {
		writePageError(w)
		return
	}

	list, err := fetch(r.Context(), target, page)
	if err != nil {
		h.log.WithError(err).WithField("user_id", target).Error("List follows failed")
		httputil.WriteInternalError(w, "Failed to list follows")
		return
	}

	ids := h.followService.ListFollowIDs(r.Context(), callerID)
	payload := pagePayload(page, list.Total)
	payload["follows"] = list.Follows
	payload["users_following"] = ids.Following
	payload["user_follow_me"] = ids.Followers
	httputil.WriteSuccess(w, http.StatusOK, "", payload)
}
