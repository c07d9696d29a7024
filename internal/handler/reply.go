package handler

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/karen-colon/b3-backend-social-net/internal/httputil"
	"github.com/karen-colon/b3-backend-social-net/internal/logger"
	"github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/service"
)

type ReplyHandler struct {
	replyService *service.ReplyService
	log          *logrus.Entry
}

func NewReplyHandler(replyService *service.ReplyService) *ReplyHandler {
	return &ReplyHandler{
		replyService: replyService,
		log:          logger.For("reply_handler"),
	}
}

// Add handles POST /api/publication/add-reply
func (h *ReplyHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req model.AddReplyRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reply, err := h.replyService.Add(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTextRequired):
			httputil.WriteBadRequest(w, "Reply text is required")
		case errors.Is(err, model.ErrTextTooLong):
			httputil.WriteBadRequest(w, "Reply text too long (max 1000 characters)")
		case errors.Is(err, model.ErrPublicationNotFound):
			httputil.WriteNotFound(w, "Publication not found")
		default:
			h.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "publication_id": req.PublicationID}).Error("Add reply failed")
			httputil.WriteInternalError(w, "Failed to save reply")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Reply added", httputil.Payload{"reply": reply})
}

// List handles GET /api/publication/replies/{id}[/{page}]
func (h *ReplyHandler) List(w http.ResponseWriter, r *http.Request) {
	publicationID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid publication ID")
		return
	}

	page, err := pageParams(r, model.DefaultPageSize)
	if err != nil {
		writePageError(w)
		return
	}

	list, err := h.replyService.List(r.Context(), publicationID, page)
	if err != nil {
		if errors.Is(err, model.ErrPublicationNotFound) {
			httputil.WriteNotFound(w, "Publication not found")
			return
		}
		h.log.WithError(err).WithField("publication_id", publicationID).Error("List replies failed")
		httputil.WriteInternalError(w, "Failed to list replies")
		return
	}

	payload := pagePayload(page, list.Total)
	payload["replies"] = list.Replies
	httputil.WriteSuccess(w, http.StatusOK, "", payload)
}
