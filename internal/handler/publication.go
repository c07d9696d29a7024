package handler

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/karen-colon/b3-backend-social-net/internal/httputil"
	"github.com/karen-colon/b3-backend-social-net/internal/logger"
	"github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/service"
	"github.com/karen-colon/b3-backend-social-net/internal/transport/http/middleware"
)

type PublicationHandler struct {
	publicationService *service.PublicationService
	media              MediaUploader
	log                *logrus.Entry
}

func NewPublicationHandler(publicationService *service.PublicationService, media MediaUploader) *PublicationHandler {
	return &PublicationHandler{
		publicationService: publicationService,
		media:              media,
		log:                logger.For("publication_handler"),
	}
}

// Create handles POST /api/publication/new-publication
func (h *PublicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	var req model.CreatePublicationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	publication, err := h.publicationService.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTextRequired):
			httputil.WriteBadRequest(w, "Publication text is required")
		case errors.Is(err, model.ErrTextTooLong):
			httputil.WriteBadRequest(w, "Publication text too long (max 1000 characters)")
		default:
			h.log.WithError(err).WithField("user_id", userID).Error("Create publication failed")
			httputil.WriteInternalError(w, "Failed to save publication")
		}
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Publication created", httputil.Payload{"publication": publication})
}

// Show handles GET /api/publication/show-publication/{id}
func (h *PublicationHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid publication ID")
		return
	}

	publication, err := h.publicationService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrPublicationNotFound) {
			httputil.WriteNotFound(w, "Publication not found")
			return
		}
		h.log.WithError(err).WithField("publication_id", id).Error("Show publication failed")
		httputil.WriteInternalError(w, "Failed to load publication")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "", httputil.Payload{"publication": publication})
}

// Delete handles DELETE /api/publication/delete-publication/{id}
// Only the owner can delete; anyone else sees the same 404 as a missing id.
func (h *PublicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireCaller(w, r)
	if !ok {
		return
	}

	id, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid publication ID")
		return
	}

	if err := h.publicationService.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, model.ErrPublicationNotFound) {
			httputil.WriteNotFound(w, "Publication not found")
			return
		}
		h.log.WithError(err).WithFields(logrus.Fields{"user_id": userID, "publication_id": id}).Error("Delete publication failed")
		httputil.WriteInternalError(w, "Failed to delete publication")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Publication deleted", httputil.Payload{"publication_id": id})
}

// ListByUser handles GET /api/publication/publications-user/{id}[/{page}]
func (h *PublicationHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid user ID")
		return
	}

	page, err := pageParams(r, model.DefaultPageSize)
	if err != nil {
		writePageError(w)
		return
	}

	list, err := h.publicationService.ListByUser(r.Context(), userID, page)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("List publications failed")
		httputil.WriteInternalError(w, "Failed to list publications")
		return
	}
	if len(list.Publications) == 0 {
		httputil.WriteNotFound(w, "No publications found")
		return
	}

	payload := pagePayload(page, list.Total)
	payload["publications"] = list.Publications
	httputil.WriteSuccess(w, http.StatusOK, "", payload)
}

// UploadMedia handles POST /api/publication/upload-media/{id}
// The publication must exist before the body is read.
func (h *PublicationHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid publication ID")
		return
	}

	exists, err := h.publicationService.Exists(r.Context(), id)
	if err != nil {
		h.log.WithError(err).WithField("publication_id", id).Error("Publication lookup failed")
		httputil.WriteInternalError(w, "Failed to upload media")
		return
	}
	if !exists {
		httputil.WriteNotFound(w, "Publication not found")
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

	result, err := h.media.UploadPublicationMedia(r.Context(), file, header)
	if err != nil {
		if writeUploadError(w, err) {
			return
		}
		h.log.WithError(err).WithField("publication_id", id).Error("Media upload failed")
		httputil.WriteInternalError(w, "Failed to upload media")
		return
	}

	publication, err := h.publicationService.AttachMedia(r.Context(), id, result.URL)
	if err != nil {
		if errors.Is(err, model.ErrPublicationNotFound) {
			httputil.WriteNotFound(w, "Publication not found")
			return
		}
		h.log.WithError(err).WithField("publication_id", id).Error("Failed to save media reference")
		httputil.WriteInternalError(w, "Failed to update publication")
		return
	}

	httputil.WriteSuccess(w, http.StatusOK, "Media uploaded", httputil.Payload{
		"publication": publication,
		"file":        result.URL,
	})
}

// Media handles GET /api/publication/media/{id} by redirecting to the stored file.
func (h *PublicationHandler) Media(w http.ResponseWriter, r *http.Request) {
	id, ok := parseIDParam(r, "id")
	if !ok {
		httputil.WriteBadRequest(w, "Invalid publication ID")
		return
	}

	publication, err := h.publicationService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrPublicationNotFound) {
			httputil.WriteNotFound(w, "Publication not found")
			return
		}
		h.log.WithError(err).WithField("publication_id", id).Error("Media lookup failed")
		httputil.WriteInternalError(w, "Failed to load media")
		return
	}
	if publication.File == nil || *publication.File == "" {
		httputil.WriteNotFound(w, model.ErrMediaNotFound.Error())
		return
	}

	http.Redirect(w, r, *publication.File, http.StatusFound)
}

// Feed handles GET /api/publication/feed[/{page}]
func (h *PublicationHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteNotFound(w, "User not identified")
		return
	}

	page, err := pageParams(r, model.DefaultPageSize)
	if err != nil {
		writePageError(w)
		return
	}

	list, following, err := h.publicationService.Feed(r.Context(), userID, page)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoFollowing):
			httputil.WriteNotFound(w, "You don't follow anyone yet, follow someone to see their publications")
		case errors.Is(err, model.ErrNoPublications):
			httputil.WriteNotFound(w, "No publications to show")
		default:
			h.log.WithError(err).WithField("user_id", userID).Error("Feed failed")
			httputil.WriteInternalError(w, "Failed to load feed")
		}
		return
	}

	payload := pagePayload(page, list.Total)
	payload["publications"] = list.Publications
	payload["following"] = following
	httputil.WriteSuccess(w, http.StatusOK, "", payload)
}
