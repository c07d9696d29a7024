package handler

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/karen-colon/b3-backend-social-net/internal/httputil"
	"github.com/karen-colon/b3-backend-social-net/internal/model"
	"github.com/karen-colon/b3-backend-social-net/internal/transport/http/middleware"
	"github.com/karen-colon/b3-backend-social-net/internal/validation"
)

// multipartOverhead leaves room for boundaries and part headers around a max-size file.
const multipartOverhead = 64 << 10

var errInvalidPage = errors.New("invalid page")

// requireCaller returns the authenticated user id, writing a 401 when there is none.
func requireCaller(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, model.ErrNotAuthenticated.Error())
	}
	return id, ok
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// It writes the 400 response itself and reports false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}

	if err := validation.Struct(dst); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			httputil.WriteValidationError(w, verr.Message, verr.Details)
			return false
		}
		httputil.WriteBadRequest(w, "Invalid request body")
		return false
	}

	return true
}

// parseIDParam reads a positive integer URL parameter.
func parseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pageParams reads the optional {page} path segment and ?limit= query value.
func pageParams(r *http.Request, defaultLimit int) (model.Page, error) {
	page := model.Page{Page: 1, Limit: defaultLimit}

	if raw := chi.URLParam(r, "page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return page, errInvalidPage
		}
		page.Page = n
	}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > model.MaxPageSize {
			return page, errInvalidPage
		}
		page.Limit = n
	}

	return page, nil
}

func writePageError(w http.ResponseWriter) {
	httputil.WriteBadRequest(w, "Page must be a positive number and limit between 1 and 100")
}

// pagePayload is the pagination part shared by every list response.
func pagePayload(page model.Page, total int) httputil.Payload {
	return httputil.Payload{
		"total": total,
		"pages": model.Pages(total, page.Limit),
		"page":  page.Page,
		"limit": page.Limit,
	}
}

// formFile returns the upload in field file0. The body is capped at the upload
// limit plus multipart overhead, so oversized requests fail before anything is stored.
func formFile(w http.ResponseWriter, r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	r.Body = http.MaxBytesReader(w, r.Body, model.MaxUploadSizeBytes+multipartOverhead)

	if err := r.ParseMultipartForm(model.MaxUploadSizeBytes + multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, model.ErrFileTooLarge
		}
		return nil, nil, model.ErrFileRequired
	}

	file, header, err := r.FormFile(model.UploadFormField)
	if err != nil {
		return nil, nil, model.ErrFileRequired
	}
	if header.Size > model.MaxUploadSizeBytes {
		file.Close()
		return nil, nil, model.ErrFileTooLarge
	}
	return file, header, nil
}

// writeUploadError maps upload validation failures to 400 responses.
func writeUploadError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, model.ErrFileRequired):
		httputil.WriteBadRequestWithCode(w, model.CodeFileRequired, "No file was uploaded in field "+model.UploadFormField)
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "File exceeds the 1MB limit")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Only jpeg, png and gif images are allowed")
	default:
		return false
	}
	return true
}

func hasParam(r *http.Request, name string) bool {
	return chi.URLParam(r, name) != ""
}
