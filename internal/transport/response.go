package transport

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clothing-store/internal/middleware"
	"clothing-store/internal/repository"
	"clothing-store/internal/service"
	"clothing-store/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Guard is a chi middleware applied to a route group.
type Guard = func(http.Handler) http.Handler

const (
	// maxUploadMemory caps the multipart form buffered in memory; larger
	// parts spill to temp files.
	maxUploadMemory = 32 << 20
	dateLayout      = "2006-01-02"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
	{service.ErrInvalidToken, http.StatusUnauthorized},
	{service.ErrCommentingDisabled, http.StatusForbidden},
	{service.ErrNotOrderOwner, http.StatusForbidden},
	{service.ErrInvalidSize, http.StatusBadRequest},
	{service.ErrProductNotInOrder, http.StatusBadRequest},
	{repository.ErrUserNotFound, http.StatusNotFound},
	{repository.ErrProductNotFound, http.StatusNotFound},
	{repository.ErrOrderNotFound, http.StatusNotFound},
	{repository.ErrReviewNotFound, http.StatusNotFound},
	{repository.ErrTagNotFound, http.StatusNotFound},
	{repository.ErrUserAlreadyExists, http.StatusConflict},
	{repository.ErrDuplicateReview, http.StatusConflict},
	{repository.ErrTagAlreadyExists, http.StatusConflict},
	{repository.ErrInsufficientStock, http.StatusConflict},
}

// respondServiceError maps a service error onto the HTTP taxonomy. Anything
// unrecognised is logged and hidden behind fallback.
func respondServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	if errors.Is(err, service.ErrValidation) {
		msg := err.Error()
		if i := strings.Index(msg, service.ErrValidation.Error()+": "); i >= 0 {
			msg = msg[i+len(service.ErrValidation.Error())+2:]
		}
		middleware.RespondWithError(w, http.StatusBadRequest, msg)
		return
	}

	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			middleware.RespondWithError(w, m.status, m.err.Error())
			return
		}
	}

	logger.Error(fallback, zap.Error(err))
	middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	middleware.RespondWithSuccess(w, status, map[string]interface{}{"message": message})
}

// callerID returns the authenticated user. Routes using it sit behind the
// auth middleware, so a miss means the chain is misconfigured.
func callerID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "not authorized, login again")
	}
	return userID, ok
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return n
}

func queryPage(r *http.Request) repository.Page {
	return repository.Page{
		Number: queryInt(r, "page", 1),
		Size:   queryInt(r, "limit", repository.DefaultPageSize),
	}.Normalize()
}

// queryDate parses a YYYY-MM-DD (or RFC 3339) query parameter. Absent
// values yield nil.
func queryDate(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, service.ErrValidation
}

// queryEndDate is queryDate for inclusive range ends: a bare YYYY-MM-DD
// covers the whole day.
func queryEndDate(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		end := t.Add(24*time.Hour - time.Nanosecond)
		return &end, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	return nil, service.ErrValidation
}

func pageBody(key string, items interface{}, page repository.Page, total int) map[string]interface{} {
	return map[string]interface{}{
		key:           items,
		"total":       total,
		"totalPages":  page.TotalPages(total),
		"currentPage": page.Number,
	}
}

// formFiles opens the uploaded images under the given form keys in key
// order. The returned closer releases every opened part.
func formFiles(form *multipart.Form, keys ...string) ([]storage.File, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	var files []storage.File
	for _, key := range keys {
		for _, header := range form.File[key] {
			contentType := header.Header.Get("Content-Type")
			if !strings.HasPrefix(contentType, "image/") {
				closeAll()
				return nil, func() {}, errors.New(header.Filename + " is not an image")
			}

			f, err := header.Open()
			if err != nil {
				closeAll()
				return nil, func() {}, err
			}
			opened = append(opened, f)
			files = append(files, storage.File{
				Filename:    header.Filename,
				ContentType: contentType,
				Size:        header.Size,
				Body:        f,
			})
		}
	}
	return files, closeAll, nil
}

// parseMultipart reads a multipart body, answering 400 when it is not one.
func parseMultipart(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "expected multipart form data")
		return false
	}
	return true
}
