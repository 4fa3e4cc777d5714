package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"

	"github.com/postsadmin/backend/database"
	"github.com/postsadmin/backend/datatable"
	"github.com/postsadmin/backend/errs"
	"github.com/postsadmin/backend/models"
	"github.com/postsadmin/backend/storage"
)

type postHandler struct {
	responder Responder
	logger    zerolog.Logger
	postRepo  *database.PostRepo
	assets    storage.Store
	grid      *datatable.Engine
}

func newPostHandler(postRepo *database.PostRepo, assets storage.Store) postHandler {
	logger := log.With().Str("handlerName", "postHandler").Logger()

	return postHandler{
		responder: NewResponder(logger),
		logger:    logger,
		postRepo:  postRepo,
		assets:    assets,
		grid:      datatable.NewEngine(postRepo.DB(), datatable.NewRenderer(assets.PublicURL)),
	}
}

// gridData answers the DataTables read endpoint: paging, sorting, global
// search and per-column filters resolved server-side, rows passed through
// the cell renderer.
func (h postHandler) gridData() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := datatable.ParseRequest(r.URL.Query())

		resp, err := h.grid.Run(r.Context(), req)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("query grid for", "posts", err))
			return
		}

		h.responder.WriteJSON(w, resp)
	}
}

// updateStatus flips the status flag of a single post. Input is {id, status}
// with status constrained to "0"/"1"; anything else is a validation failure
// before the store is touched.
func (h postHandler) updateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr, statusStr, apiErr := decodeMutation(r)
		if apiErr != nil {
			h.responder.WriteAjaxError(w, apiErr)
			return
		}

		if statusStr != "0" && statusStr != "1" {
			h.responder.WriteAjaxError(w, errs.NewValidationError("status", "must be 0 or 1"))
			return
		}

		id, ok := parseID(idStr)
		if !ok {
			h.responder.WriteAjaxError(w, errs.NewValidationError("id", "must be a positive integer"))
			return
		}

		post, err := h.postRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteAjaxError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil {
			h.responder.WriteAjaxError(w, errs.NewNotFound("post"))
			return
		}

		newStatus := statusStr == "1"
		if err := h.postRepo.UpdateStatus(r.Context(), post.ID, newStatus); err != nil {
			h.responder.WriteAjaxError(w, wrapDatabaseError("update status of", "post", err))
			return
		}

		statusText := "inactive"
		if newStatus {
			statusText = "active"
		}
		h.responder.WriteJSON(w, ajaxResponse{
			Success: true,
			Message: "Post status updated successfully.",
			Status:  statusText,
		})
	}
}

// deleteAjax removes a post by the id carried in the request body.
func (h postHandler) deleteAjax() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idStr, _, apiErr := decodeMutation(r)
		if apiErr != nil {
			h.responder.WriteAjaxError(w, apiErr)
			return
		}

		id, ok := parseID(idStr)
		if !ok {
			h.responder.WriteAjaxError(w, errs.NewValidationError("id", "must be a positive integer"))
			return
		}

		h.removePost(w, r, id)
	}
}

// deletePost is the REST-shaped variant of deleteAjax.
func (h postHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(chi.URLParam(r, "postID"))
		if !ok {
			h.responder.WriteAjaxError(w, errs.NewValidationError("id", "must be a positive integer"))
			return
		}

		h.removePost(w, r, id)
	}
}

func (h postHandler) removePost(w http.ResponseWriter, r *http.Request, id uint) {
	post, err := h.postRepo.FindByID(r.Context(), id)
	if err != nil {
		h.responder.WriteAjaxError(w, wrapDatabaseError("find", "post", err))
		return
	}
	if post == nil {
		h.responder.WriteAjaxError(w, errs.NewNotFound("post"))
		return
	}

	if err := h.destroy(r.Context(), post); err != nil {
		h.responder.WriteAjaxError(w, wrapDatabaseError("delete", "post", err))
		return
	}

	h.responder.WriteJSON(w, ajaxResponse{Success: true, Message: "Post deleted successfully."})
}

// destroy deletes the post's asset and then the record. Asset deletion is
// lenient: a failure is logged as a storage anomaly and the record delete
// still proceeds, leaving at worst a recoverable orphaned file.
func (h postHandler) destroy(ctx context.Context, post *models.Post) error {
	if post.Image != nil && *post.Image != "" {
		if err := h.assets.Delete(ctx, *post.Image); err != nil {
			anomaly := errs.NewStorageAnomaly("delete", *post.Image, err)
			h.logger.Warn().Err(anomaly).Uint("postID", post.ID).Msg("post image cleanup failed")
		}
	}
	return h.postRepo.Delete(ctx, post.ID)
}

// getPost returns the raw post record, used to prefill the edit form.
func (h postHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(chi.URLParam(r, "postID"))
		if !ok {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid postID"))
			return
		}

		post, err := h.postRepo.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFound("post"))
			return
		}

		h.responder.WriteJSON(w, post)
	}
}

// createPost handles the multipart create form: validate, store the image,
// insert the record, then redirect with a flash message (JSON for XHR).
func (h postHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, apiErr := parsePostForm(r, true)
		if apiErr != nil {
			h.failForm(w, r, apiErr)
			return
		}

		ctx := r.Context()
		if apiErr := h.checkUniqueness(ctx, form, 0); apiErr != nil {
			h.failForm(w, r, apiErr)
			return
		}

		post := &models.Post{
			Title:       form.Title,
			Description: form.Description,
			Status:      form.Status,
			Date:        datatypes.Date(form.Date),
		}

		if form.Image != nil {
			key, apiErr := h.storeImage(ctx, form.Image)
			if apiErr != nil {
				h.failForm(w, r, apiErr)
				return
			}
			post.Image = &key
		}

		if err := h.postRepo.Add(ctx, post); err != nil {
			// the freshly stored object must not outlive the failed insert
			if post.Image != nil {
				h.discardAsset(ctx, *post.Image)
			}
			h.failForm(w, r, errs.NewDatabaseError("create", "post", err))
			return
		}

		h.succeedForm(w, r, "Post created successfully.")
	}
}

// updatePost handles the multipart update form. A replacement image is
// stored before the record mutation and the old object is removed after it,
// so the record never points at a missing asset.
func (h postHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(chi.URLParam(r, "postID"))
		if !ok {
			h.responder.WriteError(w, errs.NewBadRequestError("invalid postID"))
			return
		}

		ctx := r.Context()
		post, err := h.postRepo.FindByID(ctx, id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("find", "post", err))
			return
		}
		if post == nil {
			h.responder.WriteError(w, errs.NewNotFound("post"))
			return
		}

		form, apiErr := parsePostForm(r, false)
		if apiErr != nil {
			h.failForm(w, r, apiErr)
			return
		}

		if apiErr := h.checkUniqueness(ctx, form, post.ID); apiErr != nil {
			h.failForm(w, r, apiErr)
			return
		}

		oldImage := post.Image
		post.Title = form.Title
		post.Description = form.Description
		post.Status = form.Status
		if form.DateProvided {
			post.Date = datatypes.Date(form.Date)
		}

		if form.Image != nil {
			key, apiErr := h.storeImage(ctx, form.Image)
			if apiErr != nil {
				h.failForm(w, r, apiErr)
				return
			}
			post.Image = &key
		}

		if err := h.postRepo.Update(ctx, post); err != nil {
			if form.Image != nil && post.Image != nil {
				h.discardAsset(ctx, *post.Image)
			}
			h.failForm(w, r, errs.NewDatabaseError("update", "post", err))
			return
		}

		if form.Image != nil && oldImage != nil && *oldImage != "" {
			h.discardAsset(ctx, *oldImage)
		}

		h.succeedForm(w, r, "Post updated successfully.")
	}
}

func (h postHandler) checkUniqueness(ctx context.Context, form *postForm, excludeID uint) *errs.ApiErr {
	taken, err := h.postRepo.TitleTaken(ctx, form.Title, excludeID)
	if err != nil {
		return errs.NewDatabaseError("check title uniqueness of", "post", err)
	}
	if taken {
		return errs.NewValidationError("post_title", "has already been taken")
	}

	taken, err = h.postRepo.DescriptionTaken(ctx, form.Description, excludeID)
	if err != nil {
		return errs.NewDatabaseError("check description uniqueness of", "post", err)
	}
	if taken {
		return errs.NewValidationError("post_description", "has already been taken")
	}
	return nil
}

func (h postHandler) storeImage(ctx context.Context, upload *uploadedImage) (string, *errs.ApiErr) {
	file, err := upload.Header.Open()
	if err != nil {
		return "", errs.NewStorageAnomaly("store", upload.Header.Filename, err)
	}
	defer file.Close()

	key := storage.NewKey(upload.Header.Filename)
	if err := h.assets.Store(ctx, key, upload.ContentType, file); err != nil {
		return "", errs.NewStorageAnomaly("store", key, err)
	}
	return key, nil
}

// discardAsset is best-effort removal of an object the record no longer
// references.
func (h postHandler) discardAsset(ctx context.Context, key string) {
	if err := h.assets.Delete(ctx, key); err != nil {
		anomaly := errs.NewStorageAnomaly("delete", key, err)
		h.logger.Warn().Err(anomaly).Msg("asset cleanup failed")
	}
}

func (h postHandler) failForm(w http.ResponseWriter, r *http.Request, apiErr *errs.ApiErr) {
	if wantsJSON(r) {
		h.responder.WriteError(w, apiErr)
		return
	}

	back := r.Referer()
	if back == "" {
		back = "/posts"
	}
	redirectWithFlash(w, r, "flash_error", apiErr.Error(), back)
}

func (h postHandler) succeedForm(w http.ResponseWriter, r *http.Request, message string) {
	if wantsJSON(r) {
		h.responder.WriteJSON(w, ajaxResponse{Success: true, Message: message})
		return
	}
	redirectWithFlash(w, r, "flash", message, "/posts")
}

// decodeMutation reads {id, status} from a JSON body or form fields. Values
// come back as raw tokens so the caller can enforce their domain.
func decodeMutation(r *http.Request) (idStr, statusStr string, apiErr *errs.ApiErr) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var payload struct {
			ID     json.Number `json:"id"`
			Status json.Number `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return "", "", errs.NewValidationError("payload", "malformed JSON body")
		}
		return payload.ID.String(), payload.Status.String(), nil
	}

	if err := r.ParseForm(); err != nil {
		return "", "", errs.NewValidationError("payload", "malformed form body")
	}
	return r.FormValue("id"), r.FormValue("status"), nil
}

func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func wantsJSON(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest" ||
		strings.Contains(r.Header.Get("Accept"), "application/json")
}

func redirectWithFlash(w http.ResponseWriter, r *http.Request, name, message, target string) {
	http.SetCookie(w, &http.Cookie{
		Name:   name,
		Value:  url.QueryEscape(message),
		Path:   "/",
		MaxAge: 60,
	})
	http.Redirect(w, r, target, http.StatusSeeOther)
}
