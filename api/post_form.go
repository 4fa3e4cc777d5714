package api

import (
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/postsadmin/backend/errs"
)

const (
	maxImageBytes  = 2 << 20 // the 2048 KB upload ceiling
	maxMemoryBytes = 4 << 20
	titleMinLen    = 8
	titleMaxLen    = 255
	descriptionMax = 20000
	dateLayout     = "2006-01-02"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// postForm is a validated create/update payload. Image stays nil when no
// file was attached; DateProvided distinguishes "no date field" from a
// parsed zero value.
type postForm struct {
	Title        string
	Description  string
	Status       bool
	Date         time.Time
	DateProvided bool
	Image        *uploadedImage
}

type uploadedImage struct {
	Header      *multipart.FileHeader
	ContentType string
}

// parsePostForm decodes and validates the multipart create/update form.
// Validation failures never reach the store layer; the first failing rule
// is returned keyed to its field.
func parsePostForm(r *http.Request, requireDate bool) (*postForm, *errs.ApiErr) {
	if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
		return nil, errs.NewValidationError("payload", "expected multipart form data")
	}

	form := &postForm{
		Title:       strings.TrimSpace(r.FormValue("post_title")),
		Description: strings.TrimSpace(r.FormValue("post_description")),
	}

	if form.Title == "" {
		return nil, errs.NewValidationError("post_title", "is required")
	}
	if n := utf8.RuneCountInString(form.Title); n < titleMinLen || n > titleMaxLen {
		return nil, errs.NewValidationError("post_title", "must be between 8 and 255 characters")
	}

	if form.Description == "" {
		return nil, errs.NewValidationError("post_description", "is required")
	}
	if utf8.RuneCountInString(form.Description) > descriptionMax {
		return nil, errs.NewValidationError("post_description", "must not exceed 20000 characters")
	}

	switch r.FormValue("post_status") {
	case "active":
		form.Status = true
	case "inactive":
		form.Status = false
	default:
		return nil, errs.NewValidationError("post_status", "must be active or inactive")
	}

	if dateStr := r.FormValue("date"); dateStr != "" {
		date, err := time.Parse(dateLayout, dateStr)
		if err != nil {
			return nil, errs.NewValidationError("date", "must be a valid date (YYYY-MM-DD)")
		}
		form.Date = date
		form.DateProvided = true
	} else if requireDate {
		return nil, errs.NewValidationError("date", "is required")
	}

	image, apiErr := parseImageUpload(r)
	if apiErr != nil {
		return nil, apiErr
	}
	form.Image = image

	return form, nil
}

// parseImageUpload validates the optional image file: size ceiling, allowed
// extension and sniffed content type (the client-supplied header is not
// trusted).
func parseImageUpload(r *http.Request) (*uploadedImage, *errs.ApiErr) {
	if r.MultipartForm == nil || len(r.MultipartForm.File["image"]) == 0 {
		return nil, nil
	}
	header := r.MultipartForm.File["image"][0]

	if header.Size > maxImageBytes {
		return nil, errs.NewValidationError("image", "must not exceed 2048 KB")
	}
	if !allowedImageExts[strings.ToLower(filepath.Ext(header.Filename))] {
		return nil, errs.NewValidationError("image", "must be a jpg, jpeg, png or webp file")
	}

	file, err := header.Open()
	if err != nil {
		return nil, errs.NewValidationError("image", "could not read uploaded file")
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := file.Read(head)
	if err != nil && n == 0 {
		return nil, errs.NewValidationError("image", "could not read uploaded file")
	}

	contentType := http.DetectContentType(head[:n])
	if !allowedImageTypes[contentType] {
		return nil, errs.NewValidationError("image", "must be a jpg, jpeg, png or webp image")
	}

	return &uploadedImage{Header: header, ContentType: contentType}, nil
}
