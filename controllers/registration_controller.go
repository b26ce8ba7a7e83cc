// File: /controllers/registration_controller.go
package controllers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"sort"

	"convoy-api/models"
	"convoy-api/services"
	"convoy-api/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// PhotoField is the multipart field carrying car photos.
const PhotoField = "car_photos"

const (
	// maxPhotoBytes is how much of one photo is held in memory. Larger photos
	// are still measured so the size error can name their real size.
	maxPhotoBytes = int64(services.DefaultMaxUploadMB * 1024 * 1024)
	// maxFieldBytes caps a single text field.
	maxFieldBytes = 64 << 10
	// maxRegistrationBody caps the whole request. Photo parts past
	// MaxCarPhotos are read and discarded inside this budget.
	maxRegistrationBody = 64 << 20
)

var errFieldTooLong = errors.New("form field too long")

type RegistrationController struct {
	registrations *services.RegistrationService
	allowedFields map[string]struct{}
}

func NewRegistrationController(registrations *services.RegistrationService) *RegistrationController {
	allowed := make(map[string]struct{}, len(services.RegistrationFormFields))
	for _, field := range services.RegistrationFormFields {
		allowed[field] = struct{}{}
	}
	return &RegistrationController{registrations: registrations, allowedFields: allowed}
}

// GetForm returns the events open for registration and the default choice.
func (rc *RegistrationController) GetForm(c *gin.Context) {
	form, err := rc.registrations.LoadForm(c.Request.Context())
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// registrationForm is the streamed multipart body.
type registrationForm struct {
	values     map[string][]string
	fileFields map[string]struct{}
	photos     []services.UploadFile
}

// Submit accepts the multipart registration form. Up to three photos are
// kept; further photos are dropped.
func (rc *RegistrationController) Submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRegistrationBody)

	form, err := readRegistrationForm(c.Request)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			utils.SendAppError(c, models.NewAppError(models.CodeTooLarge, "The upload is too large"))
		case errors.Is(err, errFieldTooLong):
			utils.SendAppError(c, models.NewValidationError("A form field is too long"))
		default:
			utils.SendAppError(c, models.NewValidationError("Expected a multipart form"))
		}
		return
	}

	if unexpected := rc.unexpectedFields(form); len(unexpected) > 0 {
		utils.SendAppError(c, models.NewUnexpectedFieldsError(unexpected))
		return
	}

	var input services.RegistrationInput
	if err := binding.MapFormWithTag(&input, form.values, "form"); err != nil {
		utils.SendAppError(c, models.NewValidationError("Invalid form data"))
		return
	}

	result, err := rc.registrations.Submit(c.Request.Context(), input, form.photos)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// readRegistrationForm walks the parts once. The first MaxCarPhotos photo
// parts are buffered; later ones are drained to io.Discard.
func readRegistrationForm(r *http.Request) (*registrationForm, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}

	form := &registrationForm{
		values:     make(map[string][]string),
		fileFields: make(map[string]struct{}),
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return form, nil
		}
		if err != nil {
			return nil, err
		}

		if err := form.add(part); err != nil {
			part.Close()
			return nil, err
		}
		part.Close()
	}
}

func (f *registrationForm) add(part *multipart.Part) error {
	name := part.FormName()
	if part.FileName() == "" {
		value, err := io.ReadAll(io.LimitReader(part, maxFieldBytes+1))
		if err != nil {
			return err
		}
		if len(value) > maxFieldBytes {
			return errFieldTooLong
		}
		f.values[name] = append(f.values[name], string(value))
		return nil
	}

	f.fileFields[name] = struct{}{}
	if name != PhotoField || len(f.photos) >= services.MaxCarPhotos {
		_, err := io.Copy(io.Discard, part)
		return err
	}

	photo, err := readUpload(part, maxPhotoBytes)
	if err != nil {
		return err
	}
	f.photos = append(f.photos, photo)
	return nil
}

// unexpectedFields lists form keys the registration does not define, sorted.
func (rc *RegistrationController) unexpectedFields(form *registrationForm) []string {
	var unexpected []string
	for key := range form.values {
		if _, ok := rc.allowedFields[key]; !ok {
			unexpected = append(unexpected, key)
		}
	}
	for key := range form.fileFields {
		if key != PhotoField {
			unexpected = append(unexpected, key)
		}
	}
	sort.Strings(unexpected)
	return unexpected
}
