package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrconnect/hr-directory/internal/directory"
	"github.com/hrconnect/hr-directory/internal/form"
	"github.com/hrconnect/hr-directory/internal/models"
	apperrors "github.com/hrconnect/hr-directory/pkg/errors"
)

type FormHandler struct{}

func NewFormHandler() *FormHandler {
	return &FormHandler{}
}

type fieldRequest struct {
	Field string `json:"field" binding:"required,oneof=name contactNumber companyName role location"`
	Value string `json:"value" binding:"max=200"`
}

type contactRequest struct {
	Name          *string `json:"name" binding:"omitempty,max=200"`
	ContactNumber *string `json:"contactNumber" binding:"omitempty,max=20"`
	CompanyName   *string `json:"companyName" binding:"omitempty,max=200"`
	Role          *string `json:"role" binding:"omitempty,max=64"`
	Location      *string `json:"location" binding:"omitempty,max=64"`
}

func (r contactRequest) fields() map[string]*string {
	return map[string]*string{
		models.FieldName:          r.Name,
		models.FieldContactNumber: r.ContactNumber,
		models.FieldCompanyName:   r.CompanyName,
		models.FieldRole:          r.Role,
		models.FieldLocation:      r.Location,
	}
}

// Get returns the popup state
func (h *FormHandler) Get(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, buildForm(sess))
}

// Open shows the popup with the values entered so far
func (h *FormHandler) Open(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	sess.Form.Open()
	sess.ResetFormSelectors()
	c.JSON(http.StatusOK, buildForm(sess))
}

// Close hides the popup without discarding its values
func (h *FormHandler) Close(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	sess.Form.Close()
	c.JSON(http.StatusOK, buildForm(sess))
}

// SetField edits one popup field, clearing that field's error
func (h *FormHandler) SetField(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	var req fieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request", ParseValidationErrors(err), err)
		return
	}

	if err := sess.SetFormField(req.Field, req.Value); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request", err)
		return
	}
	c.JSON(http.StatusOK, buildForm(sess))
}

// Submit validates the popup and adds the contact. A JSON body, when sent,
// sets the given fields first.
func (h *FormHandler) Submit(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondErrorWithDetails(c, http.StatusBadRequest, "Invalid request", ParseValidationErrors(err), err)
		return
	}
	for _, field := range models.ContactFields {
		if v := req.fields()[field]; v != nil {
			if err := sess.SetFormField(field, *v); err != nil {
				respondError(c, http.StatusBadRequest, "Invalid request", err)
				return
			}
		}
	}

	// the create outlives a client that disconnects mid-request
	errs, err := sess.SubmitForm(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		status := statusForError(err)
		message := apperrors.UserMessage(err)
		if errors.Is(err, form.ErrSubmitInProgress) {
			message = "A submission is already in progress"
		}
		respondError(c, status, message, err)
		return
	}
	if errs.HasErrors() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Validation failed", "details": errs})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": directory.ContactAddedMessage})
}
