// Package contact accepts messages from the public contact form, stores them
// and notifies the site owner.
package contact

import (
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"portfolio/app/internal/validation"
)

// TableName is the table holding contact submissions in every backend.
const TableName = "contact_submissions"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Input is what a visitor submits.
type Input struct {
	Name    string `json:"name" validate:"required,min=2"`
	Email   string `json:"email" validate:"required,basic_email"`
	Message string `json:"message" validate:"required,min=10"`
}

// Meta carries request details recorded with a submission.
type Meta struct {
	UserAgent string
	IPAddress string
}

// Submission is a stored contact message.
type Submission struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	UserAgent string    `gorm:"size:512" json:"userAgent,omitempty"`
	IPAddress string    `gorm:"size:64" json:"ipAddress,omitempty"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

// TableName defines the table name for the Submission model.
func (Submission) TableName() string {
	return TableName
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validation.New()
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

var inputMessages = validation.Messages{
	"name.required":     "Name is required",
	"name.min":          "Name must be at least 2 characters long",
	"email.required":    "Email is required",
	"email.basic_email": "Please enter a valid email address",
	"message.required":  "Message is required",
	"message.min":       "Message must be at least 10 characters long",
}

// Normalize trims surrounding whitespace from every field.
func (in Input) Normalize() Input {
	return Input{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Message: strings.TrimSpace(in.Message),
	}
}

// Validate checks the input and returns validation.Errors describing each bad field.
// A missing field is reported as missing rather than as too short.
func Validate(in Input) error {
	return validation.Translate(validate.Struct(in.Normalize()), inputMessages)
}
