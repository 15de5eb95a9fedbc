package form

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hrconnect/hr-directory/internal/catalog"
	"github.com/hrconnect/hr-directory/internal/models"
)

var contactNumberPattern = regexp.MustCompile(`^\d{10}$`)

// contactInput is the validated shape of a submitted record
type contactInput struct {
	Name          string `json:"name" validate:"required"`
	ContactNumber string `json:"contactNumber" validate:"required,digits10"`
	CompanyName   string `json:"companyName" validate:"required"`
	Role          string `json:"role" validate:"required,catalog_role"`
	Location      string `json:"location" validate:"required,catalog_location"`
}

// messages maps field -> validator tag -> user message
var messages = map[string]map[string]string{
	models.FieldName: {
		"required": "Name is required.",
	},
	models.FieldContactNumber: {
		"required": "Contact number is required.",
		"digits10": "Contact number must be exactly 10 digits.",
	},
	models.FieldCompanyName: {
		"required": "Company name is required.",
	},
	models.FieldRole: {
		"required":     "Role is required.",
		"catalog_role": "Please select a valid role.",
	},
	models.FieldLocation: {
		"required":         "Location is required.",
		"catalog_location": "Please select a valid location.",
	},
}

// newValidator builds a validator whose field names are the JSON names and
// whose catalog tags check membership in cat
func newValidator(cat *catalog.Catalog) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("digits10", func(fl validator.FieldLevel) bool {
		return IsValidContactNumber(fl.Field().String())
	})
	_ = v.RegisterValidation("catalog_role", func(fl validator.FieldLevel) bool {
		return cat.Contains(catalog.KindRole, fl.Field().String())
	})
	_ = v.RegisterValidation("catalog_location", func(fl validator.FieldLevel) bool {
		return cat.Contains(catalog.KindLocation, fl.Field().String())
	})

	return v
}

// IsValidContactNumber reports whether s is exactly 10 ASCII digits
func IsValidContactNumber(s string) bool {
	return contactNumberPattern.MatchString(s)
}

// validateRecord runs every rule against rec and returns the failures keyed by field
func validateRecord(v *validator.Validate, rec models.ContactRecord) models.FieldErrors {
	input := contactInput{
		Name:          strings.TrimSpace(rec.Name),
		ContactNumber: rec.ContactNumber, // any whitespace makes it invalid, not missing
		CompanyName:   strings.TrimSpace(rec.CompanyName),
		Role:          strings.TrimSpace(rec.Role),
		Location:      strings.TrimSpace(rec.Location),
	}

	errs := models.FieldErrors{}
	err := v.Struct(input)
	if err == nil {
		return errs
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError only happens on programmer error
		errs[models.FieldName] = "Invalid form."
		return errs
	}

	for _, fe := range validationErrors {
		errs[fe.Field()] = errorMessage(fe)
	}
	return errs
}

func errorMessage(fe validator.FieldError) string {
	if byTag, ok := messages[fe.Field()]; ok {
		if msg, ok := byTag[fe.Tag()]; ok {
			return msg
		}
	}
	return fe.Field() + " is invalid."
}
