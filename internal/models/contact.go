package models

// Field names of a contact record, as used on the wire and as FieldErrors keys
const (
	FieldName          = "name"
	FieldContactNumber = "contactNumber"
	FieldCompanyName   = "companyName"
	FieldRole          = "role"
	FieldLocation      = "location"
)

// ContactFields lists the record fields in form order
var ContactFields = []string{FieldName, FieldContactNumber, FieldCompanyName, FieldRole, FieldLocation}

// ContactRecord represents an HR contact as stored by the contact API
type ContactRecord struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
	CompanyName   string `json:"companyName"`
	Role          string `json:"role"`
	Location      string `json:"location"`
}

// SameContact reports whether r and other hold the same field values, ignoring ID
func (r ContactRecord) SameContact(other ContactRecord) bool {
	r.ID, other.ID = "", ""
	return r == other
}

// CreateContactRequest is the body of POST /api/v1/contact/create
type CreateContactRequest struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
	CompanyName   string `json:"companyName"`
	Role          string `json:"role"`
	Location      string `json:"location"`
}

// ToCreateRequest drops server-assigned fields from the record
func (r ContactRecord) ToCreateRequest() CreateContactRequest {
	return CreateContactRequest{
		Name:          r.Name,
		ContactNumber: r.ContactNumber,
		CompanyName:   r.CompanyName,
		Role:          r.Role,
		Location:      r.Location,
	}
}

// Field returns the value of the named field
func (r ContactRecord) Field(name string) string {
	switch name {
	case FieldName:
		return r.Name
	case FieldContactNumber:
		return r.ContactNumber
	case FieldCompanyName:
		return r.CompanyName
	case FieldRole:
		return r.Role
	case FieldLocation:
		return r.Location
	}
	return ""
}

// WithField returns a copy of r with the named field set. Unknown names leave r unchanged.
func (r ContactRecord) WithField(name, value string) ContactRecord {
	switch name {
	case FieldName:
		r.Name = value
	case FieldContactNumber:
		r.ContactNumber = value
	case FieldCompanyName:
		r.CompanyName = value
	case FieldRole:
		r.Role = value
	case FieldLocation:
		r.Location = value
	}
	return r
}

// IsContactField reports whether name is one of the record fields
func IsContactField(name string) bool {
	for _, f := range ContactFields {
		if f == name {
			return true
		}
	}
	return false
}

// FieldErrors maps a field name to a human-readable message
type FieldErrors map[string]string

// HasErrors reports whether any field failed validation
func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

// Clone returns an independent copy
func (fe FieldErrors) Clone() FieldErrors {
	out := make(FieldErrors, len(fe))
	for k, v := range fe {
		out[k] = v
	}
	return out
}
