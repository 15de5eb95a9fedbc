package models

// DirectoryRow is one displayed record. Pending rows were inserted
// optimistically and await confirmation from the contact API.
type DirectoryRow struct {
	Key     string        `json:"key"`
	Record  ContactRecord `json:"record"`
	Pending bool          `json:"pending,omitempty"`
}
