package models

import "time"

// Envelope is the persisted form of one record: opaque ciphertext plus two
// cleartext fields duplicated for indexing.
type Envelope struct {
	// ID identifies the stored row. It is assigned by the submission service
	// and carries no record content.
	ID string `json:"id,omitempty"`

	Ciphertext string    `json:"ciphertext"`
	Timestamp  time.Time `json:"timestamp"`
	EmployeeID string    `json:"employeeId"`
}

// Identity is the opaque principal supplied by the authentication
// collaborator and attached to every record.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}
