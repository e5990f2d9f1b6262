// Package store provides the file-backed collections behind CertVerif: the
// certificate registry and the administrator accounts. Each store serializes
// a whole JSON document on every mutation (load, mutate in memory, write
// back) under a single writer lock, so the per-year numbering and username
// uniqueness invariants hold under concurrent requests.
package store

import "github.com/AntiSecTech/CertVerif/internal/auth"

// Certificate is one registry record. CertNumber and the year/number pair
// inside CertType are assigned at creation and never change afterwards.
type Certificate struct {
	CertNumber string   `json:"cert_number"`
	CertType   CertType `json:"cert_type"`
	Owner      string   `json:"owner"`
	Birthdate  string   `json:"birthdate"`
	Address    Address  `json:"address"`
	Contact    Contact  `json:"contact"`
	ExpireDate string   `json:"expire_date"`
	IsValid    bool     `json:"is_valid"`
}

// CertType describes what a certificate was issued for. Year and Number
// encode the per-year issue sequence and are preserved verbatim on edit.
type CertType struct {
	Type        string `json:"type"`
	Year        int    `json:"year"`
	Number      int    `json:"number"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Address is the owner's postal address.
type Address struct {
	Street string `json:"street"`
	No     string `json:"no"`
	City   string `json:"city"`
	Zip    string `json:"zip"`
}

// Contact holds the owner's contact details. Phone is nullable.
type Contact struct {
	Phone *string `json:"phone"`
	Email string  `json:"email"`
}

// Administrator is one account in admin.json. Username is the immutable,
// case-sensitive identity key.
type Administrator struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Role         auth.Role `json:"role"`
}

// Sanitized returns a copy safe to expose outside the store, with the
// credential digest removed.
func (a Administrator) Sanitized() Administrator {
	a.PasswordHash = ""
	return a
}

// certificateDocument is the on-disk shape of certificates.json.
type certificateDocument struct {
	Certificates []Certificate `json:"certificates"`
}

// adminDocument is the on-disk shape of admin.json.
type adminDocument struct {
	Administrators []Administrator `json:"administrators"`
}
