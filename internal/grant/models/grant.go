package models

import (
	"fmt"
	"strconv"
	"time"

	"provet/internal/grant/sniff"
)

// canonicalVersion tags the signed field set. Changing the field order or the
// field set is a breaking change and bumps this tag.
const canonicalVersion = "v1"

// UploadGrant is a self-contained, signed capability authorizing one future
// write. Nothing about it is stored server-side; verification recomputes the
// signature from the grant's own fields on every use.
type UploadGrant struct {
	ObjectKey      string    `json:"object_key"`
	SubjectID      string    `json:"subject_id"`
	SubjectContact string    `json:"subject_contact"`
	ExpiresAt      time.Time `json:"expires_at"`
	Signature      string    `json:"signature"`
}

// CanonicalString is the exact byte sequence the signature covers:
// role, version, subject, key, expiry (unix seconds), contact, in that order.
// Binding the contact prevents replaying a grant under a different identity.
func (g UploadGrant) CanonicalString() string {
	return fmt.Sprintf("upload:%s:%s:%s:%s:%s",
		canonicalVersion,
		g.SubjectID,
		g.ObjectKey,
		strconv.FormatInt(g.ExpiresAt.Unix(), 10),
		g.SubjectContact,
	)
}

// ExpiredAt reports whether the grant is invalid at the given instant.
// The boundary is exclusive on the valid side: a grant is already expired
// at exactly ExpiresAt.
func (g UploadGrant) ExpiredAt(now time.Time) bool {
	return !now.Before(g.ExpiresAt)
}

// UploadedObject describes one successfully consumed grant.
type UploadedObject struct {
	Key          string     `json:"key"`
	ByteSize     int64      `json:"size"`
	DetectedType sniff.Type `json:"detected_type"`
	DeclaredType string     `json:"declared_type,omitempty"`
	OwnerID      string     `json:"owner_id"`
	CreatedAt    time.Time  `json:"created_at"`
}
