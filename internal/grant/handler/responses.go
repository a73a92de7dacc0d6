package handler

import (
	"provet/internal/grant/models"
)

// GrantResponse is the HTTP response body for POST /uploads/grants. The
// expiry is exposed as unix seconds because that is the value the client
// must echo back on PUT /uploads/object for the signature to verify.
type GrantResponse struct {
	ObjectKey      string `json:"object_key"`
	SubjectID      string `json:"subject_id"`
	SubjectContact string `json:"subject_contact"`
	ExpiresAt      int64  `json:"expires_at"`
	Signature      string `json:"signature"`
}

// FromGrant converts a domain grant to its response form.
func FromGrant(g *models.UploadGrant) GrantResponse {
	return GrantResponse{
		ObjectKey:      g.ObjectKey,
		SubjectID:      g.SubjectID,
		SubjectContact: g.SubjectContact,
		ExpiresAt:      g.ExpiresAt.Unix(),
		Signature:      g.Signature,
	}
}

// UploadResponse is the HTTP response body for PUT /uploads/object.
type UploadResponse struct {
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	DetectedType string `json:"detected_type"`
}

// FromUpload converts an accepted upload to its response form.
func FromUpload(obj *models.UploadedObject) UploadResponse {
	return UploadResponse{
		Key:          obj.Key,
		Size:         obj.ByteSize,
		DetectedType: string(obj.DetectedType),
	}
}
