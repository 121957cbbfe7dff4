package sumsub

import (
	"encoding/json"
)

// SessionLink is the response from the WebSDK link endpoint.
type SessionLink struct {
	// URL is the one-time hosted verification page for the user
	URL string `json:"url"`
}

// Review is the review block of an applicant. Values are passed through without interpretation.
type Review struct {
	ReviewID     string          `json:"reviewId,omitempty"`
	LevelName    string          `json:"levelName,omitempty"`
	ReviewStatus string          `json:"reviewStatus,omitempty"`
	ReviewResult json.RawMessage `json:"reviewResult,omitempty"`
}

// UserStatus is the applicant record returned by the status lookup.
type UserStatus struct {
	// ID is the Sumsub applicant id (the internal user identifier) - required by the reset endpoint
	ID string `json:"id"`

	// ExternalUserID is the identifier supplied by this system when the applicant was created
	ExternalUserID string `json:"externalUserId"`

	CreatedAt string  `json:"createdAt,omitempty"`
	Review    *Review `json:"review,omitempty"`

	// Raw is the full response body
	Raw json.RawMessage `json:"-"`
}

// ResetAck is the acknowledgement returned by the reset endpoint.
type ResetAck struct {
	OK int `json:"ok"`

	// Raw is the full response body
	Raw json.RawMessage `json:"-"`
}

// IDDocMetadata describes an identity document upload.
type IDDocMetadata struct {
	IDDocType    string `json:"idDocType"`
	IDDocSubType string `json:"idDocSubType,omitempty"`
	Country      string `json:"country"`
	FirstName    string `json:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"`
	Number       string `json:"number,omitempty"`
	DOB          string `json:"dob,omitempty"`
}

// IDDocument is the response to an identity document upload.
type IDDocument struct {
	IDDocType string `json:"idDocType"`
	Country   string `json:"country"`

	// Raw is the full response body
	Raw json.RawMessage `json:"-"`
}
