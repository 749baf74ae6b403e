package model

import "context"

// Argon2Password carries the argon2 parameters transcoded from a Keycloak
// password credential.
type Argon2Password struct {
	Hash       string `json:"hash"`
	Salt       string `json:"salt"`
	Iterations int    `json:"iterations"`
	Memory     int    `json:"memory"`
	Threads    int    `json:"threads"`
}

// HashedPassword is the Descope hashed-password representation. It is a
// derived projection of an ExportedCredential, recomputed per run and never
// persisted.
type HashedPassword struct {
	Argon2 Argon2Password `json:"argon2"`
}

// UserTenant associates a user with one Descope tenant.
type UserTenant struct {
	TenantID string `json:"tenantId"`
}

// TargetUser is one entry of a Descope batch user creation request.
// LoginID is the primary identifier and must be unique within a batch.
type TargetUser struct {
	LoginID               string          `json:"loginId"`
	Email                 string          `json:"email,omitempty"`
	VerifiedEmail         bool            `json:"verifiedEmail"`
	AdditionalIdentifiers []string        `json:"additionalIdentifiers"`
	HashedPassword        *HashedPassword `json:"hashedPassword,omitempty"`
	RoleNames             []string        `json:"roleNames"`
	UserTenants           []UserTenant    `json:"userTenants"`
}

// BatchCreateRequest is the payload of the Descope batch user creation
// endpoint. Invite, SendMail and SendSMS are always false for migrations.
type BatchCreateRequest struct {
	Users    []TargetUser `json:"users"`
	Invite   bool         `json:"invite"`
	SendMail bool         `json:"sendMail"`
	SendSMS  bool         `json:"sendSMS"`
}

// BatchCreateResult is the raw outcome of a batch creation call. Duplicate
// handling is delegated entirely to the remote response, so callers get the
// status code and body as-is.
type BatchCreateResult struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the batch call returned a 2xx status.
func (r BatchCreateResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// UserClient defines the user operations of the target management API.
type UserClient interface {
	BatchCreateUsers(ctx context.Context, req BatchCreateRequest) (BatchCreateResult, error)
	DeactivateUser(ctx context.Context, loginID string) error
}
