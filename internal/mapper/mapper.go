package mapper

import (
	"slices"
	"strings"

	"github.com/idmigrate/keycloak-descope/internal/model"
)

// MappedUser is the result of mapping one exported user record.
// CredentialErr carries a non-fatal transcoding failure: the user is still
// submitted, with HashedPassword absent.
type MappedUser struct {
	User          model.TargetUser
	Disabled      bool
	CredentialErr error
}

// MapUser converts one exported user record into a target batch entry.
// The login id is the username when present, the email otherwise; a record
// carrying neither is a validation failure and returns model.ErrNoLoginID.
func MapUser(user model.ExportedUser) (MappedUser, error) {
	loginID := user.Username
	if loginID == "" {
		loginID = user.Email
	}
	if loginID == "" {
		return MappedUser{}, model.ErrNoLoginID
	}

	// The email stays reachable as a lookup key when the username won the
	// login id slot.
	identifiers := []string{}
	if user.Username != "" && user.Email != "" {
		identifiers = append(identifiers, user.Email)
	}

	tenants := make([]model.UserTenant, 0, len(user.Groups))
	for _, group := range user.Groups {
		tenants = append(tenants, model.UserTenant{TenantID: strings.TrimPrefix(group, "/")})
	}

	password, credErr := TranscodePassword(user.Credentials)
	if credErr != nil {
		password = nil
	}

	return MappedUser{
		User: model.TargetUser{
			LoginID:               loginID,
			Email:                 user.Email,
			VerifiedEmail:         user.EmailVerified,
			AdditionalIdentifiers: identifiers,
			HashedPassword:        password,
			RoleNames:             flattenRoles(user),
			UserTenants:           tenants,
		},
		Disabled:      user.Disabled(),
		CredentialErr: credErr,
	}, nil
}

// flattenRoles concatenates realm roles with client roles. Realm roles come
// first; client roles follow grouped by client name in sorted order, which
// keeps the output deterministic (client ordering carries no meaning in the
// export format).
func flattenRoles(user model.ExportedUser) []string {
	roles := make([]string, 0, len(user.RealmRoles))
	roles = append(roles, user.RealmRoles...)
	clients := make([]string, 0, len(user.ClientRoles))
	for client := range user.ClientRoles {
		clients = append(clients, client)
	}
	slices.Sort(clients)
	for _, client := range clients {
		roles = append(roles, user.ClientRoles[client]...)
	}

	return roles
}
