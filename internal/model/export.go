package model

// ExportedRole is a role entry from a Keycloak realm export.
// Realm-level and client-level roles are merged into one flat name set;
// client scoping is discarded during migration.
type ExportedRole struct {
	Name string `json:"name"`
}

// ExportedGroup is a group entry from a Keycloak realm export.
type ExportedGroup struct {
	Name string `json:"name"`
}

// RealmRoles holds the role lists of a realm export file.
type RealmRoles struct {
	Realm  []ExportedRole            `json:"realm"`
	Client map[string][]ExportedRole `json:"client"`
}

// RealmExport is the subset of a Keycloak realm export file consumed
// by the migration: roles and groups.
type RealmExport struct {
	Roles  RealmRoles      `json:"roles"`
	Groups []ExportedGroup `json:"groups"`
}

// ExportedCredential is one credential entry of an exported user.
// SecretData and CredentialData carry JSON documents encoded as strings.
type ExportedCredential struct {
	Type           string `json:"type"`
	SecretData     string `json:"secretData"`
	CredentialData string `json:"credentialData"`
}

// ExportedUser is one user record from a Keycloak user export file.
// Enabled is a pointer: only an explicit false marks the user disabled,
// a missing field means enabled.
type ExportedUser struct {
	Username      string               `json:"username"`
	Email         string               `json:"email"`
	EmailVerified bool                 `json:"emailVerified"`
	Enabled       *bool                `json:"enabled"`
	RealmRoles    []string             `json:"realmRoles"`
	ClientRoles   map[string][]string  `json:"clientRoles"`
	Groups        []string             `json:"groups"`
	Credentials   []ExportedCredential `json:"credentials"`
}

// Disabled reports whether the exported record explicitly disables the user.
func (u ExportedUser) Disabled() bool {
	return u.Enabled != nil && !*u.Enabled
}
