// Package export parses Keycloak realm and user export files.
//
// Export files follow a naming convention inside one flat directory:
// realm files are named "<realm>-realm*.json" and user files are named
// "<realm>-users-*.json".
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/idmigrate/keycloak-descope/internal/model"
)

const fileExtension = ".json"

// RealmFileNames filters names down to the realm export files of realm,
// preserving input order.
func RealmFileNames(names []string, realm string) []string {
	return matchNames(names, realm+"-realm")
}

// UserFileNames filters names down to the user export files of realm,
// preserving input order.
func UserFileNames(names []string, realm string) []string {
	return matchNames(names, realm+"-users-")
}

func matchNames(names []string, prefix string) []string {
	var matched []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, fileExtension) {
			matched = append(matched, name)
		}
	}

	return matched
}

// ReadRealmExport decodes the roles and groups of one realm export file.
// Missing sections decode to empty lists.
func ReadRealmExport(r io.Reader) (model.RealmExport, error) {
	var doc model.RealmExport
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return model.RealmExport{}, fmt.Errorf("failed to decode realm export: %w", err)
	}

	return doc, nil
}

// ReadUsersExport decodes the user records of one user export file.
// A document without a users key is malformed; an empty users array is not.
func ReadUsersExport(r io.Reader) ([]model.ExportedUser, error) {
	var doc struct {
		Users *[]model.ExportedUser `json:"users"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode users export: %w", err)
	}

	if doc.Users == nil {
		return nil, fmt.Errorf("%w: missing users array", model.ErrMalformedExport)
	}

	return *doc.Users, nil
}
