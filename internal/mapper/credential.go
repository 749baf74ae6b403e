package mapper

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/idmigrate/keycloak-descope/internal/model"
)

const credentialTypePassword = "password"

// Defaults applied when an exported password credential omits a field:
//
//	hash        secretData.value                                     ""
//	salt        secretData.salt                                      ""
//	iterations  credentialData.hashIterations                        3
//	memory      credentialData.additionalParameters.memory[0]        7168
//	threads     credentialData.additionalParameters.parallelism[0]   1
const (
	defaultHashIterations = 3
	defaultMemoryKiB      = 7168
	defaultThreads        = 1
)

// secretData is the JSON document encoded inside ExportedCredential.SecretData.
type secretData struct {
	Value string `json:"value"`
	Salt  string `json:"salt"`
}

// credentialData is the JSON document encoded inside
// ExportedCredential.CredentialData. Keycloak stores the argon2 memory and
// parallelism parameters as string lists.
type credentialData struct {
	HashIterations       int `json:"hashIterations"`
	AdditionalParameters struct {
		Memory      []string `json:"memory"`
		Parallelism []string `json:"parallelism"`
	} `json:"additionalParameters"`
}

// TranscodePassword converts the first credential of type "password" into
// the target hashed-password representation; exported order decides which
// credential wins when several exist. A nil record with nil error means the
// user has no password credential at all. A non-nil error is a
// per-credential transcoding failure: callers log it and migrate the user
// without credential material.
func TranscodePassword(credentials []model.ExportedCredential) (*model.HashedPassword, error) {
	for _, credential := range credentials {
		if credential.Type != credentialTypePassword {
			continue
		}
		return transcode(credential)
	}

	return nil, nil
}

func transcode(credential model.ExportedCredential) (*model.HashedPassword, error) {
	// Unparseable nested documents degrade to an empty object so the
	// defaults table applies.
	var secret secretData
	if err := json.Unmarshal([]byte(credential.SecretData), &secret); err != nil {
		secret = secretData{}
	}

	data := credentialData{HashIterations: defaultHashIterations}
	if err := json.Unmarshal([]byte(credential.CredentialData), &data); err != nil {
		data = credentialData{HashIterations: defaultHashIterations}
	}

	memory, err := firstInt(data.AdditionalParameters.Memory, defaultMemoryKiB)
	if err != nil {
		return nil, fmt.Errorf("failed to parse memory parameter: %w", err)
	}

	threads, err := firstInt(data.AdditionalParameters.Parallelism, defaultThreads)
	if err != nil {
		return nil, fmt.Errorf("failed to parse parallelism parameter: %w", err)
	}

	return &model.HashedPassword{
		Argon2: model.Argon2Password{
			Hash:       secret.Value,
			Salt:       secret.Salt,
			Iterations: data.HashIterations,
			Memory:     memory,
			Threads:    threads,
		},
	}, nil
}

// firstInt parses the first element of a Keycloak parameter list. A nil
// list falls back to the default; a list that is present but empty or
// non-numeric is a transcoding failure.
func firstInt(values []string, def int) (int, error) {
	if values == nil {
		return def, nil
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("parameter list is empty")
	}

	n, err := strconv.Atoi(values[0])
	if err != nil {
		return 0, fmt.Errorf("parameter %q is not an integer: %w", values[0], err)
	}

	return n, nil
}
