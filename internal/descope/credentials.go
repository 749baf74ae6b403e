package descope

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ManagementKeyExpiry extracts the expiry of a management key without
// verifying its signature. Management keys are JWTs; only the server can
// verify them, but an already-expired key can be reported before any
// migration work starts. A zero time means the key carries no expiry.
func ManagementKeyExpiry(key string) (time.Time, error) {
	token, _, err := jwt.NewParser().ParseUnverified(key, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse management key: %w", err)
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read management key expiry: %w", err)
	}
	if exp == nil {
		return time.Time{}, nil
	}

	return exp.Time, nil
}
