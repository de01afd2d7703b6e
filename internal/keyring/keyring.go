// Package keyring stores per-team session tokens in the OS credential
// store.
package keyring

import (
	"errors"
	"fmt"

	gokeyring "github.com/zalando/go-keyring"
)

const service = "teamdock"

// ErrNotFound is returned when no token is stored for a team.
var ErrNotFound = errors.New("no session token stored")

// SetToken stores a team's session token.
func SetToken(teamID, token string) error {
	if err := gokeyring.Set(service, teamID, token); err != nil {
		return fmt.Errorf("store token for %s: %w", teamID, err)
	}
	return nil
}

// Token retrieves a team's session token.
func Token(teamID string) (string, error) {
	token, err := gokeyring.Get(service, teamID)
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read token for %s: %w", teamID, err)
	}
	return token, nil
}

// DeleteToken removes a team's session token. Missing tokens are not an
// error; sign-out and auth invalidation both call this unconditionally.
func DeleteToken(teamID string) error {
	err := gokeyring.Delete(service, teamID)
	if err != nil && !errors.Is(err, gokeyring.ErrNotFound) {
		return fmt.Errorf("delete token for %s: %w", teamID, err)
	}
	return nil
}
