//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"
	"os/user"
)

// Actor identifies the machine and user issuing keypad commands.
type Actor struct {
	// Hostname is the client machine name.
	Hostname string
	// Username is the logged-in user.
	Username string
}

// DetectActor gathers host and user information for audit trail.
func DetectActor() (*Actor, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostname: %w", err)
	}

	currentUser, err := user.Current()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", err)
	}

	return &Actor{
		Hostname: hostname,
		Username: currentUser.Username,
	}, nil
}

// String renders the actor as user@host.
func (a *Actor) String() string {
	if a == nil {
		return ""
	}

	return a.Username + "@" + a.Hostname
}
