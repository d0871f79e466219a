// Package creds resolves role-scoped CRM credentials from the environment.
// It is the only place in the suite allowed to read secret material;
// scenarios never hardcode or re-read credentials.
package creds

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Role identifies a CRM account tier under test.
type Role string

const (
	RoleDefault Role = "DEFAULT"
	RoleAdmin   Role = "ADMIN"
	RoleL1      Role = "L1"
	RoleL2      Role = "L2"
	RoleL3      Role = "L3"
)

// Roles lists every role the suite knows about, in declaration order.
var Roles = []Role{RoleDefault, RoleAdmin, RoleL1, RoleL2, RoleL3}

// Credential is a resolved username/password pair for a role. Never persisted,
// never logged.
type Credential struct {
	Role     Role
	Username string
	Password string
}

// ConfigurationError reports missing environment variables. It is fatal and
// pre-flight: nothing browser-related may have happened before it is raised.
type ConfigurationError struct {
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required environment: %s", strings.Join(e.Missing, ", "))
}

// EnvPrefix returns the environment variable prefix for a role:
// CRM for the default account, CRM_<ROLE> otherwise.
func EnvPrefix(role Role) string {
	if role == RoleDefault {
		return "CRM"
	}
	return "CRM_" + string(role)
}

// Vars returns the two environment variable names holding a role's secret pair.
func Vars(role Role) (user, pass string) {
	p := EnvPrefix(role)
	return p + "_USER", p + "_PASS"
}

// Resolve reads a role's credential pair from the environment.
func Resolve(role Role) (Credential, error) {
	userVar, passVar := Vars(role)
	user := os.Getenv(userVar)
	pass := os.Getenv(passVar)

	var missing []string
	if user == "" {
		missing = append(missing, userVar)
	}
	if pass == "" {
		missing = append(missing, passVar)
	}
	if len(missing) > 0 {
		return Credential{}, &ConfigurationError{Missing: missing}
	}
	return Credential{Role: role, Username: user, Password: pass}, nil
}

// Available reports whether a role's credential pair is fully configured.
func Available(role Role) bool {
	_, err := Resolve(role)
	return err == nil
}

// CheckAll resolves every role and returns a single ConfigurationError
// aggregating all missing variables, or nil when the environment is complete.
func CheckAll(roles ...Role) error {
	if len(roles) == 0 {
		roles = Roles
	}
	var missing []string
	for _, role := range roles {
		if _, err := Resolve(role); err != nil {
			var ce *ConfigurationError
			if errors.As(err, &ce) {
				missing = append(missing, ce.Missing...)
			}
		}
	}
	if len(missing) > 0 {
		return &ConfigurationError{Missing: missing}
	}
	return nil
}
