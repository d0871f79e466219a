// Package rbac declares which CRM routes each role may reach, as a YAML
// manifest instead of conditionals spread across test bodies. The manifest is
// the single source of truth for the RBAC scenario: each entry names a route,
// the expected outcome for the role, and a locale-tolerant content marker.
package rbac

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wkconnect/wk-crm-tests/internal/creds"
)

// Outcome is the expected result of a role visiting a route.
type Outcome string

const (
	OutcomeAllowed Outcome = "allowed"
	OutcomeDenied  Outcome = "denied"
)

// RouteCheck is one route expectation for a role.
type RouteCheck struct {
	// Path is the route relative to the base URL.
	Path string `yaml:"path"`
	// Outcome is "allowed" or "denied".
	Outcome Outcome `yaml:"outcome"`
	// Marker is a case-insensitive alternation matched against page content
	// when the route is allowed. Ignored for denied routes, which use the
	// shared access-denied indicator.
	Marker string `yaml:"marker,omitempty"`
}

// MarkerPattern compiles the marker into a case-insensitive regexp.
func (r RouteCheck) MarkerPattern() *regexp.Regexp {
	return regexp.MustCompile("(?i)" + r.Marker)
}

// RolePolicy groups the route expectations of one role.
type RolePolicy struct {
	Role   creds.Role   `yaml:"role"`
	Routes []RouteCheck `yaml:"routes"`
}

// Matrix is the full role/route access manifest.
type Matrix struct {
	Roles []RolePolicy `yaml:"roles"`
}

//go:embed matrix.yaml
var defaultManifest []byte

// Default returns the built-in matrix for the production CRM.
func Default() (*Matrix, error) {
	return Parse(defaultManifest)
}

// Load reads a matrix manifest from a YAML file.
func Load(path string) (*Matrix, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rbac matrix: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a matrix manifest.
func Parse(data []byte) (*Matrix, error) {
	var m Matrix
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse rbac matrix: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Matrix) validate() error {
	if len(m.Roles) == 0 {
		return fmt.Errorf("rbac matrix: no roles declared")
	}
	for _, rp := range m.Roles {
		if rp.Role == "" {
			return fmt.Errorf("rbac matrix: role entry without a role name")
		}
		if len(rp.Routes) == 0 {
			return fmt.Errorf("rbac matrix: role %s has no routes", rp.Role)
		}
		for _, rc := range rp.Routes {
			if !strings.HasPrefix(rc.Path, "/") {
				return fmt.Errorf("rbac matrix: role %s route %q must start with /", rp.Role, rc.Path)
			}
			switch rc.Outcome {
			case OutcomeAllowed:
				if rc.Marker == "" {
					return fmt.Errorf("rbac matrix: role %s allowed route %s needs a marker", rp.Role, rc.Path)
				}
				if _, err := regexp.Compile("(?i)" + rc.Marker); err != nil {
					return fmt.Errorf("rbac matrix: role %s route %s marker: %w", rp.Role, rc.Path, err)
				}
			case OutcomeDenied:
			default:
				return fmt.Errorf("rbac matrix: role %s route %s has unknown outcome %q", rp.Role, rc.Path, rc.Outcome)
			}
		}
	}
	return nil
}

// Policy returns the route expectations for a role, or nil if the matrix
// does not cover it.
func (m *Matrix) Policy(role creds.Role) *RolePolicy {
	for i := range m.Roles {
		if m.Roles[i].Role == role {
			return &m.Roles[i]
		}
	}
	return nil
}
