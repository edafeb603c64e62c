package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the coarse operator role. Admin implies every capability.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// IsValid checks the role is a known value
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStaff
}

// Capability is a "<resource>.<action>" permission string.
type Capability string

// Capability resources
const (
	ResourceProducts  = "products"
	ResourceInventory = "inventory"
	ResourcePurchases = "purchases"
	ResourceSales     = "sales"
	ResourceUsers     = "users"
	ResourceReports   = "reports"
	ResourceSettings  = "settings"
)

// Capability actions
const (
	ActionRead   = "read"
	ActionWrite  = "write"
	ActionDelete = "delete"
)

var validResources = map[string]bool{
	ResourceProducts:  true,
	ResourceInventory: true,
	ResourcePurchases: true,
	ResourceSales:     true,
	ResourceUsers:     true,
	ResourceReports:   true,
	ResourceSettings:  true,
}

var validActions = map[string]bool{
	ActionRead:   true,
	ActionWrite:  true,
	ActionDelete: true,
}

// Cap builds a capability from resource and action
func Cap(resource, action string) Capability {
	return Capability(resource + "." + action)
}

// ParseCapability validates and returns a capability string
func ParseCapability(s string) (Capability, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 || !validResources[parts[0]] || !validActions[parts[1]] {
		return "", fmt.Errorf("invalid capability %q", s)
	}
	return Capability(s), nil
}

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	OperatorID   string
	Username     string
	Role         Role
	Capabilities []Capability
	JTI          string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	OperatorID   string       `json:"operator_id"`
	Username     string       `json:"username"`
	Role         Role         `json:"role"`
	Capabilities []Capability `json:"capabilities,omitempty"`
	jwt.RegisteredClaims
}

// HasCapability reports whether the claims grant the capability.
// Admin role grants everything.
func (c *AccessTokenClaims) HasCapability(cap Capability) bool {
	if c.Role == RoleAdmin {
		return true
	}
	for _, granted := range c.Capabilities {
		if granted == cap {
			return true
		}
	}
	return false
}
