package operator

import "time"

// Roles an operator account can hold. Admins pass every role check.
const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// Operator is a desk login. The password hash is stored with the record but
// cleared before the record leaves the service.
type Operator struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"displayName,omitempty"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
