package domain

import "time"

// Role is the single role a user holds at any given time.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User models an account as stored, including the credential hash.
// It never crosses the API boundary; handlers and responses use UserView.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	SedeID       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// View strips the credential from a stored user.
func (u *User) View() UserView {
	return UserView{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		SedeID:    u.SedeID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// UserView is the external projection of a user. It carries no credential
// field at all, so a password hash cannot leak through serialization.
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	SedeID    string    `json:"sedeId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
