package models

// LoginRequest defines the structure for login requests
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is returned by a successful POST /api/login
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
	User    *Site  `json:"user"`
}

// Roles carried in the token claims
const (
	RoleAdmin = "admin"
	RoleSite  = "site"
)
