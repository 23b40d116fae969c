package schemas

import "time"

// DataDTO is the envelope for every successful response carrying a body
// Data is the payload of the response
type DataDTO struct {
	Data interface{} `json:"data"`
}

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error CustomError `json:"error"`
}

// MetadataDTO is a struct that represents the root metadata response
// ApiVersion is the running version of the API
// ApiName is the name of the API
type MetadataDTO struct {
	ApiVersion string `json:"apiVersion"`
	ApiName    string `json:"apiName"`
}

// UserDTO is a struct that represents a user response
// It never carries the password hash
type UserDTO struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	IsActive        bool       `json:"isActive"`
	EmailVerifiedAt *time.Time `json:"emailVerifiedAt"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// AuthDTO is a struct that represents a login response
// AccessToken is the signed bearer credential
// User is the authenticated user
type AuthDTO struct {
	AccessToken string   `json:"accessToken"`
	User        *UserDTO `json:"user"`
}

// NewUserDTO converts a stored user into its client representation.
func NewUserDTO(user *User) *UserDTO {
	return &UserDTO{
		ID:              user.ID,
		Name:            user.Name,
		Email:           user.Email,
		IsActive:        user.IsActive,
		EmailVerifiedAt: user.EmailVerifiedAt,
		CreatedAt:       user.CreatedAt,
	}
}
