package domain

import "strconv"

// UserProfile is the account as reported by the remote API. It is fetched
// fresh on every protected page load and never trusted from the session
// store alone.
type UserProfile struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"full_name,omitempty"`
	RoleCode string `json:"role"`
}

// Role returns the profile's role on the closed set.
func (u UserProfile) Role() Role {
	return ParseRole(u.RoleCode)
}

// Can reports whether the profile's role grants perm.
func (u UserProfile) Can(perm Permission) bool {
	return HasPermission(u.Role(), perm)
}

// Identity is the minimal identity kept next to the token: the e-mail when
// known, the numeric id otherwise.
func (u UserProfile) Identity() string {
	if u.Email != "" {
		return u.Email
	}
	if u.ID != 0 {
		return strconv.FormatInt(u.ID, 10)
	}
	return ""
}

// Credentials are used for a single login request and never persisted.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegistrationRequest carries the registration form. ConfirmPassword is
// checked locally and never sent to the server.
type RegistrationRequest struct {
	FullName        string `json:"full_name"        validate:"required,fullname"`
	Email           string `json:"email"            validate:"required,loose_email"`
	Username        string `json:"username"         validate:"required,min=3,username"`
	Password        string `json:"password"         validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginResult is the decoded success body of POST /auth/login.
type LoginResult struct {
	Token string
	User  UserProfile
}

// RegisterResult is the decoded success body of POST /auth/register. The
// account is not usable for login until the e-mail is confirmed.
type RegisterResult struct {
	Detail string
	User   *UserProfile
}
