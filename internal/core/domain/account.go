package domain

import "time"

// Account is a user record as held by the reference API server. It carries
// the password hash and pending confirmation token that never leave it.
type Account struct {
	ID           int64
	Username     string
	Email        string
	FullName     string
	Role         string
	PasswordHash string
	// RegToken is set until the e-mail address is confirmed.
	RegToken  string
	CreatedAt time.Time
}

// Confirmed reports whether the e-mail confirmation link has been followed.
func (a Account) Confirmed() bool {
	return a.RegToken == ""
}

// Profile is the public view of the account.
func (a Account) Profile() UserProfile {
	return UserProfile{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		FullName: a.FullName,
		RoleCode: a.Role,
	}
}

// ConfirmationMail asks the recipient to follow Link to confirm an account.
type ConfirmationMail struct {
	To   string
	Link string
}
