package models

// UserAccount is a user_account row. Passwd holds either a bcrypt hash or a
// legacy LibreClinica SHA-1 hex digest; both are accepted during credential
// verification.
type UserAccount struct {
	UserID     int64  `db:"user_id" json:"userId"`
	UserName   string `db:"user_name" json:"username"`
	FirstName  string `db:"first_name" json:"firstName"`
	LastName   string `db:"last_name" json:"lastName"`
	Email      string `db:"email" json:"email"`
	Passwd     string `db:"passwd" json:"-"`
	UserTypeID int    `db:"user_type_id" json:"userTypeId"`
	StatusID   int    `db:"status_id" json:"statusId"`
}

// IsAdministrator reports whether the account bypasses study visibility
// filtering.
func (u *UserAccount) IsAdministrator() bool {
	return IsPrivilegedUserType(u.UserTypeID)
}
