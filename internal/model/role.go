package model

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// Role predicates are nil-safe: a nil *User is the anonymous actor and
// holds none of them.

func (u *User) IsAdmin() bool {
	return u != nil && (u.IsSuperuser || u.Role == RoleAdmin)
}

func (u *User) IsModerator() bool {
	return u != nil && u.Role == RoleModerator
}

func (u *User) IsUser() bool {
	return u != nil && u.Role == RoleUser
}

func (u *User) IsAuthenticated() bool {
	return u != nil
}
