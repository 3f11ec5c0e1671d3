package models

// Role identifies which side of a match a participant is on.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleRecruiter Role = "recruiter"
)

// Opposite returns the other side of the match.
func (r Role) Opposite() Role {
	if r == RoleRecruiter {
		return RoleCandidate
	}
	return RoleRecruiter
}

// Participant holds the profile details fetched for one party of a match.
type Participant struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Role   Role   `json:"role,omitempty"`
}

// User is the current, authenticated user of the relay.
type User struct {
	ID        string
	Name      string
	Role      Role
	CompanyID string
}

// IsRecruiter reports whether the user looks like a recruiter: either the
// role says so or a company marker is present.
func (u User) IsRecruiter() bool {
	return u.Role == RoleRecruiter || u.CompanyID != ""
}
