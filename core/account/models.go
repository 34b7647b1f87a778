package account

// Role is the kind of account: teachers manage students, parents view their child.
type Role string

// Roles
const (
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
)

var AllRoles = []Role{RoleTeacher, RoleParent}

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Account is a login credential bound to a role.
// Passwords are stored and compared in plaintext.
type Account struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

func (a Account) IsTeacher() bool {
	return a.Role == RoleTeacher
}

func (a Account) IsParent() bool {
	return a.Role == RoleParent
}

func (a Account) matches(username, password string, role Role) bool {
	return a.Username == username && a.Password == password && a.Role == role
}
