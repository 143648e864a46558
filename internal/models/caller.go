package models

type Role string // Роль аутентифицированного пользователя

const (
	ClientRole     Role = "client"
	FreelancerRole Role = "freelancer"
	AdminRole      Role = "admin"
)

// Valid проверяет, что роль известна системе.
func (r Role) Valid() bool {
	switch r {
	case ClientRole, FreelancerRole, AdminRole:
		return true
	}
	return false
}

// Caller описывает проверенного пользователя, выполняющего операцию.
type Caller struct {
	ID   string
	Role Role
}

func (c Caller) IsClient() bool     { return c.Role == ClientRole }
func (c Caller) IsFreelancer() bool { return c.Role == FreelancerRole }
func (c Caller) IsAdmin() bool      { return c.Role == AdminRole }

// OwnsProject сообщает, является ли пользователь клиентом-владельцем проекта.
func (c Caller) OwnsProject(p *Project) bool {
	return c.IsClient() && p.ClientID == c.ID
}

// CanManageProject - владелец проекта или администратор.
func (c Caller) CanManageProject(p *Project) bool {
	return c.OwnsProject(p) || c.IsAdmin()
}
