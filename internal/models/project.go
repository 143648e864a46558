package models

import "time"

type ProjectStatus string // Статус проекта

const (
	OpenProject       ProjectStatus = "open"        // Проект открыт для предложений
	InProgressProject ProjectStatus = "in_progress" // Предложение принято, идёт работа
	CompletedProject  ProjectStatus = "completed"   // Проект завершён
)

// Project представляет модель проекта, опубликованного клиентом.
type Project struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	SkillIDs     []string      `json:"skillIds"`
	Budget       *float64      `json:"budget"`
	Deadline     *time.Time    `json:"deadline"`
	ClientID     string        `json:"clientId"`
	FreelancerID *string       `json:"freelancerId"`
	Status       ProjectStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// ProjectRequest представляет структуру запроса для создания проекта.
type ProjectRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	SkillIDs    []string   `json:"skillIds"`
	Budget      *float64   `json:"budget"`
	Deadline    *time.Time `json:"deadline"`
}

// AssignedTo сообщает, назначен ли на проект указанный фрилансер.
func (p *Project) AssignedTo(freelancerID string) bool {
	return p.FreelancerID != nil && *p.FreelancerID == freelancerID
}
