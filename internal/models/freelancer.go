package models

// Skill представляет навык, требуемый проектом или имеющийся у фрилансера.
type Skill struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Freelancer представляет профиль фрилансера вместе с его навыками.
type Freelancer struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	PortfolioURL string   `json:"portfolioUrl,omitempty"`
	SkillIDs     []string `json:"skillIds"`
}

// FreelancerSummary - краткое представление фрилансера в рекомендациях.
type FreelancerSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PortfolioURL string `json:"portfolioUrl,omitempty"`
}

// Summary возвращает краткое представление фрилансера.
func (f *Freelancer) Summary() FreelancerSummary {
	return FreelancerSummary{ID: f.ID, Name: f.Name, PortfolioURL: f.PortfolioURL}
}
