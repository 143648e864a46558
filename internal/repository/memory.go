package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/senyabanana/freelance-match/internal/models"
)

// MemoryStore хранит данные в памяти процесса. Транзакции выполняются над копией
// данных под общей блокировкой и публикуются целиком только при успехе fn, поэтому
// все записи идут по одной. Хранилище предназначено для тестов и локального
// запуска, рабочая конфигурация использует PostgreSQL.
type MemoryStore struct {
	mu   sync.Mutex
	data *memoryData
}

type memoryData struct {
	projects      map[string]models.Project
	projectSkills map[string][]string
	proposals     map[string]models.Proposal
	reviews       map[string]models.Review
	skills        map[string]models.Skill
	freelancers   map[string]models.Freelancer
}

// NewMemoryStore создает пустое хранилище в памяти.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: &memoryData{
		projects:      make(map[string]models.Project),
		projectSkills: make(map[string][]string),
		proposals:     make(map[string]models.Proposal),
		reviews:       make(map[string]models.Review),
		skills:        make(map[string]models.Skill),
		freelancers:   make(map[string]models.Freelancer),
	}}
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		projects:      make(map[string]models.Project, len(d.projects)),
		projectSkills: make(map[string][]string, len(d.projectSkills)),
		proposals:     make(map[string]models.Proposal, len(d.proposals)),
		reviews:       make(map[string]models.Review, len(d.reviews)),
		skills:        d.skills,
		freelancers:   d.freelancers,
	}
	for k, v := range d.projects {
		c.projects[k] = v
	}
	for k, v := range d.projectSkills {
		c.projectSkills[k] = v
	}
	for k, v := range d.proposals {
		c.proposals[k] = v
	}
	for k, v := range d.reviews {
		c.reviews[k] = v
	}
	return c
}

// AddSkill регистрирует навык. Навыки и фрилансеры управляются внешним CRUD,
// поэтому в транзакциях они доступны только для чтения.
func (s *MemoryStore) AddSkill(skill models.Skill) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.skills[skill.ID] = skill
}

// AddFreelancer регистрирует фрилансера вместе с его навыками.
func (s *MemoryStore) AddFreelancer(freelancer models.Freelancer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	freelancer.SkillIDs = append([]string(nil), freelancer.SkillIDs...)
	s.data.freelancers[freelancer.ID] = freelancer
}

// MemorySeed - справочные данные для хранилища в памяти.
type MemorySeed struct {
	Skills      []models.Skill      `json:"skills"`
	Freelancers []models.Freelancer `json:"freelancers"`
}

// LoadMemorySeed читает навыки и фрилансеров из JSON-файла. Навыки фрилансеров
// должны быть перечислены в skills.
func (s *MemoryStore) LoadMemorySeed(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}
	var seed MemorySeed
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	known := make(map[string]bool, len(seed.Skills))
	for _, skill := range seed.Skills {
		known[skill.ID] = true
	}
	for _, f := range seed.Freelancers {
		for _, id := range f.SkillIDs {
			if !known[id] {
				return fmt.Errorf("freelancer %s has unknown skill %s", f.ID, id)
			}
		}
	}

	for _, skill := range seed.Skills {
		s.AddSkill(skill)
	}
	for _, f := range seed.Freelancers {
		s.AddFreelancer(f)
	}
	return nil
}

// Reader возвращает репозитории, которые читают актуальное состояние.
func (s *MemoryStore) Reader() UnitOfWork {
	return memoryUnit{store: s}
}

// WithinTx выполняет fn над копией данных и публикует её при успехе.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.clone()
	if err := fn(ctx, memoryUnit{store: s, tx: working}); err != nil {
		return err
	}
	s.data = working
	return nil
}

type memoryUnit struct {
	store *MemoryStore
	tx    *memoryData
}

func (u memoryUnit) Projects() ProjectRepository   { return memoryProjects{u} }
func (u memoryUnit) Proposals() ProposalRepository { return memoryProposals{u} }
func (u memoryUnit) Reviews() ReviewRepository     { return memoryReviews{u} }
func (u memoryUnit) Skills() SkillRepository       { return memorySkills{u} }

// view выполняет fn над данными транзакции или над текущим состоянием под блокировкой.
func (u memoryUnit) view(fn func(d *memoryData) error) error {
	if u.tx != nil {
		return fn(u.tx)
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	return fn(u.store.data)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type memoryProjects struct{ u memoryUnit }

func (r memoryProjects) withSkills(d *memoryData, p models.Project) models.Project {
	p.SkillIDs = append([]string{}, d.projectSkills[p.ID]...)
	if p.FreelancerID != nil {
		id := *p.FreelancerID
		p.FreelancerID = &id
	}
	return p
}

func (r memoryProjects) CreateProject(_ context.Context, project *models.Project) error {
	return r.u.view(func(d *memoryData) error {
		if _, ok := d.projects[project.ID]; ok {
			return ErrDuplicate
		}
		stored := *project
		stored.SkillIDs = nil
		d.projects[project.ID] = stored
		return nil
	})
}

func (r memoryProjects) GetProject(_ context.Context, projectId string) (*models.Project, error) {
	var out *models.Project
	err := r.u.view(func(d *memoryData) error {
		p, ok := d.projects[projectId]
		if !ok {
			return ErrNotFound
		}
		p = r.withSkills(d, p)
		out = &p
		return nil
	})
	return out, err
}

func (r memoryProjects) filter(match func(p models.Project) bool, limit, offset int) ([]models.Project, error) {
	var out []models.Project
	err := r.u.view(func(d *memoryData) error {
		for _, p := range d.projects {
			if match(p) {
				out = append(out, r.withSkills(d, p))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), err
}

func (r memoryProjects) GetOpenProjects(_ context.Context, limit, offset int) ([]models.Project, error) {
	return r.filter(func(p models.Project) bool { return p.Status == models.OpenProject }, limit, offset)
}

func (r memoryProjects) GetClientProjects(_ context.Context, clientId string, limit, offset int) ([]models.Project, error) {
	return r.filter(func(p models.Project) bool { return p.ClientID == clientId }, limit, offset)
}

func (r memoryProjects) GetFreelancerProjects(_ context.Context, freelancerId string, limit, offset int) ([]models.Project, error) {
	return r.filter(func(p models.Project) bool { return p.AssignedTo(freelancerId) }, limit, offset)
}

func (r memoryProjects) StartProject(_ context.Context, projectId, freelancerId string) (bool, error) {
	var ok bool
	err := r.u.view(func(d *memoryData) error {
		p, found := d.projects[projectId]
		if !found || p.Status != models.OpenProject || p.FreelancerID != nil {
			return nil
		}
		id := freelancerId
		p.FreelancerID = &id
		p.Status = models.InProgressProject
		d.projects[projectId] = p
		ok = true
		return nil
	})
	return ok, err
}

func (r memoryProjects) CompleteProject(_ context.Context, projectId string) (bool, error) {
	var ok bool
	err := r.u.view(func(d *memoryData) error {
		p, found := d.projects[projectId]
		if !found || p.Status != models.InProgressProject || p.FreelancerID == nil {
			return nil
		}
		p.Status = models.CompletedProject
		d.projects[projectId] = p
		ok = true
		return nil
	})
	return ok, err
}

type memoryProposals struct{ u memoryUnit }

func (r memoryProposals) CreateProposal(_ context.Context, proposal *models.Proposal) error {
	return r.u.view(func(d *memoryData) error {
		if _, ok := d.proposals[proposal.ID]; ok {
			return ErrDuplicate
		}
		d.proposals[proposal.ID] = *proposal
		return nil
	})
}

func (r memoryProposals) GetProposal(_ context.Context, proposalId string) (*models.Proposal, error) {
	var out *models.Proposal
	err := r.u.view(func(d *memoryData) error {
		p, ok := d.proposals[proposalId]
		if !ok {
			return ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memoryProposals) filter(match func(p models.Proposal) bool) ([]models.Proposal, error) {
	var out []models.Proposal
	err := r.u.view(func(d *memoryData) error {
		for _, p := range d.proposals {
			if match(p) {
				out = append(out, p)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r memoryProposals) GetProjectProposals(_ context.Context, projectId string) ([]models.Proposal, error) {
	return r.filter(func(p models.Proposal) bool { return p.ProjectID == projectId })
}

func (r memoryProposals) GetFreelancerProposals(_ context.Context, freelancerId string) ([]models.Proposal, error) {
	return r.filter(func(p models.Proposal) bool { return p.FreelancerID == freelancerId })
}

func (r memoryProposals) GetAcceptedProposal(_ context.Context, projectId string) (*models.Proposal, error) {
	accepted, err := r.filter(func(p models.Proposal) bool {
		return p.ProjectID == projectId && p.Status == models.AcceptedProposal
	})
	if err != nil {
		return nil, err
	}
	if len(accepted) == 0 {
		return nil, ErrNotFound
	}
	return &accepted[0], nil
}

func (r memoryProposals) HasQualifyingProposal(_ context.Context, projectId, freelancerId string) (bool, error) {
	found, err := r.filter(func(p models.Proposal) bool {
		return p.ProjectID == projectId && p.FreelancerID == freelancerId && p.Qualifies()
	})
	return len(found) > 0, err
}

func (r memoryProposals) UpdateProposalStatus(_ context.Context, proposalId string, from, to models.ProposalStatus) (bool, error) {
	var ok bool
	err := r.u.view(func(d *memoryData) error {
		p, found := d.proposals[proposalId]
		if !found || p.Status != from {
			return nil
		}
		if to == models.AcceptedProposal {
			// Аналог частичного уникального индекса в PostgreSQL.
			for _, other := range d.proposals {
				if other.ProjectID == p.ProjectID && other.ID != p.ID && other.Qualifies() {
					return ErrDuplicate
				}
			}
		}
		p.Status = to
		d.proposals[proposalId] = p
		ok = true
		return nil
	})
	return ok, err
}

func (r memoryProposals) DeleteProposal(_ context.Context, proposalId string, status models.ProposalStatus) (bool, error) {
	var ok bool
	err := r.u.view(func(d *memoryData) error {
		p, found := d.proposals[proposalId]
		if !found || p.Status != status {
			return nil
		}
		delete(d.proposals, proposalId)
		ok = true
		return nil
	})
	return ok, err
}

type memoryReviews struct{ u memoryUnit }

func reviewKey(projectId, freelancerId string) string {
	return projectId + "|" + freelancerId
}

func (r memoryReviews) CreateReview(_ context.Context, review *models.Review) error {
	return r.u.view(func(d *memoryData) error {
		key := reviewKey(review.ProjectID, review.FreelancerID)
		if _, ok := d.reviews[key]; ok {
			return ErrDuplicate
		}
		d.reviews[key] = *review
		return nil
	})
}

func (r memoryReviews) ReviewExists(_ context.Context, projectId, freelancerId string) (bool, error) {
	var exists bool
	err := r.u.view(func(d *memoryData) error {
		_, exists = d.reviews[reviewKey(projectId, freelancerId)]
		return nil
	})
	return exists, err
}

func (r memoryReviews) GetFreelancerReviews(_ context.Context, freelancerId string, limit, offset int) ([]models.Review, error) {
	var out []models.Review
	err := r.u.view(func(d *memoryData) error {
		for _, rv := range d.reviews {
			if rv.FreelancerID == freelancerId {
				out = append(out, rv)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return page(out, limit, offset), err
}

func (r memoryReviews) GetRatingStats(_ context.Context, freelancerIds []string) (map[string]models.RatingStats, error) {
	wanted := make(map[string]bool, len(freelancerIds))
	for _, id := range freelancerIds {
		wanted[id] = true
	}
	stats := make(map[string]models.RatingStats, len(freelancerIds))
	err := r.u.view(func(d *memoryData) error {
		for _, rv := range d.reviews {
			if !wanted[rv.FreelancerID] {
				continue
			}
			s := stats[rv.FreelancerID]
			s.Sum += rv.Rating
			s.Count++
			stats[rv.FreelancerID] = s
		}
		return nil
	})
	return stats, err
}

type memorySkills struct{ u memoryUnit }

func (r memorySkills) CountSkills(_ context.Context, skillIds []string) (int, error) {
	var count int
	err := r.u.view(func(d *memoryData) error {
		seen := make(map[string]bool, len(skillIds))
		for _, id := range skillIds {
			if _, ok := d.skills[id]; ok && !seen[id] {
				seen[id] = true
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r memorySkills) SetProjectSkills(_ context.Context, projectId string, skillIds []string) error {
	return r.u.view(func(d *memoryData) error {
		d.projectSkills[projectId] = append([]string(nil), skillIds...)
		return nil
	})
}

func (r memorySkills) FindFreelancersBySkills(_ context.Context, skillIds []string) ([]models.Freelancer, error) {
	wanted := make(map[string]bool, len(skillIds))
	for _, id := range skillIds {
		wanted[id] = true
	}
	var out []models.Freelancer
	err := r.u.view(func(d *memoryData) error {
		for _, f := range d.freelancers {
			for _, id := range f.SkillIDs {
				if wanted[id] {
					f.SkillIDs = append([]string(nil), f.SkillIDs...)
					out = append(out, f)
					break
				}
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}
