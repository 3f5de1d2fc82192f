package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chainfolio/chainfolio/internal/cache"
	"github.com/chainfolio/chainfolio/internal/models"
	mongorepo "github.com/chainfolio/chainfolio/internal/repositories/mongo"
	"github.com/chainfolio/chainfolio/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	defaultCacheTTL = time.Minute
	searchCacheTTL  = 30 * time.Second
	searchLimitMax  = 50
)

// ResumeInput is the typed payload for create and full-update operations.
type ResumeInput struct {
	Title      string                  `json:"title" binding:"required"`
	Template   string                  `json:"template"`
	Theme      string                  `json:"theme"`
	Basics     models.Basics           `json:"basics"`
	Skills     models.SkillSet         `json:"skills"`
	Work       []models.WorkEntry      `json:"work"`
	Education  []models.EducationEntry `json:"education"`
	Volunteer  []models.VolunteerEntry `json:"volunteer"`
	Awards     []models.AwardEntry     `json:"awards"`
	Activities models.Activities       `json:"activities"`
	Labels     []string                `json:"labels"`
	IsPublic   bool                    `json:"is_public"`
	IsDefault  bool                    `json:"is_default"`
}

type ResumeService interface {
	List(ctx context.Context, userID string) ([]models.Resume, error)
	Get(ctx context.Context, userID, id string) (*models.Resume, error)
	// GetDefault returns the explicit default, else the most recently
	// updated record, else nil for an owner with no records.
	GetDefault(ctx context.Context, userID string) (*models.Resume, error)
	Create(ctx context.Context, userID string, in ResumeInput) (*models.Resume, error)
	Update(ctx context.Context, userID, id string, in ResumeInput) (*models.Resume, error)
	UpdateSection(ctx context.Context, userID, id, section string, value any) (*models.Resume, error)
	SetDefault(ctx context.Context, userID, id string) (*models.Resume, error)
	Duplicate(ctx context.Context, userID, id string) (*models.Resume, error)
	Delete(ctx context.Context, userID, id string) error
	SearchPublic(ctx context.Context, query string, limit int64) ([]models.Resume, error)
}

type resumeService struct {
	resumes mongorepo.ResumeRepository
	cache   cache.Cache
}

func NewResumeService(resumes mongorepo.ResumeRepository, c cache.Cache) ResumeService {
	return &resumeService{resumes: resumes, cache: c}
}

// sections that UpdateSection may replace; anything else is rejected.
var allowedSections = map[string]bool{
	"basics":     true,
	"skills":     true,
	"work":       true,
	"education":  true,
	"volunteer":  true,
	"awards":     true,
	"activities": true,
	"labels":     true,
}

func defaultCacheKey(userID string) string { return "resume:default:" + userID }

func searchCacheKey(query string, limit int64) string {
	return fmt.Sprintf("resume:search:%s:%d", strings.ToLower(strings.TrimSpace(query)), limit)
}

func (s *resumeService) invalidateOwner(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	// best effort; a stale default entry ages out within the TTL anyway
	_ = s.cache.Del(ctx, defaultCacheKey(userID))
}

func (s *resumeService) List(ctx context.Context, userID string) ([]models.Resume, error) {
	const op = "ResumeService.List"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	out, err := s.resumes.ListByOwner(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}
	return out, nil
}

func (s *resumeService) Get(ctx context.Context, userID, id string) (*models.Resume, error) {
	const op = "ResumeService.Get"

	if userID == "" || id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and id are required", nil)
	}

	out, err := s.resumes.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}
	return out, nil
}

func (s *resumeService) GetDefault(ctx context.Context, userID string) (*models.Resume, error) {
	const op = "ResumeService.GetDefault"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	key := defaultCacheKey(userID)
	if s.cache != nil {
		var cached models.Resume
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	out, err := s.resumes.FindDefault(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		// no explicit default: fall back to the latest work
		out, err = s.resumes.FindLatest(ctx, userID)
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil
		}
	}
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, out, defaultCacheTTL)
	}
	return out, nil
}

func (s *resumeService) Create(ctx context.Context, userID string, in ResumeInput) (*models.Resume, error) {
	const op = "ResumeService.Create"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title is required", nil)
	}
	if err := validateSkills(in.Skills); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
	}

	// unset-then-insert ordering keeps the one-default invariant; the two
	// writes are not a single transaction (accepted gap, see DESIGN.md)
	if in.IsDefault {
		if err := s.resumes.UnsetDefaults(ctx, userID, ""); err != nil {
			return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
		}
	}

	res := resumeFromInput(userID, in)
	if err := s.resumes.Insert(ctx, res); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	s.invalidateOwner(ctx, userID)
	return res, nil
}

func (s *resumeService) Update(ctx context.Context, userID, id string, in ResumeInput) (*models.Resume, error) {
	const op = "ResumeService.Update"

	if userID == "" || id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and id are required", nil)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title is required", nil)
	}
	if err := validateSkills(in.Skills); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
	}

	if in.IsDefault {
		// every other record of the owner loses the flag; the record being
		// updated is excluded so the replace below can set it
		if err := s.resumes.UnsetDefaults(ctx, userID, id); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
			}
			return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
		}
	}

	if err := s.resumes.Replace(ctx, userID, id, resumeFromInput(userID, in)); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	s.invalidateOwner(ctx, userID)
	return s.Get(ctx, userID, id)
}

func (s *resumeService) UpdateSection(ctx context.Context, userID, id, section string, value any) (*models.Resume, error) {
	const op = "ResumeService.UpdateSection"

	if userID == "" || id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and id are required", nil)
	}
	if !allowedSections[section] {
		return nil, utils.E(utils.CodeInvalidArgument, op, "unknown section: "+section, nil)
	}
	if skills, ok := value.(models.SkillSet); ok {
		if err := validateSkills(skills); err != nil {
			return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
		}
	}

	if err := s.resumes.SetSection(ctx, userID, id, section, value); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	s.invalidateOwner(ctx, userID)
	return s.Get(ctx, userID, id)
}

func (s *resumeService) SetDefault(ctx context.Context, userID, id string) (*models.Resume, error) {
	const op = "ResumeService.SetDefault"

	if userID == "" || id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and id are required", nil)
	}

	// ownership check first so a foreign id fails before any flag moves
	if _, err := s.resumes.GetByID(ctx, userID, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	if err := s.resumes.UnsetDefaults(ctx, userID, id); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}
	if err := s.resumes.SetDefaultFlag(ctx, userID, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	s.invalidateOwner(ctx, userID)
	return s.Get(ctx, userID, id)
}

func (s *resumeService) Duplicate(ctx context.Context, userID, id string) (*models.Resume, error) {
	const op = "ResumeService.Duplicate"

	src, err := s.resumes.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	copyRes := *src
	copyRes.ID = primitive.NilObjectID // repo assigns a fresh id on insert
	copyRes.Title = src.Title + " (Copy)"
	copyRes.IsDefault = false
	copyRes.CreatedAt = time.Time{}
	copyRes.UpdatedAt = time.Time{}

	if err := s.resumes.Insert(ctx, &copyRes); err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	s.invalidateOwner(ctx, userID)
	return &copyRes, nil
}

func (s *resumeService) Delete(ctx context.Context, userID, id string) error {
	const op = "ResumeService.Delete"

	if userID == "" || id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "user_id and id are required", nil)
	}

	if err := s.resumes.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	s.invalidateOwner(ctx, userID)
	return nil
}

func (s *resumeService) SearchPublic(ctx context.Context, query string, limit int64) ([]models.Resume, error) {
	const op = "ResumeService.SearchPublic"

	if strings.TrimSpace(query) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "query is required", nil)
	}
	if limit <= 0 || limit > searchLimitMax {
		limit = 20
	}

	key := searchCacheKey(query, limit)
	if s.cache != nil {
		var cached []models.Resume
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	out, err := s.resumes.SearchPublic(ctx, query, limit)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, out, searchCacheTTL)
	}
	return out, nil
}

func resumeFromInput(userID string, in ResumeInput) *models.Resume {
	return &models.Resume{
		UserID:     userID,
		Title:      strings.TrimSpace(in.Title),
		Template:   in.Template,
		Theme:      in.Theme,
		Basics:     in.Basics,
		Skills:     in.Skills,
		Work:       in.Work,
		Education:  in.Education,
		Volunteer:  in.Volunteer,
		Awards:     in.Awards,
		Activities: in.Activities,
		Labels:     in.Labels,
		IsPublic:   in.IsPublic,
		IsDefault:  in.IsDefault,
	}
}

func validateSkills(set models.SkillSet) error {
	groups := [][]models.Skill{
		set.Languages, set.Frameworks, set.Databases, set.Tools,
		set.Cloud, set.Practices, set.SoftSkills,
	}
	for _, g := range groups {
		for _, sk := range g {
			if sk.Level < 0 || sk.Level > 5 {
				return fmt.Errorf("skill %q: level must be between 0 and 5", sk.Name)
			}
		}
	}
	return nil
}
