package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chainfolio/chainfolio/internal/models"
	"github.com/chainfolio/chainfolio/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeResumeRepo is an in-memory stand-in for the Mongo repository. It keeps
// the same contract: owner+id lookups, ErrNotFound for foreign records, and
// it assigns ids/timestamps on insert.
type fakeResumeRepo struct {
	mu   sync.Mutex
	byID map[string]*models.Resume
	seq  int // insertion tiebreak for equal timestamps
	ord  map[string]int
}

func newFakeResumeRepo() *fakeResumeRepo {
	return &fakeResumeRepo{
		byID: map[string]*models.Resume{},
		ord:  map[string]int{},
	}
}

func (f *fakeResumeRepo) find(userID, id string) (*models.Resume, error) {
	r, ok := f.byID[id]
	if !ok || r.UserID != userID {
		return nil, utils.ErrNotFound
	}
	return r, nil
}

func (f *fakeResumeRepo) Insert(_ context.Context, r *models.Resume) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	cp := *r
	f.seq++
	f.byID[r.ID.Hex()] = &cp
	f.ord[r.ID.Hex()] = f.seq
	return nil
}

func (f *fakeResumeRepo) ListByOwner(_ context.Context, userID string) ([]models.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Resume
	for _, r := range f.byID {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return f.ord[out[i].ID.Hex()] > f.ord[out[j].ID.Hex()]
	})
	return out, nil
}

func (f *fakeResumeRepo) GetByID(_ context.Context, userID, id string) (*models.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, err := f.find(userID, id)
	if err != nil {
		return nil, err
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResumeRepo) FindDefault(ctx context.Context, userID string) (*models.Resume, error) {
	out, _ := f.ListByOwner(ctx, userID)
	for _, r := range out {
		if r.IsDefault {
			cp := r
			return &cp, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (f *fakeResumeRepo) FindLatest(ctx context.Context, userID string) (*models.Resume, error) {
	out, _ := f.ListByOwner(ctx, userID)
	if len(out) == 0 {
		return nil, utils.ErrNotFound
	}
	cp := out[0]
	return &cp, nil
}

func (f *fakeResumeRepo) Replace(_ context.Context, userID, id string, r *models.Resume) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur, err := f.find(userID, id)
	if err != nil {
		return err
	}
	cur.Title = r.Title
	cur.Template = r.Template
	cur.Theme = r.Theme
	cur.Basics = r.Basics
	cur.Skills = r.Skills
	cur.Work = r.Work
	cur.Education = r.Education
	cur.Volunteer = r.Volunteer
	cur.Awards = r.Awards
	cur.Activities = r.Activities
	cur.Labels = r.Labels
	cur.IsPublic = r.IsPublic
	cur.IsDefault = r.IsDefault
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeResumeRepo) SetSection(_ context.Context, userID, id, field string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur, err := f.find(userID, id)
	if err != nil {
		return err
	}
	switch field {
	case "basics":
		cur.Basics = value.(models.Basics)
	case "skills":
		cur.Skills = value.(models.SkillSet)
	case "work":
		cur.Work = value.([]models.WorkEntry)
	case "education":
		cur.Education = value.([]models.EducationEntry)
	case "volunteer":
		cur.Volunteer = value.([]models.VolunteerEntry)
	case "awards":
		cur.Awards = value.([]models.AwardEntry)
	case "activities":
		cur.Activities = value.(models.Activities)
	case "labels":
		cur.Labels = value.([]string)
	}
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeResumeRepo) UnsetDefaults(_ context.Context, userID, excludeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, r := range f.byID {
		if r.UserID == userID && r.IsDefault && id != excludeID {
			r.IsDefault = false
		}
	}
	return nil
}

func (f *fakeResumeRepo) SetDefaultFlag(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur, err := f.find(userID, id)
	if err != nil {
		return err
	}
	cur.IsDefault = true
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeResumeRepo) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.find(userID, id); err != nil {
		return err
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeResumeRepo) SetVerification(_ context.Context, userID, id string, v *models.Verification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur, err := f.find(userID, id)
	if err != nil {
		return err
	}
	cp := *v
	cur.Verification = &cp
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeResumeRepo) ClearVerification(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cur, err := f.find(userID, id)
	if err != nil {
		return err
	}
	cur.Verification = nil
	cur.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeResumeRepo) SearchPublic(_ context.Context, query string, limit int64) ([]models.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	q := strings.ToLower(query)
	var out []models.Resume
	for _, r := range f.byID {
		if !r.IsPublic {
			continue
		}
		hay := strings.ToLower(r.Basics.Name + " " + r.Basics.Label + " " + r.Basics.Summary + " " + r.Title)
		if strings.Contains(hay, q) {
			out = append(out, *r)
		}
		if int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

// defaultCount is a test helper for the one-default invariant.
func (f *fakeResumeRepo) defaultCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, r := range f.byID {
		if r.UserID == userID && r.IsDefault {
			n++
		}
	}
	return n
}

// memCache is a TTL-less in-memory cache.Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
	hits int
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, nil
	}
	c.hits++
	return true, nil
}

func (c *memCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.data[key] = b
	c.sets++
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

// fakeAuditRepo records appended rows in order.
type fakeAuditRepo struct {
	mu   sync.Mutex
	rows []models.VerificationAudit
}

func (f *fakeAuditRepo) Append(_ context.Context, a *models.VerificationAudit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, *a)
	return nil
}

func (f *fakeAuditRepo) ListByResume(_ context.Context, userID, resumeID string) ([]models.VerificationAudit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.VerificationAudit
	for _, r := range f.rows {
		if r.UserID == userID && r.ResumeID == resumeID {
			out = append(out, r)
		}
	}
	return out, nil
}
