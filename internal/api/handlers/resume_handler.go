package handlers

import (
	"net/http"
	"strconv"

	"github.com/chainfolio/chainfolio/internal/models"
	"github.com/chainfolio/chainfolio/internal/services"
	"github.com/chainfolio/chainfolio/internal/utils"
	"github.com/gin-gonic/gin"
)

type ResumeHandler struct {
	svc services.ResumeService
}

func NewResumeHandler(svc services.ResumeService) *ResumeHandler {
	return &ResumeHandler{svc: svc}
}

func (h *ResumeHandler) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resumes": out})
}

func (h *ResumeHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.ResumeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ResumeHandler.Create", "invalid request body", err))
		return
	}

	out, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, out)
}

// GetDefault answers "which resume should I show". Body is JSON null when
// the owner has no records at all.
func (h *ResumeHandler) GetDefault(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.GetDefault(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *ResumeHandler) Get(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *ResumeHandler) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req services.ResumeInput
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ResumeHandler.Update", "invalid request body", err))
		return
	}

	out, err := h.svc.Update(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

// UpdateSectionRequest carries exactly one section to replace. Pointer
// fields distinguish "absent" from "set to empty".
type UpdateSectionRequest struct {
	Basics     *models.Basics           `json:"basics,omitempty"`
	Skills     *models.SkillSet         `json:"skills,omitempty"`
	Work       *[]models.WorkEntry      `json:"work,omitempty"`
	Education  *[]models.EducationEntry `json:"education,omitempty"`
	Volunteer  *[]models.VolunteerEntry `json:"volunteer,omitempty"`
	Awards     *[]models.AwardEntry     `json:"awards,omitempty"`
	Activities *models.Activities       `json:"activities,omitempty"`
	Labels     *[]string                `json:"labels,omitempty"`
}

func (r UpdateSectionRequest) section() (string, any, bool) {
	type candidate struct {
		name  string
		set   bool
		value any
	}
	candidates := []candidate{
		{"basics", r.Basics != nil, deref(r.Basics)},
		{"skills", r.Skills != nil, deref(r.Skills)},
		{"work", r.Work != nil, deref(r.Work)},
		{"education", r.Education != nil, deref(r.Education)},
		{"volunteer", r.Volunteer != nil, deref(r.Volunteer)},
		{"awards", r.Awards != nil, deref(r.Awards)},
		{"activities", r.Activities != nil, deref(r.Activities)},
		{"labels", r.Labels != nil, deref(r.Labels)},
	}

	var picked *candidate
	for i := range candidates {
		if !candidates[i].set {
			continue
		}
		if picked != nil {
			return "", nil, false // more than one section in the body
		}
		picked = &candidates[i]
	}
	if picked == nil {
		return "", nil, false
	}
	return picked.name, picked.value, true
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func (h *ResumeHandler) UpdateSection(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ResumeHandler.UpdateSection", "invalid request body", err))
		return
	}

	section, value, ok := req.section()
	if !ok {
		writeError(c, utils.E(utils.CodeInvalidArgument, "ResumeHandler.UpdateSection", "body must contain exactly one section", nil))
		return
	}

	out, err := h.svc.UpdateSection(c.Request.Context(), userID, c.Param("id"), section, value)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *ResumeHandler) SetDefault(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.SetDefault(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *ResumeHandler) Duplicate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	out, err := h.svc.Duplicate(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, out)
}

func (h *ResumeHandler) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SearchPublic is the one unauthenticated surface: substring search over
// records their owners marked public.
func (h *ResumeHandler) SearchPublic(c *gin.Context) {
	query := c.Query("q")

	var limit int64
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(c, utils.E(utils.CodeInvalidArgument, "ResumeHandler.SearchPublic", "limit must be an integer", err))
			return
		}
		limit = n
	}

	out, err := h.svc.SearchPublic(c.Request.Context(), query, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"resumes": out})
}
