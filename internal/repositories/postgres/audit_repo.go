package postgres

import (
	"context"
	"time"

	"github.com/chainfolio/chainfolio/internal/models"
	"gorm.io/gorm"
)

// AuditRepository persists the append-only verification audit trail.
type AuditRepository interface {
	Append(ctx context.Context, a *models.VerificationAudit) error
	ListByResume(ctx context.Context, userID, resumeID string) ([]models.VerificationAudit, error)
}

type auditRepo struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Append(ctx context.Context, a *models.VerificationAudit) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *auditRepo) ListByResume(ctx context.Context, userID, resumeID string) ([]models.VerificationAudit, error) {
	var out []models.VerificationAudit
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND resume_id = ?", userID, resumeID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
