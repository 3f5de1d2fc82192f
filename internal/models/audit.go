package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// VerificationAudit is an append-only Postgres row written every time a
// verification flow finishes, success or failure. The raw provider payload
// lands here as JSONB so a dispute can be traced back without trusting the
// mutable resume document.
type VerificationAudit struct {
	ID       string `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID   string `gorm:"column:user_id;type:text;index" json:"user_id"`
	ResumeID string `gorm:"column:resume_id;type:text;index" json:"resume_id"`

	Provider   string  `gorm:"column:provider;type:text" json:"provider"`
	Status     string  `gorm:"column:status;type:text" json:"status"` // verified|failed
	Confidence float64 `gorm:"column:confidence" json:"confidence"`

	VerifiedFields pq.StringArray `gorm:"column:verified_fields;type:text[]" json:"verified_fields"`
	RawPayload     datatypes.JSON `gorm:"column:raw_payload;type:jsonb" json:"raw_payload"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
}

func (VerificationAudit) TableName() string { return "verification_audits" }
