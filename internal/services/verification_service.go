package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainfolio/chainfolio/internal/match"
	"github.com/chainfolio/chainfolio/internal/models"
	"github.com/chainfolio/chainfolio/internal/providers/verifier"
	mongorepo "github.com/chainfolio/chainfolio/internal/repositories/mongo"
	pgrepo "github.com/chainfolio/chainfolio/internal/repositories/postgres"
	"github.com/chainfolio/chainfolio/internal/utils"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

// VerifyStream is the Redis stream carrying queued verification requests.
const VerifyStream = "verify:requests"

// VerifyJob is one queued verification request as it travels through the
// stream.
type VerifyJob struct {
	RequestID string
	UserID    string
	ResumeID  string
	Method    verifier.Method
}

func (j VerifyJob) Values() map[string]any {
	return map[string]any{
		"request_id": j.RequestID,
		"user_id":    j.UserID,
		"resume_id":  j.ResumeID,
		"method":     string(j.Method),
	}
}

func ParseVerifyJob(values map[string]any) (VerifyJob, error) {
	get := func(k string) (string, error) {
		v, ok := values[k]
		if !ok {
			return "", fmt.Errorf("verify job: missing field %q", k)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("verify job: bad field %q", k)
		}
		return s, nil
	}

	var j VerifyJob
	var err error
	if j.RequestID, err = get("request_id"); err != nil {
		return VerifyJob{}, err
	}
	if j.UserID, err = get("user_id"); err != nil {
		return VerifyJob{}, err
	}
	if j.ResumeID, err = get("resume_id"); err != nil {
		return VerifyJob{}, err
	}
	m, err := get("method")
	if err != nil {
		return VerifyJob{}, err
	}
	j.Method = verifier.Method(m)
	if !j.Method.Valid() {
		return VerifyJob{}, fmt.Errorf("verify job: unknown method %q", m)
	}
	return j, nil
}

type VerificationService interface {
	// Save replaces the verification sub-record wholesale.
	Save(ctx context.Context, userID, resumeID string, v models.Verification) (*models.Resume, error)
	// Revoke clears the sub-record entirely.
	Revoke(ctx context.Context, userID, resumeID string) (*models.Resume, error)
	// Matches computes the per-field trust-badge indicators on demand.
	Matches(ctx context.Context, userID, resumeID string) (map[string]bool, error)
	// Request enqueues an async verification flow and returns its request id.
	Request(ctx context.Context, userID, resumeID string, method verifier.Method) (string, error)
	// Complete persists a finished provider flow (worker path) and appends
	// the audit row. Failed checks are persisted too, with is_verified=false.
	Complete(ctx context.Context, userID, resumeID string, res verifier.Result) error
	Audit(ctx context.Context, userID, resumeID string) ([]models.VerificationAudit, error)
}

type verificationService struct {
	resumes mongorepo.ResumeRepository
	audits  pgrepo.AuditRepository
	queue   *redis.Client
}

func NewVerificationService(resumes mongorepo.ResumeRepository, audits pgrepo.AuditRepository, queue *redis.Client) VerificationService {
	return &verificationService{resumes: resumes, audits: audits, queue: queue}
}

// directlyVerifiable are fields a provider may assert without echoing a
// value: phone/email via OTP, documents via upload.
var directlyVerifiable = map[string]bool{
	"phone":   true,
	"email":   true,
	"aadhaar": true,
	"pan":     true,
}

func validateVerification(v models.Verification) error {
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("confidence must be within [0,1], got %v", v.Confidence)
	}
	for _, f := range v.VerifiedFields {
		if v.VerifiedData.FieldValue(f) == "" && !directlyVerifiable[f] {
			return fmt.Errorf("verified field %q has no asserted value", f)
		}
	}
	return nil
}

func (s *verificationService) Save(ctx context.Context, userID, resumeID string, v models.Verification) (*models.Resume, error) {
	const op = "VerificationService.Save"

	if userID == "" || resumeID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and resume_id are required", nil)
	}
	if err := validateVerification(v); err != nil {
		return nil, utils.E(utils.CodeInvalidArgument, op, err.Error(), nil)
	}
	if v.VerificationDate == "" {
		v.VerificationDate = time.Now().UTC().Format(time.RFC3339)
	}
	if v.VerifiedFields == nil {
		v.VerifiedFields = []string{}
	}

	if err := s.resumes.SetVerification(ctx, userID, resumeID, &v); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	out, err := s.resumes.GetByID(ctx, userID, resumeID)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}
	return out, nil
}

func (s *verificationService) Revoke(ctx context.Context, userID, resumeID string) (*models.Resume, error) {
	const op = "VerificationService.Revoke"

	if userID == "" || resumeID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and resume_id are required", nil)
	}

	if err := s.resumes.ClearVerification(ctx, userID, resumeID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	out, err := s.resumes.GetByID(ctx, userID, resumeID)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}
	return out, nil
}

func (s *verificationService) Matches(ctx context.Context, userID, resumeID string) (map[string]bool, error) {
	const op = "VerificationService.Matches"

	res, err := s.resumes.GetByID(ctx, userID, resumeID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	return MatchReport(res), nil
}

// MatchReport compares every verified field against the resume's own value.
// A field with no resume counterpart (aadhaar, pan) reports false; absence
// never matches.
func MatchReport(res *models.Resume) map[string]bool {
	report := map[string]bool{}
	if res == nil || res.Verification == nil {
		return report
	}
	v := res.Verification
	for _, f := range v.VerifiedFields {
		report[f] = match.Field(f, resumeFieldValue(res, f), v.VerifiedData.FieldValue(f))
	}
	return report
}

func resumeFieldValue(res *models.Resume, field string) string {
	switch field {
	case "name":
		return res.Basics.Name
	case "email":
		return res.Basics.Email
	case "phone":
		return res.Basics.Phone
	case "address":
		return res.Basics.Location.Address
	default:
		return ""
	}
}

func (s *verificationService) Request(ctx context.Context, userID, resumeID string, method verifier.Method) (string, error) {
	const op = "VerificationService.Request"

	if userID == "" || resumeID == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "user_id and resume_id are required", nil)
	}
	if !method.Valid() {
		return "", utils.E(utils.CodeInvalidArgument, op, "unknown verification method: "+string(method), nil)
	}
	if s.queue == nil {
		return "", utils.E(utils.CodeUnavailable, op, "verification queue is not configured", nil)
	}

	// ownership check before anything is queued
	if _, err := s.resumes.GetByID(ctx, userID, resumeID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return "", utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return "", utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	job := VerifyJob{
		RequestID: uuid.NewString(),
		UserID:    userID,
		ResumeID:  resumeID,
		Method:    method,
	}
	if err := s.queue.XAdd(ctx, &redis.XAddArgs{
		Stream: VerifyStream,
		Values: job.Values(),
	}).Err(); err != nil {
		return "", utils.E(utils.CodeUnavailable, op, "failed to enqueue verification", err)
	}
	return job.RequestID, nil
}

func (s *verificationService) Complete(ctx context.Context, userID, resumeID string, res verifier.Result) error {
	const op = "VerificationService.Complete"

	fields := res.Fields
	if fields == nil {
		fields = []string{}
	}
	rec := models.Verification{
		IsVerified:       res.Verified,
		VerifiedBy:       res.VerifiedBy,
		VerificationDate: time.Now().UTC().Format(time.RFC3339),
		VerifiedFields:   fields,
		Confidence:       res.Confidence,
		VerifiedData:     res.Data,
		RawData:          res.Raw,
	}

	if err := s.resumes.SetVerification(ctx, userID, resumeID, &rec); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	status := "failed"
	if res.Verified {
		status = "verified"
	}
	audit := &models.VerificationAudit{
		ID:             uuid.NewString(),
		UserID:         userID,
		ResumeID:       resumeID,
		Provider:       res.VerifiedBy,
		Status:         status,
		Confidence:     res.Confidence,
		VerifiedFields: pq.StringArray(fields),
		RawPayload:     datatypes.JSON(res.Raw),
	}
	if err := s.audits.Append(ctx, audit); err != nil {
		// the verification itself is already persisted; surface the audit
		// failure so the worker can log it
		return utils.E(utils.CodeInternal, op, "failed to append audit row", err)
	}
	return nil
}

func (s *verificationService) Audit(ctx context.Context, userID, resumeID string) ([]models.VerificationAudit, error) {
	const op = "VerificationService.Audit"

	if userID == "" || resumeID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and resume_id are required", nil)
	}

	// ownership gate: listing audits for a foreign resume must 404
	if _, err := s.resumes.GetByID(ctx, userID, resumeID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}

	out, err := s.audits.ListByResume(ctx, userID, resumeID)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "storage unavailable", err)
	}
	return out, nil
}
