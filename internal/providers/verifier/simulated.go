package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/chainfolio/chainfolio/internal/models"
	"github.com/google/uuid"
)

// Simulated is an offline stand-in for the real DigiLocker/NSDL/OTP vendors.
// It asserts the values already present on the resume, the way a sandbox
// vendor echoes whatever the test subject submits. Document numbers are
// derived deterministically from the user id so re-runs agree with each
// other.
type Simulated struct{}

func NewSimulated() *Simulated { return &Simulated{} }

// rawEnvelope mimics the vendor callback payload. Persisted opaquely for
// audit; nothing downstream reads it.
type rawEnvelope struct {
	TxnID     string `json:"txn_id"`
	Method    string `json:"method"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

func (s *Simulated) Verify(_ context.Context, req Request) (Result, error) {
	res := Result{VerifiedBy: string(req.Method)}

	switch req.Method {
	case MethodDigiLocker:
		if req.Basics.Name == "" {
			return s.failed(req, "name missing on resume"), nil
		}
		res.Verified = true
		res.Confidence = 0.95
		res.Fields = []string{"name", "address", "aadhaar"}
		res.Data = models.VerifiedData{
			Name:    req.Basics.Name,
			Address: req.Basics.Location.Address,
			Aadhaar: maskedAadhaar(req.UserID),
		}

	case MethodPAN:
		if req.Basics.Name == "" {
			return s.failed(req, "name missing on resume"), nil
		}
		res.Verified = true
		res.Confidence = 0.90
		res.Fields = []string{"name", "pan"}
		res.Data = models.VerifiedData{
			Name: req.Basics.Name,
			PAN:  panNumber(req.UserID),
		}

	case MethodPhoneOTP:
		if req.Basics.Phone == "" {
			return s.failed(req, "phone missing on resume"), nil
		}
		res.Verified = true
		res.Confidence = 0.99
		res.Fields = []string{"phone"}
		res.Data = models.VerifiedData{Phone: req.Basics.Phone}

	case MethodEmailOTP:
		if req.Basics.Email == "" {
			return s.failed(req, "email missing on resume"), nil
		}
		res.Verified = true
		res.Confidence = 0.99
		res.Fields = []string{"email"}
		res.Data = models.VerifiedData{Email: req.Basics.Email}

	default:
		return Result{}, fmt.Errorf("simulated verifier: unknown method %q", req.Method)
	}

	res.Raw = rawPayload(req.Method, "success")
	return res, nil
}

func (s *Simulated) failed(req Request, _ string) Result {
	return Result{
		Verified:   false,
		VerifiedBy: string(req.Method),
		Fields:     []string{},
		Raw:        rawPayload(req.Method, "failed"),
	}
}

func rawPayload(method Method, status string) json.RawMessage {
	b, _ := json.Marshal(rawEnvelope{
		TxnID:     uuid.NewString(),
		Method:    string(method),
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return b
}

// maskedAadhaar yields a stable "XXXX-XXXX-dddd" for a user, the shape
// DigiLocker exposes after consent.
func maskedAadhaar(userID string) string {
	return fmt.Sprintf("XXXX-XXXX-%04d", stableDigits(userID, 10000))
}

func panNumber(userID string) string {
	return fmt.Sprintf("ABCPE%04dF", stableDigits(userID, 10000))
}

func stableDigits(s string, mod uint32) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32() % mod
}
