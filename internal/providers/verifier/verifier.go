package verifier

import (
	"context"
	"encoding/json"

	"github.com/chainfolio/chainfolio/internal/models"
)

// Method names a verification flow the provider supports.
type Method string

const (
	MethodDigiLocker Method = "digilocker"
	MethodPAN        Method = "pan"
	MethodPhoneOTP   Method = "phone_otp"
	MethodEmailOTP   Method = "email_otp"
)

func (m Method) Valid() bool {
	switch m {
	case MethodDigiLocker, MethodPAN, MethodPhoneOTP, MethodEmailOTP:
		return true
	}
	return false
}

// Request carries what the provider needs to run one verification.
type Request struct {
	UserID   string
	ResumeID string
	Method   Method
	Basics   models.Basics
}

// Result is the provider's assertion. Verified=false with empty Fields is a
// completed-but-failed check, not an error; errors are reserved for the
// provider being unreachable.
type Result struct {
	Verified   bool
	VerifiedBy string
	Fields     []string
	Confidence float64
	Data       models.VerifiedData
	Raw        json.RawMessage
}

type Provider interface {
	Verify(ctx context.Context, req Request) (Result, error)
}
