package api

import (
	"github.com/propertyplus/propertyplus/internal/validation"
)

// CodeRequestResponse answers every code-request endpoint. CodeRequired is
// false when the purpose's policy waives the code for this account, in which
// case no code was sent and the caller proceeds straight to the finalize step.
type CodeRequestResponse struct {
	CodeRequired bool `json:"codeRequired"`
	Sent         bool `json:"sent"`
}

type VerifyCodeRequest struct {
	Code string `json:"code"`
}

func (r *VerifyCodeRequest) Validate() error {
	if r.Code == "" {
		return validation.NewValidationFailedError("code is empty")
	}
	return nil
}
