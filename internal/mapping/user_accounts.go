package mapping

import (
	"github.com/propertyplus/propertyplus/api"
	"github.com/propertyplus/propertyplus/internal/types"
)

func UserAccountToAPI(user types.UserAccount) api.UserAccountResponse {
	return api.UserAccountResponse{
		ID:                    user.ID,
		CreatedAt:             user.CreatedAt,
		Email:                 user.Email,
		EmailVerified:         user.EmailVerifiedAt != nil,
		Name:                  user.Name,
		ContactNumber:         user.ContactNumber,
		City:                  user.City,
		State:                 user.State,
		TwoFactorEnabled:      user.TwoFactorEnabled,
		AuthenticatorEnrolled: user.AuthenticatorEnrolled(),
		PasswordChangedAt:     user.PasswordChangedAt,
	}
}
