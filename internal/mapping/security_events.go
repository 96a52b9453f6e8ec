package mapping

import (
	"github.com/propertyplus/propertyplus/api"
	"github.com/propertyplus/propertyplus/internal/types"
)

func SecurityEventToAPI(event types.SecurityEvent) api.SecurityEventResponse {
	return api.SecurityEventResponse{
		ID:        event.ID,
		CreatedAt: event.CreatedAt,
		Kind:      string(event.Kind),
		Purpose: PtrOrNil(event.Purpose, func(p types.VerificationPurpose) string {
			return string(p)
		}),
		IPAddress: event.IPAddress,
		Detail:    event.Detail,
	}
}
