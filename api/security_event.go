package api

import (
	"time"

	"github.com/google/uuid"
)

type SecurityEventResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Kind      string    `json:"kind"`
	Purpose   *string   `json:"purpose,omitempty"`
	IPAddress *string   `json:"ipAddress,omitempty"`
	Detail    *string   `json:"detail,omitempty"`
}
