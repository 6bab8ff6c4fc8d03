// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/greenledger/internal/app/store/audit"
	"github.com/dalemusser/greenledger/internal/app/system/paging"
)

// eventItem is one audit event as returned to its owner.
type eventItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"eventType"`
	IP            string            `json:"ip"`
	UserAgent     string            `json:"userAgent,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failureReason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Events []eventItem `json:"events"`
	paging.Meta
}

func toItem(e audit.Event) eventItem {
	return eventItem{
		ID:            e.ID.Hex(),
		Timestamp:     e.Timestamp,
		Category:      e.Category,
		EventType:     e.EventType,
		IP:            e.IP,
		UserAgent:     e.UserAgent,
		Success:       e.Success,
		FailureReason: e.FailureReason,
		Details:       e.Details,
	}
}

// knownEventTypes are the values accepted by the event_type filter.
var knownEventTypes = map[string]bool{
	audit.EventLoginSuccess:             true,
	audit.EventLoginFailedUserNotFound:  true,
	audit.EventLoginFailedWrongPassword: true,
	audit.EventLoginFailedRateLimit:     true,
	audit.EventUserRegistered:           true,
	audit.EventRegisterFailedDuplicate:  true,
}
