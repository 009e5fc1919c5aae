package access

import "time"

type Status string

const (
	StatusLifetime Status = "lifetime"
	StatusPaid     Status = "paid"
	StatusTrial    Status = "trial"
	StatusGift     Status = "gift"
	StatusGrace    Status = "grace"
	StatusExpired  Status = "expired"
	StatusUnknown  Status = "unknown"
)

type WarnLevel string

const (
	WarnNone    WarnLevel = ""
	WarnInfo    WarnLevel = "info"
	WarnWarning WarnLevel = "warning"
)

// Decision is the derived access state for one business. It is never
// persisted; it is recomputed from the source rows on demand.
type Decision struct {
	Allowed   bool       `json:"allowed"`
	CanCreate bool       `json:"can_create"`
	Status    Status     `json:"status"`
	EndsAt    *time.Time `json:"ends_at,omitempty"`
	HoursLeft int        `json:"hours_left"`
	WarnLevel WarnLevel  `json:"warn_level,omitempty"`
	WarnText  string     `json:"warn_text,omitempty"`
}

// Active reports whether the status represents a live grant, as opposed to
// grace, expired, or unknown.
func (d Decision) Active() bool {
	switch d.Status {
	case StatusPaid, StatusTrial, StatusGift, StatusLifetime:
		return true
	default:
		return false
	}
}

// Unknown is the permissive default used when the state cannot be judged:
// no session, no business, or rows with no usable timestamps. Ambiguous
// data never locks a user out.
func Unknown() Decision {
	return Decision{
		Allowed:   true,
		CanCreate: true,
		Status:    StatusUnknown,
	}
}
