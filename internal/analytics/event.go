package analytics

import "time"

// TopicLinkResolved carries one event per network resolution attempt.
const TopicLinkResolved = "link.resolved"

// ResolutionEvent records the outcome of resolving one cache key over the
// network. Cache hits are not reported.
type ResolutionEvent struct {
	Key        string    `json:"key"`
	Target     string    `json:"target"`
	Outcome    string    `json:"outcome"`
	Value      string    `json:"value,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	DurationMs int64     `json:"durationMs"`
	ResolvedAt time.Time `json:"resolvedAt"`
}
