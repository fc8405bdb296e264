package stores

import "time"

// SessionRecord is the listing projection of a persisted context. The
// full document lives in the JSON column; these are the columns lifted
// out for filtering.
type SessionRecord struct {
	SessionID   string    `json:"sessionId"`
	JourneyID   string    `json:"journeyId"`
	JourneyType string    `json:"journeyType"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SessionFilter narrows session listings. Nil fields match everything.
type SessionFilter struct {
	JourneyID *string
	Status    *string
	Limit     int
	Offset    int
}
