package interaction

import "time"

// session is the ephemeral grouping state for one live user interaction.
// A session is provisional until its commit signal arrives; only committed
// sessions count toward the interaction counter.
type session struct {
	id       uint64
	sourceID string

	// committed flips once, when the terminating event proves the session
	// represents a genuine discrete interaction rather than e.g. the start
	// of a scroll.
	committed bool

	seenTypes      []string
	openedAt       time.Duration
	lastActivityAt time.Duration
}

func newSession(id uint64, sourceID string, at time.Duration) *session {
	return &session{
		id:             id,
		sourceID:       sourceID,
		openedAt:       at,
		lastActivityAt: at,
	}
}

// touch records that eventType was attributed to this session at the given
// time.
func (s *session) touch(eventType string, at time.Duration) {
	s.seenTypes = append(s.seenTypes, eventType)
	if at > s.lastActivityAt {
		s.lastActivityAt = at
	}
}

// idleSince reports how long the session has been without activity.
func (s *session) idleSince(at time.Duration) time.Duration {
	return at - s.lastActivityAt
}
