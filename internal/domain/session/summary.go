package session

import "time"

// Summary is the lightweight view of a session used in list displays.
type Summary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	Phase        Phase     `json:"phase"`
	Progress     int       `json:"progress"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Summarize derives a Summary from a full session. Pure; does not mutate.
func Summarize(sess *Session) Summary {
	return Summary{
		ID:           sess.ID,
		Name:         sess.Name,
		Phase:        sess.Phase,
		Progress:     Progress(sess.Phase),
		MessageCount: len(sess.Conversation),
		CreatedAt:    sess.CreatedAt,
		UpdatedAt:    sess.UpdatedAt,
	}
}
