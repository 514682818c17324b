package dto

import "time"

// EscalationNotice is the payload pushed to human agents when the bot hands
// a conversation off. It is also the wire format on the internal event bus.
type EscalationNotice struct {
	UserId    string    `json:"userId"`
	SessionId string    `json:"sessionId"`
	Message   string    `json:"message"`
	Reason    string    `json:"reason"`
	Time      time.Time `json:"time"`
}
