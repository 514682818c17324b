package events

import "time"

// EscalationEventType is published when a conversation is handed off to a
// human agent.
const EscalationEventType = "AGENT_ESCALATION"

func NewEscalationEvent(userId, sessionId, message, reason string) BaseEvent {
	return BaseEvent{
		Type: EscalationEventType,
		Data: map[string]interface{}{
			"userId":    userId,
			"sessionId": sessionId,
			"message":   message,
			"reason":    reason,
		},
		OccurredAt: time.Now(),
	}
}
