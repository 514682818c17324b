// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-cservice-be/internal/dto"
	"ai-cservice-be/internal/pkg/mailer"
	"ai-cservice-be/internal/websocket"
	"ai-cservice-be/pkg/events"
	pkgNats "ai-cservice-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the escalation topic and fans each notice out to
// the agent-desk websocket feed, the external event bus and the support
// mailbox. Chat latency never waits on any of those.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	hub            *websocket.Hub
	eventPublisher *pkgNats.Publisher
	emailService   mailer.IEmailService
	supportEmail   string
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	hub *websocket.Hub,
	eventPublisher *pkgNats.Publisher,
	emailService mailer.IEmailService,
	supportEmail string,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		hub:            hub,
		eventPublisher: eventPublisher,
		emailService:   emailService,
		supportEmail:   supportEmail,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var notice dto.EscalationNotice
	if err := json.Unmarshal(msg.Payload, &notice); err != nil {
		log.Printf("[ERROR] Failed to unmarshal escalation message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing escalation for session %s (user %s)", notice.SessionId, notice.UserId)

	// Mail failures are retriable, everything after this point is not, so
	// the email goes first.
	if cs.emailService != nil && cs.supportEmail != "" {
		alert := mailer.EscalationAlert{
			UserId:    notice.UserId,
			SessionId: notice.SessionId,
			Message:   notice.Message,
			Reason:    notice.Reason,
			Time:      notice.Time,
		}
		if err := cs.emailService.SendEscalationAlert(cs.supportEmail, alert); err != nil {
			log.Printf("[ERROR] Failed to send escalation alert: %v", err)
			msg.Nack() // Retry
			return
		}
	}

	// The event bus feeds the agent-desk subscriber (and any other
	// service listening). When it is down, push straight to the local hub
	// so agents still see the handoff.
	published := false
	if cs.eventPublisher != nil {
		evt := events.NewEscalationEvent(notice.UserId, notice.SessionId, notice.Message, notice.Reason)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish escalation event: %v", err)
		} else {
			published = true
		}
	}
	if !published && cs.hub != nil {
		cs.hub.Broadcast(notice)
	}

	msg.Ack()
}
