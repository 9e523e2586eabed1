// Package responder runs one conversation turn for an inbound user message:
// load-or-create state, transition, persist, reply.
package responder

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/zecobranca/cobranca-bot/internal/conversation"
	"github.com/zecobranca/cobranca-bot/internal/model"
	"github.com/zecobranca/cobranca-bot/pkg/message"
)

type ConversationStore interface {
	Load(userID string) (*model.ConversationState, error)
	Save(state *model.ConversationState) (*model.ConversationState, error)
}

type Sender interface {
	Send(ctx context.Context, to string, text string, instanceID string) error
}

type service struct {
	store             ConversationStore
	sender            Sender
	defaultInstanceID string
}

// New wires the conversation store and the outbound sender. The default
// instance ID serves payloads that omit their own.
func New(store ConversationStore, sender Sender, defaultInstanceID string) *service {
	return &service{
		store:             store,
		sender:            sender,
		defaultInstanceID: defaultInstanceID,
	}
}

// Process advances the sender's conversation and delivers the reply. State
// is persisted before the outbound call, so a delivery failure leaves the
// conversation advanced; the provider never gets a retry for the same turn.
func (s *service) Process(ctx context.Context, m *message.Message) error {
	if m.Sender == "" {
		return model.ErrorNoSender
	}

	state, err := s.store.Load(m.Sender)
	if err != nil {
		if !errors.Is(err, model.ErrorConversationNotFound) {
			return fmt.Errorf("loading conversation for %s: %w", m.Sender, err)
		}
		state = &model.ConversationState{UserID: m.Sender, Step: model.StepMenu}
	}

	result := conversation.Transition(state.Step, m.Text)

	state.Step = result.Next
	if _, err := s.store.Save(state); err != nil {
		return fmt.Errorf("saving conversation for %s: %w", m.Sender, err)
	}

	log.Infof("user %s: step %s, replying", m.Sender, result.Next)

	instanceID := m.InstanceID
	if instanceID == "" {
		instanceID = s.defaultInstanceID
	}

	if err := s.sender.Send(ctx, m.Sender, result.Reply, instanceID); err != nil {
		return fmt.Errorf("replying to %s: %w", m.Sender, err)
	}

	return nil
}
