package model

type ConversationStep int

const (
	StepMenu ConversationStep = iota
	StepDebtInquiry
	StepPayment
	StepDone
)

func (s ConversationStep) String() string {
	switch s {
	case StepMenu:
		return "MENU"
	case StepDebtInquiry:
		return "DEBT_INQUIRY"
	case StepPayment:
		return "PAYMENT"
	case StepDone:
		return "DONE"
	}
	return "UNKNOWN"
}

// ConversationState tracks where a single user is in the menu flow.
// Created with StepMenu on first contact, updated once per processed message.
type ConversationState struct {
	UserID string           `db:"user_id"`
	Step   ConversationStep `db:"step"`
}
