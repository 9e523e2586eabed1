// Package conversation holds the menu flow: a pure transition function
// mapping (current step, user text) to (reply, next step).
package conversation

import (
	"fmt"
	"strings"

	"github.com/zecobranca/cobranca-bot/internal/model"
)

const (
	GreetingMenuText = "Olá! Eu sou o ZéCobrança 🤖\nDigite:\n1️⃣ Consultar Débito\n2️⃣ Pagamento"
	ReturnMenuText   = "Menu inicial:\n1️⃣ Consultar Débito\n2️⃣ Pagamento"
	DebtPromptText   = "Você escolheu Consultar Débito. Digite o número do seu CPF."
	PayPromptText    = "Você escolheu Pagamento. Digite o código de pagamento."
	ReturnAskText    = "Deseja voltar ao menu? (sim/nao)"
	FarewellText     = "Obrigado! Até logo 👋"
)

type Result struct {
	Reply string
	Next  model.ConversationStep
}

// Transition advances the flow one step. Input is trimmed before matching;
// only the DONE step compares case-insensitively, the menu options are the
// literal digits "1" and "2".
func Transition(step model.ConversationStep, text string) Result {
	text = strings.TrimSpace(text)

	switch step {
	case model.StepMenu:
		switch text {
		case "1":
			return Result{DebtPromptText, model.StepDebtInquiry}
		case "2":
			return Result{PayPromptText, model.StepPayment}
		default:
			return Result{GreetingMenuText, model.StepMenu}
		}

	case model.StepDebtInquiry:
		reply := fmt.Sprintf("✅ Consulta realizada com sucesso para CPF %s.\n%s", text, ReturnAskText)
		return Result{reply, model.StepDone}

	case model.StepPayment:
		reply := fmt.Sprintf("✅ Pagamento realizado com sucesso para código %s.\n%s", text, ReturnAskText)
		return Result{reply, model.StepDone}

	case model.StepDone:
		switch strings.ToLower(text) {
		case "sim":
			return Result{ReturnMenuText, model.StepMenu}
		case "nao":
			return Result{FarewellText, model.StepDone}
		default:
			return Result{ReturnAskText, model.StepDone}
		}
	}

	// Unknown step, restart at the menu.
	return Result{GreetingMenuText, model.StepMenu}
}
