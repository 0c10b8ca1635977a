package dialog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dialtree/dialtree-go/dialog/debt"
	"github.com/dialtree/dialtree-go/dialog/extenso"
)

var (
	surchargeRate = decimal.NewFromFloat(1.10)
	discountRate  = decimal.NewFromFloat(0.80)
)

// Bindings derives the substitutable template variables for the current
// negotiation state. updates holds this turn's tentative mutations and
// overrides the session's persisted values, so a message rendered mid-turn
// already shows the value captured seconds earlier.
//
// Variables produced:
//
//	valor_divida  - principal, in words
//	valor_parcela - per-installment amount, in words
//	valor_final   - settlement amount after the agreement's rule, in words
//	condicao      - human-readable payment condition
//	nome          - customer name (captured name wins over the record's)
//	empresa       - creditor name
func Bindings(session *Session, updates *Updates) map[string]string {
	view := session
	if updates != nil {
		view = updates.merged(session)
	}

	record := view.Debt
	if record == nil {
		d := debt.Default()
		record = &d
	}

	principal := record.Amount
	final := principal
	perInstallment := principal
	condition := "à vista"

	switch view.Agreement {
	case AgreementInstallments:
		n := view.NumInstallments
		if n < 1 {
			n = 1
		}
		final = principal.Mul(surchargeRate)
		perInstallment = final.Div(decimal.NewFromInt(int64(n)))
		condition = fmt.Sprintf("parcelado em %d vezes", n)
	case AgreementDiscount:
		final = principal.Mul(discountRate)
		condition = "à vista com desconto"
	case AgreementDate:
		condition = fmt.Sprintf("pagamento para o dia %s", view.NewDueDate)
	}

	name := view.CustomerName
	if name == "" {
		name = record.Name
	}

	return map[string]string{
		"valor_divida":  extenso.Amount(principal),
		"valor_parcela": extenso.Amount(perInstallment),
		"valor_final":   extenso.Amount(final),
		"condicao":      condition,
		"nome":          name,
		"empresa":       record.Creditor,
	}
}
