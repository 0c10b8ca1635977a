package dialog

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dialtree/dialtree-go/dialog/debt"
)

func sessionWithDebt(t *testing.T) *Session {
	t.Helper()
	s := NewSession("call-1")
	s.Debt = &debt.Record{
		Name:     "João Silva",
		Amount:   decimal.RequireFromString("1250.50"),
		Creditor: "Banco Alpha",
	}
	return s
}

func TestBindings(t *testing.T) {
	t.Run("no agreement defaults to cash", func(t *testing.T) {
		vars := Bindings(sessionWithDebt(t), nil)

		if vars["valor_divida"] != "mil duzentos e cinquenta reais e cinquenta centavos" {
			t.Errorf("valor_divida = %q", vars["valor_divida"])
		}
		if vars["valor_final"] != vars["valor_divida"] {
			t.Errorf("valor_final should equal principal, got %q", vars["valor_final"])
		}
		if vars["condicao"] != "à vista" {
			t.Errorf("condicao = %q", vars["condicao"])
		}
		if vars["nome"] != "João Silva" || vars["empresa"] != "Banco Alpha" {
			t.Errorf("nome/empresa = %q/%q", vars["nome"], vars["empresa"])
		}
	})

	t.Run("installments add 10 percent surcharge", func(t *testing.T) {
		s := sessionWithDebt(t)
		s.Agreement = AgreementInstallments
		s.NumInstallments = 5

		vars := Bindings(s, nil)
		// 1250.50 * 1.10 = 1375.55; / 5 = 275.11
		if vars["valor_final"] != "mil trezentos e setenta e cinco reais e cinquenta e cinco centavos" {
			t.Errorf("valor_final = %q", vars["valor_final"])
		}
		if vars["valor_parcela"] != "duzentos e setenta e cinco reais e onze centavos" {
			t.Errorf("valor_parcela = %q", vars["valor_parcela"])
		}
		if vars["condicao"] != "parcelado em 5 vezes" {
			t.Errorf("condicao = %q", vars["condicao"])
		}
	})

	t.Run("discount takes 20 percent off", func(t *testing.T) {
		s := sessionWithDebt(t)
		s.Agreement = AgreementDiscount

		vars := Bindings(s, nil)
		// 1250.50 * 0.80 = 1000.40
		if vars["valor_final"] != "mil reais e quarenta centavos" {
			t.Errorf("valor_final = %q", vars["valor_final"])
		}
		if vars["condicao"] != "à vista com desconto" {
			t.Errorf("condicao = %q", vars["condicao"])
		}
	})

	t.Run("date change keeps principal", func(t *testing.T) {
		s := sessionWithDebt(t)
		s.Agreement = AgreementDate
		s.NewDueDate = "15/09/2026"

		vars := Bindings(s, nil)
		if vars["valor_final"] != vars["valor_divida"] {
			t.Errorf("valor_final = %q", vars["valor_final"])
		}
		if vars["condicao"] != "pagamento para o dia 15/09/2026" {
			t.Errorf("condicao = %q", vars["condicao"])
		}
	})

	t.Run("pending updates override session", func(t *testing.T) {
		s := sessionWithDebt(t)
		u := &Updates{
			Agreement:       strPtr(AgreementInstallments),
			NumInstallments: intPtr(10),
		}

		vars := Bindings(s, u)
		if vars["condicao"] != "parcelado em 10 vezes" {
			t.Errorf("condicao = %q", vars["condicao"])
		}
		if s.Agreement != AgreementNone {
			t.Error("Bindings must not mutate the session")
		}
	})

	t.Run("no debt record falls back to default", func(t *testing.T) {
		vars := Bindings(NewSession("call-2"), nil)
		if vars["valor_divida"] != "cem reais" {
			t.Errorf("valor_divida = %q", vars["valor_divida"])
		}
		if vars["empresa"] != "nossa empresa parceira" {
			t.Errorf("empresa = %q", vars["empresa"])
		}
	})

	t.Run("captured name wins over record name", func(t *testing.T) {
		s := sessionWithDebt(t)
		s.CustomerName = "Dr. João"
		vars := Bindings(s, nil)
		if vars["nome"] != "Dr. João" {
			t.Errorf("nome = %q", vars["nome"])
		}
	})
}

func TestUpdatesApply(t *testing.T) {
	s := NewSession("call-3")
	s.CapturedInput = "old"

	u := &Updates{
		CurrentNode:     strPtr("confirmar_acordo"),
		Agreement:       strPtr(AgreementCash),
		NumInstallments: intPtr(3),
	}
	u.Apply(s)

	if s.CurrentNode != "confirmar_acordo" || s.Agreement != AgreementCash || s.NumInstallments != 3 {
		t.Errorf("apply missed fields: %+v", s)
	}
	if s.CapturedInput != "old" {
		t.Error("unset field was clobbered")
	}

	if !(&Updates{}).Empty() {
		t.Error("zero Updates should be Empty")
	}
	if u.Empty() {
		t.Error("populated Updates should not be Empty")
	}
}
