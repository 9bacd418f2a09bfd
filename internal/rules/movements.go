package rules

import (
	"strings"

	"financas/internal/core"
)

// Movement categories resolve by name, in Portuguese or English, and never
// consult preference overrides.
var movementKinds = map[string]core.CostType{
	"investimentos":   core.CostMovementExpense,
	"investments":     core.CostMovementExpense,
	"transferencias":  core.CostMovementExpense,
	"transferências":  core.CostMovementExpense,
	"transfers":       core.CostMovementExpense,
	"saques":          core.CostMovementExpense,
	"withdrawals":     core.CostMovementExpense,
	"salario":         core.CostMovementIncome,
	"salário":         core.CostMovementIncome,
	"salary":          core.CostMovementIncome,
	"receitas":        core.CostMovementIncome,
	"income":          core.CostMovementIncome,
}

// MovementKind resolves a movement category name to its cost type.
func MovementKind(category string) (core.CostType, bool) {
	ct, ok := movementKinds[norm(category)]
	return ct, ok
}

// IsTransferCategory reports whether the category is the transfers bucket.
// Used to keep received transfers out of salary totals.
func IsTransferCategory(category string) bool {
	switch norm(category) {
	case "transferencias", "transferências", "transfers":
		return true
	}
	return false
}

// transferReceivedMarkers are the pt-BR description fragments that flag a
// received transfer. The heuristic is deliberately narrow; broadening it
// changes salary totals.
var transferReceivedMarkers = []string{
	"transferencia recebida",
	"transferência recebida",
	"transf recebida",
	"ted recebida",
	"doc recebida",
	"pix recebido",
}

// IsTransferReceived applies the category-equality plus description-marker
// heuristic that excludes received transfers from salary totals.
func IsTransferReceived(category, description string) bool {
	if IsTransferCategory(category) {
		return true
	}
	d := strings.ToLower(description)
	for _, m := range transferReceivedMarkers {
		if strings.Contains(d, m) {
			return true
		}
	}
	return false
}
