package services

import (
	"math"

	"backoffice/contexts/finance-core/financial-request-engine/domain/entities"
)

// Round2 normalizes money to two fractional digits.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Recompute re-derives the ledger fields from the settled amount and the
// amount basis. It runs inside the same unit of work as every status change
// so the status and ledger can never drift apart.
func Recompute(request *entities.FinancialRequest) {
	basis := Round2(request.AmountBasis())
	settled := Round2(request.SettledAmount)
	remaining := Round2(basis - settled)
	if remaining < 0 {
		remaining = 0
	}
	request.SettledAmount = settled
	request.Remaining = remaining
	request.IsFullySettled = remaining == 0
}

// CanTransition encodes the status machine. rejected and cancelled have no
// outgoing edges; paid stays paid while settlements land.
func CanTransition(from string, to string) bool {
	switch from {
	case entities.StatusPending:
		return to == entities.StatusApproved || to == entities.StatusRejected || to == entities.StatusCancelled
	case entities.StatusApproved:
		return to == entities.StatusPaid || to == entities.StatusCancelled
	default:
		return false
	}
}
