package application

// EffectStatus classifies the outcome of a best-effort settlement side
// effect. Side-effect failures never abort the primary operation; they
// are reported here so callers and tests can assert on them.
type EffectStatus string

const (
	EffectApplied EffectStatus = "applied"
	EffectSkipped EffectStatus = "skipped"
	EffectFailed  EffectStatus = "failed"
)

// EffectResult carries the status and detail of one side effect
type EffectResult struct {
	Status EffectStatus `json:"status"`
	Detail string       `json:"detail,omitempty"`
}

// SettlementOutcome reports what happened when a paid order settled.
// The settled flag flips at most once per order; a repeat settlement
// attempt returns AlreadySettled with both effects skipped.
type SettlementOutcome struct {
	Settled        bool         `json:"settled"`
	AlreadySettled bool         `json:"alreadySettled,omitempty"`
	Ledger         EffectResult `json:"ledger"`
	Loyalty        EffectResult `json:"loyalty"`
	PointsEarned   int64        `json:"pointsEarned,omitempty"`
	ShiftID        string       `json:"shiftId,omitempty"`
}

func skippedOutcome(detail string) *SettlementOutcome {
	return &SettlementOutcome{
		AlreadySettled: true,
		Ledger:         EffectResult{Status: EffectSkipped, Detail: detail},
		Loyalty:        EffectResult{Status: EffectSkipped, Detail: detail},
	}
}
