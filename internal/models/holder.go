package models

import "time"

// Holder is one recipient address's payout record within a batch payout.
// Field invariants: Amount is set iff Status is SUCCESS; LastError and
// NextRetryAt are set iff Status is FAILED. Mutate through the Mark*
// methods so the invariants hold after every transition.
type Holder struct {
	Id                  string       `bson:"_id"`
	BatchPayoutId       string       `bson:"batchPayoutId"`
	DistributionId      string       `bson:"distributionId"`
	HolderHederaAddress string       `bson:"holderHederaAddress"`
	HolderEvmAddress    string       `bson:"holderEvmAddress"`
	RetryCounter        int          `bson:"retryCounter"`
	Status              HolderStatus `bson:"status"`
	Amount              string       `bson:"amount,omitempty"`
	NextRetryAt         *time.Time   `bson:"nextRetryAt,omitempty"`
	LastError           string       `bson:"lastError,omitempty"`
	CreatedAt           time.Time    `bson:"created_at,omitempty"`
	UpdatedAt           time.Time    `bson:"updated_at,omitempty"`
}

// MarkRetrying records the in-flight state persisted immediately before
// an execution call, so a crash mid-submission leaves an inspectable
// record instead of silently reverting to FAILED.
func (h *Holder) MarkRetrying() {
	h.Status = HolderRetrying
	h.LastError = ""
	h.NextRetryAt = nil
}

func (h *Holder) MarkSuccess(amount string) {
	h.Status = HolderSuccess
	h.Amount = amount
	h.LastError = ""
	h.NextRetryAt = nil
}

func (h *Holder) MarkFailed(reason string, nextRetryAt time.Time) {
	h.Status = HolderFailed
	h.Amount = ""
	h.LastError = reason
	h.NextRetryAt = &nextRetryAt
	h.RetryCounter++
}
