package models

type HolderStatus string

const (
	HolderPending  HolderStatus = "PENDING"
	HolderRetrying HolderStatus = "RETRYING"
	HolderSuccess  HolderStatus = "SUCCESS"
	HolderFailed   HolderStatus = "FAILED"
)

type BatchPayoutStatus string

const (
	BatchPending    BatchPayoutStatus = "PENDING"
	BatchProcessing BatchPayoutStatus = "PROCESSING"
	BatchFailed     BatchPayoutStatus = "FAILED"
	BatchCompleted  BatchPayoutStatus = "COMPLETED"
)

type DistributionStatus string

const (
	DistributionPending   DistributionStatus = "PENDING"
	DistributionScheduled DistributionStatus = "SCHEDULED"
	DistributionExecuting DistributionStatus = "EXECUTING"
	DistributionCompleted DistributionStatus = "COMPLETED"
	DistributionFailed    DistributionStatus = "FAILED"
	DistributionCancelled DistributionStatus = "CANCELLED"
)

// RollUpBatchStatus derives a batch payout's status from its holders.
// Strict precedence: FAILED > PROCESSING > COMPLETED > PENDING. A batch
// with no holders has nothing to report and stays PENDING.
func RollUpBatchStatus(holders []Holder) BatchPayoutStatus {
	if len(holders) == 0 {
		return BatchPending
	}

	successes := 0
	for _, holder := range holders {
		switch holder.Status {
		case HolderFailed:
			return BatchFailed
		case HolderSuccess:
			successes++
		}
	}
	for _, holder := range holders {
		if holder.Status == HolderRetrying {
			return BatchProcessing
		}
	}
	if successes == len(holders) {
		return BatchCompleted
	}
	return BatchPending
}

// RollUpDistributionStatus derives a distribution's status from its batch
// payouts, with the same precedence as the batch roll-up. CANCELLED is
// terminal and never recomputed. A distribution with no batches keeps its
// current PENDING/SCHEDULED status (nothing has been attempted yet).
func RollUpDistributionStatus(current DistributionStatus, batches []BatchPayout) DistributionStatus {
	if current == DistributionCancelled {
		return DistributionCancelled
	}
	if len(batches) == 0 {
		if current == DistributionScheduled {
			return DistributionScheduled
		}
		return DistributionPending
	}

	completed := 0
	for _, batch := range batches {
		if batch.Status == BatchFailed {
			return DistributionFailed
		}
		if batch.Status == BatchCompleted {
			completed++
		}
	}
	for _, batch := range batches {
		if batch.Status == BatchProcessing {
			return DistributionExecuting
		}
	}
	if completed == len(batches) {
		return DistributionCompleted
	}
	if current == DistributionScheduled {
		return DistributionScheduled
	}
	return DistributionPending
}
