package models

import "time"

// BatchPayout is one execution attempt against a subset of holders for
// a distribution. Its status is always a pure function of its holders'
// statuses; callers persist what RollUpBatchStatus returns, never their
// own value.
type BatchPayout struct {
	Id             string            `bson:"_id"`
	DistributionId string            `bson:"distributionId"`
	BatchIndex     int               `bson:"batchIndex"`
	TransactionId  string            `bson:"transactionId,omitempty"`
	ContentHash    string            `bson:"contentHash,omitempty"`
	Decimals       int               `bson:"decimals"`
	Status         BatchPayoutStatus `bson:"status"`
	CreatedAt      time.Time         `bson:"created_at,omitempty"`
	UpdatedAt      time.Time         `bson:"updated_at,omitempty"`
}
