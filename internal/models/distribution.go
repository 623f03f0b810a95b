package models

import (
	"fmt"
	"time"
)

type DetailType string

const (
	DetailCorporateAction DetailType = "CORPORATE_ACTION"
	DetailPayout          DetailType = "PAYOUT"
)

type PayoutSubtype string

const (
	PayoutOneOff PayoutSubtype = "ONE_OFF"
)

type AmountType string

const (
	AmountFixed      AmountType = "FIXED"
	AmountPercentage AmountType = "PERCENTAGE"
)

// DistributionDetails is a tagged union discriminated by Type. Corporate
// actions carry CorporateActionId/ExecutionDate; payouts carry Subtype,
// ExecuteAt, SnapshotId, Amount and AmountType. Type is immutable after
// creation; only ExecutionDate may change post-creation (reconciliation).
type DistributionDetails struct {
	Type              DetailType    `bson:"type"`
	CorporateActionId string        `bson:"corporateActionId,omitempty"`
	ExecutionDate     time.Time     `bson:"executionDate,omitempty"`
	Subtype           PayoutSubtype `bson:"subtype,omitempty"`
	ExecuteAt         time.Time     `bson:"executeAt,omitempty"`
	SnapshotId        uint64        `bson:"snapshotId,omitempty"`
	Amount            string        `bson:"amount,omitempty"`
	AmountType        AmountType    `bson:"amountType,omitempty"`
}

type Distribution struct {
	Id        string              `bson:"_id"`
	AssetId   string              `bson:"assetId"`
	Details   DistributionDetails `bson:"details"`
	Status    DistributionStatus  `bson:"status"`
	CreatedAt time.Time           `bson:"created_at,omitempty"`
	UpdatedAt time.Time           `bson:"updated_at,omitempty"`
}

func NewCorporateActionDetails(corporateActionId string, executionDate time.Time) DistributionDetails {
	return DistributionDetails{
		Type:              DetailCorporateAction,
		CorporateActionId: corporateActionId,
		ExecutionDate:     executionDate,
	}
}

func NewPayoutDetails(executeAt time.Time, snapshotId uint64, amount string, amountType AmountType) DistributionDetails {
	return DistributionDetails{
		Type:       DetailPayout,
		Subtype:    PayoutOneOff,
		ExecuteAt:  executeAt,
		SnapshotId: snapshotId,
		Amount:     amount,
		AmountType: amountType,
	}
}

func (d DistributionDetails) Validate() error {
	switch d.Type {
	case DetailCorporateAction:
		if d.CorporateActionId == "" {
			return fmt.Errorf("corporate action details missing corporateActionId")
		}
	case DetailPayout:
		if d.AmountType != AmountFixed && d.AmountType != AmountPercentage {
			return fmt.Errorf("payout details have unknown amount type: %q", d.AmountType)
		}
	default:
		return fmt.Errorf("unknown distribution detail type: %q", d.Type)
	}
	return nil
}
