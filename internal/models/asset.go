package models

type Asset struct {
	Id                       string `bson:"_id"`
	Name                     string `bson:"name"`
	TokenAddress             string `bson:"tokenAddress"`
	LifeCycleCashFlowAddress string `bson:"lifeCycleCashFlowAddress"`
	Decimals                 int    `bson:"decimals"`
	SyncEnabled              bool   `bson:"syncEnabled"`
}
