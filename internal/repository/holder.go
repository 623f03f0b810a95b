package repository

import (
	"context"
	"fmt"

	"payout_engine/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const holdersCollection = "holders"

func (r *mongoRepository) ListHoldersByDistributionAndStatus(ctx context.Context, distributionId string, status models.HolderStatus) ([]models.Holder, error) {
	filter := bson.M{"distributionId": distributionId, "status": status}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	var holders []models.Holder
	if err := r.Collection(holdersCollection).FindMany(ctx, filter, opts, &holders); err != nil {
		return nil, err
	}
	return holders, nil
}

func (r *mongoRepository) ListHoldersByBatchPayout(ctx context.Context, batchPayoutId string) ([]models.Holder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	var holders []models.Holder
	if err := r.Collection(holdersCollection).FindMany(ctx, bson.M{"batchPayoutId": batchPayoutId}, opts, &holders); err != nil {
		return nil, err
	}
	return holders, nil
}

// SaveHolders persists a holder group in one bulk write, upserting by id.
func (r *mongoRepository) SaveHolders(ctx context.Context, holders []models.Holder) error {
	operations := make([]mongo.WriteModel, len(holders))
	for i, holder := range holders {
		operations[i] = mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": holder.Id}).
			SetReplacement(holder).
			SetUpsert(true)
	}

	if _, err := r.Collection(holdersCollection).BulkWrite(ctx, operations, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to bulk save %d holders: %w", len(holders), err)
	}
	return nil
}
