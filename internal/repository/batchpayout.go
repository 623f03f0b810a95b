package repository

import (
	"context"
	"fmt"

	"payout_engine/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const batchPayoutsCollection = "batchPayouts"

func (r *mongoRepository) FindBatchPayout(ctx context.Context, id string) (*models.BatchPayout, error) {
	var batch models.BatchPayout
	err := r.Collection(batchPayoutsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&batch)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching batch payout %s: %v", id, err)
	}
	return &batch, nil
}

func (r *mongoRepository) SaveBatchPayout(ctx context.Context, batch *models.BatchPayout) error {
	return r.Collection(batchPayoutsCollection).ReplaceOne(ctx, bson.M{"_id": batch.Id}, batch)
}

func (r *mongoRepository) ListBatchPayoutsByDistribution(ctx context.Context, distributionId string) ([]models.BatchPayout, error) {
	opts := options.Find().SetSort(bson.D{{Key: "batchIndex", Value: 1}})

	var batches []models.BatchPayout
	if err := r.Collection(batchPayoutsCollection).FindMany(ctx, bson.M{"distributionId": distributionId}, opts, &batches); err != nil {
		return nil, err
	}
	return batches, nil
}
