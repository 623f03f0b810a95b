package repository

import (
	"context"
	"fmt"
	"time"

	"payout_engine/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const distributionsCollection = "distributions"

func (r *mongoRepository) FindDistribution(ctx context.Context, id string) (*models.Distribution, error) {
	var distribution models.Distribution
	err := r.Collection(distributionsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&distribution)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching distribution %s: %v", id, err)
	}
	return &distribution, nil
}

func (r *mongoRepository) SaveDistribution(ctx context.Context, distribution *models.Distribution) error {
	return r.Collection(distributionsCollection).ReplaceOne(ctx, bson.M{"_id": distribution.Id}, distribution)
}

func (r *mongoRepository) InsertDistribution(ctx context.Context, distribution models.Distribution) error {
	return r.Collection(distributionsCollection).InsertOne(ctx, distribution)
}

func (r *mongoRepository) FindDistributionByCorporateAction(ctx context.Context, assetId, corporateActionId string) (*models.Distribution, error) {
	filter := bson.M{"assetId": assetId, "details.corporateActionId": corporateActionId}

	var distribution models.Distribution
	err := r.Collection(distributionsCollection).FindOne(ctx, filter).Decode(&distribution)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching distribution for corporate action %s: %v", corporateActionId, err)
	}
	return &distribution, nil
}

func (r *mongoRepository) ListDistributionsByStatus(ctx context.Context, status models.DistributionStatus) ([]models.Distribution, error) {
	var distributions []models.Distribution
	if err := r.Collection(distributionsCollection).FindMany(ctx, bson.M{"status": status}, nil, &distributions); err != nil {
		return nil, err
	}
	return distributions, nil
}

func (r *mongoRepository) UpdateDistributionExecutionDate(ctx context.Context, id string, executionDate time.Time) error {
	return r.Collection(distributionsCollection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"details.executionDate": executionDate})
}
