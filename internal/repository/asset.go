package repository

import (
	"context"
	"fmt"

	"payout_engine/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const assetsCollection = "assets"

func (r *mongoRepository) FindAsset(ctx context.Context, id string) (*models.Asset, error) {
	var asset models.Asset
	err := r.Collection(assetsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&asset)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("error fetching asset %s: %v", id, err)
	}
	return &asset, nil
}

func (r *mongoRepository) ListSyncEnabledAssets(ctx context.Context) ([]models.Asset, error) {
	var assets []models.Asset
	if err := r.Collection(assetsCollection).FindMany(ctx, bson.M{"syncEnabled": true}, nil, &assets); err != nil {
		return nil, err
	}
	return assets, nil
}
