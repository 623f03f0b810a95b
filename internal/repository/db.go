package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"payout_engine/internal/config"
	"payout_engine/internal/models"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DbRepository interface {
	Health() error
	Disconnect() error

	FindDistribution(ctx context.Context, id string) (*models.Distribution, error)
	SaveDistribution(ctx context.Context, distribution *models.Distribution) error
	InsertDistribution(ctx context.Context, distribution models.Distribution) error
	FindDistributionByCorporateAction(ctx context.Context, assetId, corporateActionId string) (*models.Distribution, error)
	ListDistributionsByStatus(ctx context.Context, status models.DistributionStatus) ([]models.Distribution, error)
	UpdateDistributionExecutionDate(ctx context.Context, id string, executionDate time.Time) error

	FindBatchPayout(ctx context.Context, id string) (*models.BatchPayout, error)
	SaveBatchPayout(ctx context.Context, batch *models.BatchPayout) error
	ListBatchPayoutsByDistribution(ctx context.Context, distributionId string) ([]models.BatchPayout, error)

	ListHoldersByDistributionAndStatus(ctx context.Context, distributionId string, status models.HolderStatus) ([]models.Holder, error)
	ListHoldersByBatchPayout(ctx context.Context, batchPayoutId string) ([]models.Holder, error)
	SaveHolders(ctx context.Context, holders []models.Holder) error

	FindAsset(ctx context.Context, id string) (*models.Asset, error)
	ListSyncEnabledAssets(ctx context.Context) ([]models.Asset, error)
}

type mongoRepository struct {
	client *mongo.Client
	dbName string
}

func ConnectToDb(config *config.Config) (DbRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	host := config.Db.Host
	port := config.Db.Port
	user := config.Db.User
	password := config.Db.Password
	dbName := config.Db.DbName

	uri := fmt.Sprintf("mongodb://%s:%d", host, port)
	if user != "" && password != "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%d", user, password, host, port)
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}
	log.Println("✅ Db connected")

	return &mongoRepository{
		client: client,
		dbName: dbName,
	}, nil
}

func (r *mongoRepository) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	return r.client.Ping(ctx, nil)
}

func (r *mongoRepository) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return r.client.Disconnect(ctx)
}
