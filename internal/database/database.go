package database

import (
	"context"
	"fmt"

	"github.com/hytech-racing/cars-webserver/internal/database/repository"
	"github.com/hytech-racing/cars-webserver/internal/database/usecase"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// A DatabaseClient establishes a connection to the MongoDB database and hands out use cases
// over the cars collection. It is created once at startup and shared by every request.
// Whoever creates it is responsible for calling Disconnect() when the server shuts down.
type DatabaseClient struct {
	databaseClient      *mongo.Client
	carRecordRepository repository.CarRecordRepository
}

func NewDatabaseClient(ctx context.Context, uri string, databaseName string, collectionName string) (*DatabaseClient, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("could not connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}

	carsDatabase := client.Database(databaseName)
	if carsDatabase == nil {
		return nil, fmt.Errorf("could not open database %s", databaseName)
	}

	carRecordRepository, err := repository.NewMongoCarRecordRepository(carsDatabase, collectionName)
	if err != nil {
		return nil, fmt.Errorf("could not create carRecordRepository: %w", err)
	}

	return &DatabaseClient{
		databaseClient:      client,
		carRecordRepository: carRecordRepository,
	}, nil
}

// NewDatabaseClientFromRepository builds a client around an existing repository, used when
// the server runs against something other than a live MongoDB deployment.
func NewDatabaseClientFromRepository(carRecordRepository repository.CarRecordRepository) *DatabaseClient {
	return &DatabaseClient{
		carRecordRepository: carRecordRepository,
	}
}

func (client *DatabaseClient) CarRecordUseCase() *usecase.CarRecordUseCase {
	return usecase.NewCarRecordUseCase(client.carRecordRepository)
}

func (client *DatabaseClient) Disconnect(ctx context.Context) error {
	if client.databaseClient == nil {
		return nil
	}
	if err := client.databaseClient.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB client: %w", err)
	}
	return nil
}
