package repository

import (
	"context"
	"fmt"

	"github.com/hytech-racing/cars-webserver/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const CarRecordCollection string = "cars"

// CarRecordRepository contains the methods any db implementation needs to implement to interact with car records
type CarRecordRepository interface {
	Save(ctx context.Context, record models.CarRecord) (models.CarRecord, error)
	GetWithFilters(ctx context.Context, filters *bson.M) ([]models.CarRecord, error)
	DeleteCarRecordFromId(ctx context.Context, id string) error
	UpdateCarRecordFromId(ctx context.Context, id string, update *bson.M) error
	Count(ctx context.Context) (int64, error)
	Distinct(ctx context.Context, field string) ([]interface{}, error)
}

// MongoCarRecordRepository contains all the information needed to interact with the MongoDB cars collection
type MongoCarRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoCarRecordRepository creates a repository over collectionName in database.
func NewMongoCarRecordRepository(database *mongo.Database, collectionName string) (*MongoCarRecordRepository, error) {
	if collectionName == "" {
		collectionName = CarRecordCollection
	}
	collection := database.Collection(collectionName)
	if collection == nil {
		return nil, fmt.Errorf("could not get collection %s", collectionName)
	}

	return NewMongoCarRecordRepositoryFromCollection(collection), nil
}

func NewMongoCarRecordRepositoryFromCollection(collection *mongo.Collection) *MongoCarRecordRepository {
	return &MongoCarRecordRepository{
		collection: collection,
	}
}

// Inserts a car record. Any id on the record is ignored, the returned record carries the one MongoDB assigned.
func (repo *MongoCarRecordRepository) Save(ctx context.Context, record models.CarRecord) (models.CarRecord, error) {
	res, err := repo.collection.InsertOne(ctx, record.ToDocument())
	if err != nil {
		return models.CarRecord{}, fmt.Errorf("could not insert car record %+v: %w", record, err)
	}

	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		record.Id = id.Hex()
	default:
		record.Id = fmt.Sprint(id)
	}
	return record, nil
}

// Gets every car record matching filters, in storage order
func (repo *MongoCarRecordRepository) GetWithFilters(ctx context.Context, filters *bson.M) ([]models.CarRecord, error) {
	if filters == nil {
		filters = &bson.M{}
	}

	cursor, err := repo.collection.Find(ctx, *filters)
	if err != nil {
		return nil, fmt.Errorf("could not find car records with filters %v: %w", *filters, err)
	}
	defer cursor.Close(ctx)

	records := make([]models.CarRecord, 0)
	for cursor.Next(ctx) {
		record, err := models.DecodeCarRecord(cursor.Current)
		if err != nil {
			return nil, fmt.Errorf("could not decode car record: %w", err)
		}
		records = append(records, record)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Deletes the car record with id. A malformed id is reported as not found.
func (repo *MongoCarRecordRepository) DeleteCarRecordFromId(ctx context.Context, id string) error {
	objID, err := parseId(id)
	if err != nil {
		return err
	}

	res, err := repo.collection.DeleteOne(ctx, bson.M{models.FieldID: objID})
	if err != nil {
		return fmt.Errorf("could not delete car record %s: %w", id, err)
	}

	if res.DeletedCount == 0 {
		return fmt.Errorf("no records found with id %s: %w", id, models.ErrNotFound)
	}

	return nil
}

// Applies update to the car record with id. A malformed id is reported as not found.
func (repo *MongoCarRecordRepository) UpdateCarRecordFromId(ctx context.Context, id string, update *bson.M) error {
	objID, err := parseId(id)
	if err != nil {
		return err
	}

	if update == nil || len(*update) == 0 {
		return fmt.Errorf("%w: empty update for %s", models.ErrValidation, id)
	}

	res, err := repo.collection.UpdateOne(ctx, bson.M{models.FieldID: objID}, *update)
	if err != nil {
		return fmt.Errorf("could not update car record %s: %w", id, err)
	}

	if res.MatchedCount == 0 {
		return fmt.Errorf("no records found with id %s: %w", id, models.ErrNotFound)
	}

	return nil
}

func (repo *MongoCarRecordRepository) Count(ctx context.Context) (int64, error) {
	count, err := repo.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("could not count car records: %w", err)
	}
	return count, nil
}

// Distinct returns the distinct values stored under field, in whatever BSON type they were stored as.
func (repo *MongoCarRecordRepository) Distinct(ctx context.Context, field string) ([]interface{}, error) {
	values, err := repo.collection.Distinct(ctx, field, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("could not get distinct values for %s: %w", field, err)
	}

	if values == nil {
		values = make([]interface{}, 0)
	}
	return values, nil
}

func parseId(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, models.ErrNotFound)
	}
	return objID, nil
}
