package mock_db

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/hytech-racing/cars-webserver/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CarRecordRepository is an in-memory stand-in for the MongoDB cars collection.
// It understands the filter and update shapes the use case builds: equality, $gt, $regex and $set.
// Setting Err makes every call fail with it, which is how tests simulate a lost connection.
type CarRecordRepository struct {
	mu      sync.Mutex
	records []models.CarRecord
	Err     error
}

func NewCarRecordRepository(records ...models.CarRecord) *CarRecordRepository {
	repo := &CarRecordRepository{}
	for _, record := range records {
		if record.Id == "" {
			record.Id = primitive.NewObjectID().Hex()
		}
		repo.records = append(repo.records, record)
	}
	return repo
}

func (repo *CarRecordRepository) Save(ctx context.Context, record models.CarRecord) (models.CarRecord, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.Err != nil {
		return models.CarRecord{}, repo.Err
	}

	record.Id = primitive.NewObjectID().Hex()
	repo.records = append(repo.records, record)
	return record, nil
}

func (repo *CarRecordRepository) GetWithFilters(ctx context.Context, filters *bson.M) ([]models.CarRecord, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.Err != nil {
		return nil, repo.Err
	}

	results := make([]models.CarRecord, 0)
	for _, record := range repo.records {
		ok, err := matches(record, filters)
		if err != nil {
			return nil, err
		}
		if ok {
			results = append(results, record)
		}
	}
	return results, nil
}

func (repo *CarRecordRepository) DeleteCarRecordFromId(ctx context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.Err != nil {
		return repo.Err
	}

	index, err := repo.indexOf(id)
	if err != nil {
		return err
	}
	repo.records = append(repo.records[:index], repo.records[index+1:]...)
	return nil
}

func (repo *CarRecordRepository) UpdateCarRecordFromId(ctx context.Context, id string, update *bson.M) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.Err != nil {
		return repo.Err
	}

	index, err := repo.indexOf(id)
	if err != nil {
		return err
	}

	set, ok := (*update)["$set"].(bson.M)
	if !ok {
		return fmt.Errorf("%w: only $set updates are supported", models.ErrValidation)
	}

	record := repo.records[index]
	for field, value := range set {
		var typeOk bool
		switch field {
		case models.FieldType:
			record.Type, typeOk = value.(string)
		case models.FieldHorsepower:
			record.Horsepower, typeOk = value.(int)
		case models.FieldLitersPer100km:
			record.LitersPer100km, typeOk = value.(float64)
		default:
			return fmt.Errorf("unsupported field %s", field)
		}
		if !typeOk {
			return fmt.Errorf("%w: %s cannot be set to %T", models.ErrValidation, field, value)
		}
	}
	repo.records[index] = record
	return nil
}

func (repo *CarRecordRepository) Count(ctx context.Context) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.Err != nil {
		return 0, repo.Err
	}
	return int64(len(repo.records)), nil
}

func (repo *CarRecordRepository) Distinct(ctx context.Context, field string) ([]interface{}, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.Err != nil {
		return nil, repo.Err
	}

	seen := make(map[interface{}]bool)
	values := make([]interface{}, 0)
	for _, record := range repo.records {
		var value interface{}
		switch field {
		case models.FieldType:
			value = record.Type
		case models.FieldHorsepower:
			value = record.Horsepower
		case models.FieldLitersPer100km:
			value = record.LitersPer100km
		default:
			continue
		}
		if !seen[value] {
			seen[value] = true
			values = append(values, value)
		}
	}
	return values, nil
}

func (repo *CarRecordRepository) indexOf(id string) (int, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return -1, fmt.Errorf("invalid id %q: %w", id, models.ErrNotFound)
	}
	for i, record := range repo.records {
		if record.Id == id {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no records found with id %s: %w", id, models.ErrNotFound)
}

func matches(record models.CarRecord, filters *bson.M) (bool, error) {
	if filters == nil {
		return true, nil
	}

	for field, condition := range *filters {
		switch field {
		case models.FieldHorsepower:
			cond, ok := condition.(bson.M)
			if !ok {
				if record.Horsepower != condition {
					return false, nil
				}
				continue
			}
			if gt, ok := cond["$gt"].(int); ok && record.Horsepower <= gt {
				return false, nil
			}
		case models.FieldType:
			cond, ok := condition.(bson.M)
			if !ok {
				if record.Type != condition {
					return false, nil
				}
				continue
			}
			if re, ok := cond["$regex"].(primitive.Regex); ok {
				pattern := re.Pattern
				if re.Options == "i" {
					pattern = "(?i)" + pattern
				}
				compiled, err := regexp.Compile(pattern)
				if err != nil {
					return false, err
				}
				if !compiled.MatchString(record.Type) {
					return false, nil
				}
			}
		default:
			return false, fmt.Errorf("unsupported filter field %s", field)
		}
	}
	return true, nil
}
