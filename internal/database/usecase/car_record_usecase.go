package usecase

import (
	"context"
	"regexp"

	"github.com/hytech-racing/cars-webserver/internal/database/repository"
	"github.com/hytech-racing/cars-webserver/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarRecordUseCase struct {
	carRecordRepo repository.CarRecordRepository
}

func NewCarRecordUseCase(carRecordRepo repository.CarRecordRepository) *CarRecordUseCase {
	return &CarRecordUseCase{
		carRecordRepo: carRecordRepo,
	}
}

func (uc *CarRecordUseCase) ListAll(ctx context.Context) ([]models.CarRecord, error) {
	return uc.carRecordRepo.GetWithFilters(ctx, &bson.M{})
}

func (uc *CarRecordUseCase) Insert(ctx context.Context, record models.CarRecord) (models.CarRecord, error) {
	record.Id = ""
	return uc.carRecordRepo.Save(ctx, record)
}

func (uc *CarRecordUseCase) DeleteById(ctx context.Context, id string) error {
	return uc.carRecordRepo.DeleteCarRecordFromId(ctx, id)
}

// UpdateById replaces type, HP and HPl100 together. The id is left untouched.
func (uc *CarRecordUseCase) UpdateById(ctx context.Context, id string, record models.CarRecord) error {
	update := bson.M{
		"$set": bson.M{
			models.FieldType:           record.Type,
			models.FieldHorsepower:     record.Horsepower,
			models.FieldLitersPer100km: record.LitersPer100km,
		},
	}
	return uc.carRecordRepo.UpdateCarRecordFromId(ctx, id, &update)
}

// FilterByMinHorsepower returns the records with HP strictly greater than minHp.
func (uc *CarRecordUseCase) FilterByMinHorsepower(ctx context.Context, minHp int) ([]models.CarRecord, error) {
	return uc.GetByFilters(ctx, &models.CarRecordFilters{MinHorsepower: &minHp})
}

// FilterByTypeSubstring returns the records whose type contains text, ignoring case.
func (uc *CarRecordUseCase) FilterByTypeSubstring(ctx context.Context, text string) ([]models.CarRecord, error) {
	return uc.GetByFilters(ctx, &models.CarRecordFilters{TypeContains: &text})
}

func (uc *CarRecordUseCase) GetByFilters(ctx context.Context, filters *models.CarRecordFilters) ([]models.CarRecord, error) {
	bsonFilters := bson.M{}

	if filters != nil {
		if filters.MinHorsepower != nil {
			bsonFilters[models.FieldHorsepower] = bson.M{"$gt": *filters.MinHorsepower}
		}

		// The text is matched literally, regex metacharacters in it are escaped
		if filters.TypeContains != nil {
			bsonFilters[models.FieldType] = bson.M{
				"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(*filters.TypeContains), Options: "i"},
			}
		}
	}

	return uc.carRecordRepo.GetWithFilters(ctx, &bsonFilters)
}

func (uc *CarRecordUseCase) Count(ctx context.Context) (int64, error) {
	return uc.carRecordRepo.Count(ctx)
}

func (uc *CarRecordUseCase) DistinctValues(ctx context.Context, field string) ([]interface{}, error) {
	return uc.carRecordRepo.Distinct(ctx, field)
}
