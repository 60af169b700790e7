package models

import (
	"errors"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Document field names in the cars collection.
const (
	FieldID             = "_id"
	FieldType           = "type"
	FieldHorsepower     = "HP"
	FieldLitersPer100km = "HPl100"
)

// Values substituted when a stored document is missing an optional field.
const (
	DefaultType       = "unknown"
	DefaultHorsepower = 0
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrValidation   = errors.New("invalid record")
	ErrMissingField = errors.New("missing required field")
	ErrInvalidField = errors.New("field has unexpected type")
)

// CarRecord is a single car document
type CarRecord struct {
	Id             string  `json:"id"`
	Type           string  `json:"type"`
	Horsepower     int     `json:"horsepower"`
	LitersPer100km float64 `json:"litersPer100km"`
}

// ToDocument builds the stored representation of the record. The id is never written,
// MongoDB assigns it on insert and it never changes after that.
func (c CarRecord) ToDocument() bson.D {
	return bson.D{
		{Key: FieldType, Value: c.Type},
		{Key: FieldHorsepower, Value: c.Horsepower},
		{Key: FieldLitersPer100km, Value: c.LitersPer100km},
	}
}

// DecodeCarRecord parses a stored document.
//
// A missing or null type becomes DefaultType and a missing or null HP becomes DefaultHorsepower.
// HPl100 has no default: a document without it is rejected with ErrMissingField.
func DecodeCarRecord(doc bson.Raw) (CarRecord, error) {
	record := CarRecord{
		Type:       DefaultType,
		Horsepower: DefaultHorsepower,
	}

	if val, ok := lookup(doc, FieldID); ok {
		switch val.Type {
		case bsontype.ObjectID:
			record.Id = val.ObjectID().Hex()
		case bsontype.String:
			record.Id = val.StringValue()
		default:
			return CarRecord{}, fmt.Errorf("%w: %s is %s", ErrInvalidField, FieldID, val.Type)
		}
	}

	if val, ok := lookup(doc, FieldType); ok {
		if val.Type != bsontype.String {
			return CarRecord{}, fmt.Errorf("%w: %s is %s", ErrInvalidField, FieldType, val.Type)
		}
		record.Type = val.StringValue()
	}

	if val, ok := lookup(doc, FieldHorsepower); ok {
		hp, err := numberValue(FieldHorsepower, val)
		if err != nil {
			return CarRecord{}, err
		}
		if hp != math.Trunc(hp) {
			return CarRecord{}, fmt.Errorf("%w: %s is not a whole number: %v", ErrInvalidField, FieldHorsepower, hp)
		}
		if hp < float64(math.MinInt) || hp >= float64(math.MaxInt) {
			return CarRecord{}, fmt.Errorf("%w: %s is out of range: %v", ErrInvalidField, FieldHorsepower, hp)
		}
		record.Horsepower = int(hp)
	}

	val, ok := lookup(doc, FieldLitersPer100km)
	if !ok {
		return CarRecord{}, fmt.Errorf("%w: %s in document %s", ErrMissingField, FieldLitersPer100km, record.Id)
	}
	liters, err := numberValue(FieldLitersPer100km, val)
	if err != nil {
		return CarRecord{}, err
	}
	record.LitersPer100km = liters

	return record, nil
}

// lookup treats null the same as a missing field.
func lookup(doc bson.Raw, key string) (bson.RawValue, bool) {
	val, err := doc.LookupErr(key)
	if err != nil || val.Type == bsontype.Null || val.Type == bsontype.Undefined {
		return bson.RawValue{}, false
	}
	return val, true
}

func numberValue(field string, val bson.RawValue) (float64, error) {
	switch val.Type {
	case bsontype.Int32:
		return float64(val.Int32()), nil
	case bsontype.Int64:
		return float64(val.Int64()), nil
	case bsontype.Double:
		return val.Double(), nil
	default:
		return 0, fmt.Errorf("%w: %s is %s", ErrInvalidField, field, val.Type)
	}
}

// CarRecordInput is the request body for creating or replacing a record.
// Pointers let us tell a missing field apart from a zero value.
type CarRecordInput struct {
	Type           *string  `json:"type"`
	Horsepower     *int     `json:"horsepower"`
	LitersPer100km *float64 `json:"litersPer100km"`
}

// ToCarRecord validates the input and applies the same defaults used when reading documents.
func (in CarRecordInput) ToCarRecord() (CarRecord, error) {
	if in.LitersPer100km == nil {
		return CarRecord{}, fmt.Errorf("%w: litersPer100km is required", ErrValidation)
	}
	if *in.LitersPer100km < 0 || math.IsNaN(*in.LitersPer100km) || math.IsInf(*in.LitersPer100km, 0) {
		return CarRecord{}, fmt.Errorf("%w: litersPer100km must be a non-negative number", ErrValidation)
	}

	record := CarRecord{
		Type:           DefaultType,
		Horsepower:     DefaultHorsepower,
		LitersPer100km: *in.LitersPer100km,
	}

	if in.Type != nil {
		record.Type = *in.Type
	}

	if in.Horsepower != nil {
		if *in.Horsepower < 0 {
			return CarRecord{}, fmt.Errorf("%w: horsepower must not be negative", ErrValidation)
		}
		record.Horsepower = *in.Horsepower
	}

	return record, nil
}
