package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/hytech-racing/cars-webserver/internal/database"
	"github.com/hytech-racing/cars-webserver/internal/logging"
	"github.com/hytech-racing/cars-webserver/internal/models"
)

// This handles all requests reading or changing documents in the cars collection
type carRecordsHandler struct {
	dbClient *database.DatabaseClient
	logger   *logging.Logger
}

func NewCarRecordsHandler(
	r chi.Router,
	dbClient *database.DatabaseClient,
	logger *logging.Logger,
) {
	handler := &carRecordsHandler{
		dbClient: dbClient,
		logger:   logger,
	}

	r.Get("/showrecords", HandlerFunc(handler.ShowRecords).ServeHTTP)
	r.Get("/countdocument", HandlerFunc(handler.CountDocument).ServeHTTP)
	r.Post("/addrecord", HandlerFunc(handler.AddRecord).ServeHTTP)
	r.Delete("/deleterecord/{id}", HandlerFunc(handler.DeleteRecord).ServeHTTP)
	r.Put("/updaterecord/{id}", HandlerFunc(handler.UpdateRecord).ServeHTTP)
	r.Get("/highhp/{minHP}", HandlerFunc(handler.GetHighHorsepower).ServeHTTP)
	r.Get("/getbytype/{type}", HandlerFunc(handler.GetByType).ServeHTTP)
}

// GET every record in storage order
func (h *carRecordsHandler) ShowRecords(w http.ResponseWriter, r *http.Request) *HandlerError {
	records, err := h.dbClient.CarRecordUseCase().ListAll(r.Context())
	if err != nil {
		return h.fail(r, "could not list car records", err)
	}

	render.JSON(w, r, records)
	return nil
}

// GET the number of documents along with every distinct HP value
func (h *carRecordsHandler) CountDocument(w http.ResponseWriter, r *http.Request) *HandlerError {
	ctx := r.Context()
	uc := h.dbClient.CarRecordUseCase()

	count, err := uc.Count(ctx)
	if err != nil {
		return h.fail(r, "could not count car records", err)
	}

	distinctHP, err := uc.DistinctValues(ctx, models.FieldHorsepower)
	if err != nil {
		return h.fail(r, "could not get distinct HP values", err)
	}

	response := make(map[string]interface{})
	response["documentCount"] = count
	response["HP"] = distinctHP
	render.JSON(w, r, response)
	return nil
}

// POST a new record, the id is assigned by the database
func (h *carRecordsHandler) AddRecord(w http.ResponseWriter, r *http.Request) *HandlerError {
	record, handlerErr := h.decodeRecord(r)
	if handlerErr != nil {
		return handlerErr
	}

	saved, err := h.dbClient.CarRecordUseCase().Insert(r.Context(), record)
	if err != nil {
		return h.fail(r, "could not add car record", err)
	}

	h.logger.Infow("record added", "id", saved.Id)

	response := make(map[string]interface{})
	response["message"] = "Record added"
	response["record"] = saved
	render.JSON(w, r, response)
	return nil
}

// DELETE the record with the id in the path
func (h *carRecordsHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) *HandlerError {
	id := chi.URLParam(r, "id")

	if err := h.dbClient.CarRecordUseCase().DeleteById(r.Context(), id); err != nil {
		return h.fail(r, "could not delete car record", err)
	}

	h.logger.Infow("record deleted", "id", id)

	response := make(map[string]interface{})
	response["message"] = "Record Deleted successfully"
	response["id"] = id
	render.JSON(w, r, response)
	return nil
}

// PUT replaces type, horsepower and litersPer100km on the record with the id in the path
func (h *carRecordsHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) *HandlerError {
	id := chi.URLParam(r, "id")

	record, handlerErr := h.decodeRecord(r)
	if handlerErr != nil {
		return handlerErr
	}

	if err := h.dbClient.CarRecordUseCase().UpdateById(r.Context(), id, record); err != nil {
		return h.fail(r, "could not update car record", err)
	}

	h.logger.Infow("record updated", "id", id)

	response := make(map[string]interface{})
	response["message"] = "Record updated successfully"
	response["id"] = id
	render.JSON(w, r, response)
	return nil
}

// GET records with horsepower strictly above minHP
func (h *carRecordsHandler) GetHighHorsepower(w http.ResponseWriter, r *http.Request) *HandlerError {
	rawMinHP := chi.URLParam(r, "minHP")
	minHP, err := strconv.Atoi(rawMinHP)
	if err != nil {
		return NewHandlerError(fmt.Sprintf("minHP must be an integer, got %q", rawMinHP), http.StatusBadRequest)
	}

	records, err := h.dbClient.CarRecordUseCase().FilterByMinHorsepower(r.Context(), minHP)
	if err != nil {
		return h.fail(r, "could not filter car records by horsepower", err)
	}

	render.JSON(w, r, records)
	return nil
}

// GET records whose type contains the path text, ignoring case
func (h *carRecordsHandler) GetByType(w http.ResponseWriter, r *http.Request) *HandlerError {
	// chi routes on RawPath when it is set, so only then is the param still escaped
	carType := chi.URLParam(r, "type")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(carType)
		if err != nil {
			return NewHandlerError(fmt.Sprintf("could not unescape type %q", carType), http.StatusBadRequest)
		}
		carType = unescaped
	}

	records, err := h.dbClient.CarRecordUseCase().FilterByTypeSubstring(r.Context(), carType)
	if err != nil {
		return h.fail(r, "could not filter car records by type", err)
	}

	render.JSON(w, r, records)
	return nil
}

func (h *carRecordsHandler) decodeRecord(r *http.Request) (models.CarRecord, *HandlerError) {
	var input models.CarRecordInput
	if err := render.DecodeJSON(r.Body, &input); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return models.CarRecord{}, HandlerErrorFromErr(err)
		}
		return models.CarRecord{}, HandlerErrorFromErr(fmt.Errorf("%w: could not decode request body: %v", models.ErrValidation, err))
	}

	record, err := input.ToCarRecord()
	if err != nil {
		return models.CarRecord{}, HandlerErrorFromErr(err)
	}
	return record, nil
}

// fail logs errors that are the server's fault and converts err into a HandlerError
func (h *carRecordsHandler) fail(r *http.Request, message string, err error) *HandlerError {
	handlerErr := HandlerErrorFromErr(err)
	if handlerErr.StatusCode >= http.StatusInternalServerError {
		h.logger.Errorw(message, "path", r.URL.Path, "error", err)
	} else {
		h.logger.Debugw(message, "path", r.URL.Path, "error", err)
	}
	return handlerErr
}
