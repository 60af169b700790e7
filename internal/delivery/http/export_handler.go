package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/hytech-racing/cars-webserver/internal/database"
	"github.com/hytech-racing/cars-webserver/internal/logging"
)

// SnapshotStore is where collection snapshots get written. Implemented by s3.S3Repository.
type SnapshotStore interface {
	WriteObjectReader(ctx context.Context, reader io.Reader, objectName string) error
	GetSignedUrl(ctx context.Context, objectPath string) (string, error)
}

type exportHandler struct {
	dbClient *database.DatabaseClient
	store    SnapshotStore
	logger   *logging.Logger
	now      func() time.Time
}

func NewExportHandler(
	r chi.Router,
	dbClient *database.DatabaseClient,
	store SnapshotStore,
	logger *logging.Logger,
) {
	handler := &exportHandler{
		dbClient: dbClient,
		store:    store,
		logger:   logger,
		now:      time.Now,
	}

	r.Post("/exportrecords", HandlerFunc(handler.ExportRecords).ServeHTTP)
}

// SnapshotObjectName is the key a snapshot taken at t is stored under
func SnapshotObjectName(t time.Time) string {
	return fmt.Sprintf("exports/cars-%s.json", t.UTC().Format("20060102-150405"))
}

// POST writes every record as a JSON array to the snapshot store and returns a link to it
func (h *exportHandler) ExportRecords(w http.ResponseWriter, r *http.Request) *HandlerError {
	ctx := r.Context()

	records, err := h.dbClient.CarRecordUseCase().ListAll(ctx)
	if err != nil {
		h.logger.Errorw("could not list car records for export", "error", err)
		return HandlerErrorFromErr(err)
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return NewHandlerError(fmt.Sprintf("could not encode snapshot: %v", err), http.StatusInternalServerError)
	}

	objectName := SnapshotObjectName(h.now())
	if err := h.store.WriteObjectReader(ctx, bytes.NewReader(payload), objectName); err != nil {
		h.logger.Errorw("could not upload snapshot", "object", objectName, "error", err)
		return NewHandlerError(err.Error(), http.StatusBadGateway)
	}

	signedUrl, err := h.store.GetSignedUrl(ctx, objectName)
	if err != nil {
		h.logger.Errorw("could not sign snapshot url", "object", objectName, "error", err)
		return NewHandlerError(err.Error(), http.StatusBadGateway)
	}

	h.logger.Infow("records exported", "object", objectName, "count", len(records))

	response := make(map[string]interface{})
	response["message"] = fmt.Sprintf("Exported %d records", len(records))
	response["object"] = objectName
	response["url"] = signedUrl
	render.JSON(w, r, response)
	return nil
}
