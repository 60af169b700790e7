package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hytech-racing/cars-webserver/internal/database"
	"github.com/hytech-racing/cars-webserver/internal/logging"
	"github.com/hytech-racing/cars-webserver/internal/mock_db"
	"github.com/hytech-racing/cars-webserver/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type testServer struct {
	handler http.Handler
	repo    *mock_db.CarRecordRepository
}

func newTestServer(t *testing.T, store SnapshotStore, records ...models.CarRecord) *testServer {
	repo := mock_db.NewCarRecordRepository(records...)
	logger := logging.NewLogger(zap.NewNop(), logging.DefaultMaxLogs, t.TempDir())
	router := NewRouter(database.NewDatabaseClientFromRepository(repo), logger, RouterOptions{
		MaxBodyBytes:  1024,
		SnapshotStore: store,
	})
	return &testServer{handler: router, repo: repo}
}

func (s *testServer) do(t *testing.T, method string, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp := httptest.NewRecorder()
	s.handler.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	return out
}

func TestHome(t *testing.T) {
	server := newTestServer(t, nil)

	resp := server.do(t, "GET", "/", "")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[map[string]string](t, resp)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, PageVersion, body["pageversion"])
	assert.NotEmpty(t, body["message"])
}

func TestPing(t *testing.T) {
	server := newTestServer(t, nil)

	resp := server.do(t, "GET", "/ping", "")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestShowRecords(t *testing.T) {
	server := newTestServer(t, nil,
		models.CarRecord{Type: "Honda Civic", Horsepower: 158, LitersPer100km: 6.4},
		models.CarRecord{Type: "Ferrari F40", Horsepower: 471, LitersPer100km: 18},
	)

	resp := server.do(t, "GET", "/showrecords", "")
	require.Equal(t, http.StatusOK, resp.Code)

	records := decode[[]models.CarRecord](t, resp)
	require.Len(t, records, 2)
	assert.Equal(t, "Honda Civic", records[0].Type)
	assert.Equal(t, "Ferrari F40", records[1].Type)
}

func TestShowRecords_EmptyCollectionIsEmptyArray(t *testing.T) {
	server := newTestServer(t, nil)

	resp := server.do(t, "GET", "/showrecords", "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, "[]", resp.Body.String())
}

func TestAddRecord(t *testing.T) {
	server := newTestServer(t, nil)

	resp := server.do(t, "POST", "/addrecord", `{"id":"mine","type":"Kia EV6","horsepower":320,"litersPer100km":0}`)
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[struct {
		Message string           `json:"message"`
		Record  models.CarRecord `json:"record"`
	}](t, resp)
	assert.Equal(t, "Record added", body.Message)
	assert.Equal(t, "Kia EV6", body.Record.Type)
	assert.NotEqual(t, "mine", body.Record.Id)

	records := decode[[]models.CarRecord](t, server.do(t, "GET", "/showrecords", ""))
	require.Len(t, records, 1)
	assert.Equal(t, body.Record, records[0])
}

func TestAddRecord_Validation(t *testing.T) {
	server := newTestServer(t, nil)

	tests := map[string]string{
		"missing litersPer100km": `{"type":"Kia EV6","horsepower":320}`,
		"negative horsepower":    `{"type":"Kia EV6","horsepower":-1,"litersPer100km":1}`,
		"malformed json":         `{"type":`,
		"wrong field type":       `{"horsepower":"lots","litersPer100km":1}`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			resp := server.do(t, "POST", "/addrecord", body)
			assert.Equal(t, http.StatusBadRequest, resp.Code)

			errBody := decode[map[string]interface{}](t, resp)
			assert.NotEmpty(t, errBody["message"])
		})
	}

	count, err := server.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAddRecord_BodyTooLarge(t *testing.T) {
	server := newTestServer(t, nil)

	body := `{"type":"` + strings.Repeat("x", 2048) + `","litersPer100km":1}`
	resp := server.do(t, "POST", "/addrecord", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)

	// without a declared length the limit is hit while decoding
	req := httptest.NewRequest("POST", "/addrecord", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	resp = httptest.NewRecorder()
	server.handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)

	count, err := server.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteRecord(t *testing.T) {
	server := newTestServer(t, nil)
	added := decode[struct {
		Record models.CarRecord `json:"record"`
	}](t, server.do(t, "POST", "/addrecord", `{"type":"Mini Cooper","horsepower":134,"litersPer100km":5.6}`))

	resp := server.do(t, "DELETE", "/deleterecord/"+added.Record.Id, "")
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, added.Record.Id, body["id"])
	assert.Equal(t, "Record Deleted successfully", body["message"])

	records := decode[[]models.CarRecord](t, server.do(t, "GET", "/showrecords", ""))
	assert.Empty(t, records)

	resp = server.do(t, "DELETE", "/deleterecord/"+added.Record.Id, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = server.do(t, "DELETE", "/deleterecord/not-an-id", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateRecord(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	server := newTestServer(t, nil, models.CarRecord{Id: id, Type: "VW Golf", Horsepower: 148, LitersPer100km: 5.9})

	resp := server.do(t, "PUT", "/updaterecord/"+id, `{"type":"VW Golf R","horsepower":315,"litersPer100km":8.1}`)
	require.Equal(t, http.StatusOK, resp.Code)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, id, body["id"])

	records := decode[[]models.CarRecord](t, server.do(t, "GET", "/getbytype/golf", ""))
	require.Len(t, records, 1)
	assert.Equal(t, models.CarRecord{Id: id, Type: "VW Golf R", Horsepower: 315, LitersPer100km: 8.1}, records[0])

	resp = server.do(t, "PUT", "/updaterecord/"+primitive.NewObjectID().Hex(), `{"type":"x","litersPer100km":1}`)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = server.do(t, "PUT", "/updaterecord/"+id, `{"type":"no liters"}`)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHighHorsepower(t *testing.T) {
	server := newTestServer(t, nil,
		models.CarRecord{Type: "Huracan", Horsepower: 750, LitersPer100km: 14},
		models.CarRecord{Type: "SF90", Horsepower: 900, LitersPer100km: 6},
		models.CarRecord{Type: "Jesko", Horsepower: 950, LitersPer100km: 20},
	)

	records := decode[[]models.CarRecord](t, server.do(t, "GET", "/highhp/900", ""))
	require.Len(t, records, 1)
	assert.Equal(t, "Jesko", records[0].Type)

	resp := server.do(t, "GET", "/highhp/nine-hundred", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGetByType(t *testing.T) {
	server := newTestServer(t, nil,
		models.CarRecord{Type: "Honda Civic", Horsepower: 158, LitersPer100km: 6.4},
		models.CarRecord{Type: "CIVIC Type R", Horsepower: 315, LitersPer100km: 8.9},
		models.CarRecord{Type: "Honda Accord", Horsepower: 192, LitersPer100km: 7.1},
	)

	records := decode[[]models.CarRecord](t, server.do(t, "GET", "/getbytype/civic", ""))
	require.Len(t, records, 2)

	records = decode[[]models.CarRecord](t, server.do(t, "GET", "/getbytype/honda%20accord", ""))
	require.Len(t, records, 1)
	assert.Equal(t, "Honda Accord", records[0].Type)
}

func TestGetByType_EscapedText(t *testing.T) {
	server := newTestServer(t, nil,
		models.CarRecord{Type: "Fuel 100%41 blend", LitersPer100km: 1},
		models.CarRecord{Type: "Fuel 100A blend", LitersPer100km: 1},
		models.CarRecord{Type: "Model a/b", LitersPer100km: 1},
	)

	// %25 is a literal percent sign, the text is decoded exactly once
	records := decode[[]models.CarRecord](t, server.do(t, "GET", "/getbytype/100%2541", ""))
	require.Len(t, records, 1)
	assert.Equal(t, "Fuel 100%41 blend", records[0].Type)

	records = decode[[]models.CarRecord](t, server.do(t, "GET", "/getbytype/a%2Fb", ""))
	require.Len(t, records, 1)
	assert.Equal(t, "Model a/b", records[0].Type)
}

func TestCountDocument(t *testing.T) {
	server := newTestServer(t, nil,
		models.CarRecord{Type: "a", Horsepower: 750, LitersPer100km: 1},
		models.CarRecord{Type: "b", Horsepower: 750, LitersPer100km: 1},
		models.CarRecord{Type: "c", Horsepower: 950, LitersPer100km: 1},
	)

	resp := server.do(t, "GET", "/countdocument", "")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[struct {
		DocumentCount int64     `json:"documentCount"`
		HP            []float64 `json:"HP"`
	}](t, resp)
	assert.Equal(t, int64(3), body.DocumentCount)
	assert.ElementsMatch(t, []float64{750, 950}, body.HP)
}

func TestConnectivityErrorIsServerError(t *testing.T) {
	server := newTestServer(t, nil)
	server.repo.Err = errors.New("connection refused")

	for _, path := range []string{"/showrecords", "/countdocument", "/highhp/1", "/getbytype/a"} {
		resp := server.do(t, "GET", path, "")
		assert.Equal(t, http.StatusInternalServerError, resp.Code, path)

		body := decode[map[string]interface{}](t, resp)
		assert.Equal(t, "connection refused", body["message"], path)
	}
}

func TestCORS(t *testing.T) {
	server := newTestServer(t, nil)

	req := httptest.NewRequest("OPTIONS", "/addrecord", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp := httptest.NewRecorder()
	server.handler.ServeHTTP(resp, req)

	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}

type fakeSnapshotStore struct {
	objects map[string][]byte
	err     error
}

func (f *fakeSnapshotStore) WriteObjectReader(ctx context.Context, reader io.Reader, objectName string) error {
	if f.err != nil {
		return f.err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return err
	}
	f.objects[objectName] = buf.Bytes()
	return nil
}

func (f *fakeSnapshotStore) GetSignedUrl(ctx context.Context, objectPath string) (string, error) {
	return "https://example.com/" + objectPath + "?signed=1", nil
}

func TestExportRecords(t *testing.T) {
	store := &fakeSnapshotStore{objects: make(map[string][]byte)}
	server := newTestServer(t, store, models.CarRecord{Type: "Lotus Elise", Horsepower: 134, LitersPer100km: 6.3})

	resp := server.do(t, "POST", "/exportrecords", "")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[map[string]string](t, resp)
	require.Contains(t, store.objects, body["object"])
	assert.Equal(t, "https://example.com/"+body["object"]+"?signed=1", body["url"])

	var exported []models.CarRecord
	require.NoError(t, json.Unmarshal(store.objects[body["object"]], &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "Lotus Elise", exported[0].Type)
}

func TestExportRecords_UploadFails(t *testing.T) {
	store := &fakeSnapshotStore{objects: make(map[string][]byte), err: errors.New("access denied")}
	server := newTestServer(t, store)

	resp := server.do(t, "POST", "/exportrecords", "")
	assert.Equal(t, http.StatusBadGateway, resp.Code)
}

func TestExportRecords_NotMountedWithoutStore(t *testing.T) {
	server := newTestServer(t, nil)

	resp := server.do(t, "POST", "/exportrecords", "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSnapshotObjectName(t *testing.T) {
	at := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	assert.Equal(t, "exports/cars-20240309-140507.json", SnapshotObjectName(at))
}

func TestHandlerFunc_RecoversPanics(t *testing.T) {
	handler := HandlerFunc(func(w http.ResponseWriter, r *http.Request) *HandlerError {
		panic("unexpected")
	})

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest("GET", "/", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}
