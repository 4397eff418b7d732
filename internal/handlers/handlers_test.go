package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/dimeda/stretcher-service/internal/auth"
	"github.com/dimeda/stretcher-service/internal/config"
	"github.com/dimeda/stretcher-service/internal/events"
	"github.com/dimeda/stretcher-service/internal/issues"
	"github.com/dimeda/stretcher-service/internal/testutil"
)

// testServer wires every handler against in-memory collections.
type testServer struct {
	mux         *http.ServeMux
	products    *testutil.MemProductCollection
	issues      *testutil.MemIssueCollection
	maintenance *testutil.MemMaintenanceCollection
	services    *testutil.MemServiceCollection
	technicians *testutil.MemTechnicianCollection
	sessions    *auth.Service
	now         time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := log.New()
	logger.SetOutput(io.Discard)
	entry := log.NewEntry(logger)

	ts := &testServer{
		products:    testutil.NewMemProductCollection(),
		issues:      testutil.NewMemIssueCollection(),
		maintenance: testutil.NewMemMaintenanceCollection(),
		services:    testutil.NewMemServiceCollection(),
		technicians: testutil.NewMemTechnicianCollection(),
		now:         time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}

	sessions, err := auth.NewService(&config.Config{
		JWTSecret:          "test-secret",
		TokenExpiry:        time.Hour,
		AdminPassword:      "admin-pass",
		TechnicianPassword: "tech-pass",
		CustomerPassword:   "customer-pass",
	})
	require.NoError(t, err)
	ts.sessions = sessions

	issueService := issues.NewService(ts.issues, ts.products, ts.maintenance, ts.services, events.NoopPublisher{}, entry)

	productHandler := NewProductHandler(ts.products, ts.maintenance, entry)
	productHandler.now = func() time.Time { return ts.now }
	maintenanceHandler := NewMaintenanceHandler(ts.maintenance, ts.products, entry)
	maintenanceHandler.now = func() time.Time { return ts.now }
	serviceHandler := NewServiceHandler(ts.services, ts.products, entry)
	exportHandler := NewExportHandler(ts.products, ts.issues, ts.services, entry)
	exportHandler.now = func() time.Time { return ts.now }

	h := &Handlers{
		Auth:        NewAuthHandler(sessions, entry),
		Products:    productHandler,
		Issues:      NewIssueHandler(issueService, entry),
		Maintenance: maintenanceHandler,
		Services:    serviceHandler,
		Technician:  NewTechnicianHandler(ts.technicians, entry),
		Stats:       NewStatsHandler(ts.products, ts.issues, ts.services, entry),
		Export:      exportHandler,
	}

	ts.mux = http.NewServeMux()
	h.Register(ts.mux)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	ts.mux.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var result []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	return result
}

func (ts *testServer) createProduct(t *testing.T, serial, city string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/products", map[string]string{
		"serial_number": serial,
		"model_name":    "Power-X 250",
		"model_type":    "powered",
		"city":          city,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id, _ := decodeBody(t, w)["id"].(string)
	require.NotEmpty(t, id)
	return id
}
