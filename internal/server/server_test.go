package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bizzy604/HIS-sub000/internal/access"
	appointmentdomain "github.com/bizzy604/HIS-sub000/internal/appointment/domain"
	appointmentservice "github.com/bizzy604/HIS-sub000/internal/appointment/service"
	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/internal/clock"
	"github.com/bizzy604/HIS-sub000/internal/config"
	"github.com/bizzy604/HIS-sub000/internal/observability/metrics"
	patientdomain "github.com/bizzy604/HIS-sub000/internal/patient/domain"
	patientrepo "github.com/bizzy604/HIS-sub000/internal/patient/repository"
	patientservice "github.com/bizzy604/HIS-sub000/internal/patient/service"
	providerdomain "github.com/bizzy604/HIS-sub000/internal/provider/domain"
	providerservice "github.com/bizzy604/HIS-sub000/internal/provider/service"
	"github.com/bizzy604/HIS-sub000/internal/sequence"
	"github.com/bizzy604/HIS-sub000/internal/server"
)

const (
	doctorToken     = "tok-doctor"
	pharmacistToken = "tok-pharmacist"
)

type fixture struct {
	engine *gin.Engine
	clock  *clock.FakeClock
	db     *gorm.DB
	node   *snowflake.Node
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:serverdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&providerdomain.Provider{},
		&patientdomain.Patient{},
		&appointmentdomain.Appointment{},
	))
	require.NoError(t, db.Exec(`CREATE TABLE document_sequences (
		scope TEXT NOT NULL,
		day TEXT NOT NULL,
		last_value BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMP,
		updated_at TIMESTAMP,
		PRIMARY KEY (scope, day)
	)`).Error)

	node, err := snowflake.NewNode(14)
	require.NoError(t, err)
	log := zap.NewNop()

	for _, p := range []providerdomain.Provider{
		{ID: node.Generate(), Name: "Dr. Achieng Odhiambo", Email: "achieng@clinic.test", Role: providerdomain.RoleDoctor, APIToken: doctorToken, Active: true},
		{ID: node.Generate(), Name: "Wanjiru Kamau", Email: "wanjiru@clinic.test", Role: providerdomain.RolePharmacist, APIToken: pharmacistToken, Active: true},
	} {
		require.NoError(t, db.Create(&p).Error)
	}

	enforcer, err := authorization.NewEnforcer(db)
	require.NoError(t, err)
	authzSvc := authorization.NewService(authorization.Params{DB: db, Log: log, Enforcer: enforcer})

	providerSvc := providerservice.New(providerservice.Params{DB: db, Log: log})
	patientSvc := patientservice.New(patientservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Allocator: sequence.NewAllocator(log),
		Repo:      patientrepo.Provide(),
	})
	appointmentSvc := appointmentservice.New(appointmentservice.Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		AccessSvc: access.New(access.Params{DB: db, Log: log}),
	})

	registry := prometheus.NewRegistry()
	httpMetrics, err := metrics.NewHTTPMetrics(registry)
	require.NoError(t, err)
	m, err := metrics.New(registry)
	require.NoError(t, err)

	fakeClock := clock.NewFakeClock(time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC))

	engine := server.NewEngine(config.Config{}, httpMetrics, registry)
	srv := server.NewServer(server.ServerParams{
		Log:            log,
		Engine:         engine,
		ProviderSvc:    providerSvc,
		AuthzSvc:       authzSvc,
		PatientSvc:     patientSvc,
		AppointmentSvc: appointmentSvc,
		Metrics:        m,
		Clock:          fakeClock,
	})
	srv.RegisterAPIRoutes()

	return &fixture{engine: engine, clock: fakeClock, db: db, node: node}
}

func (f *fixture) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var payload *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(raw)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/v1/patients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(t, http.MethodGet, "/v1/patients", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePatientMintsMRN(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/v1/patients", doctorToken, map[string]any{
		"name":   "Asha Mwangi",
		"gender": "female",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decodeData(t, rec)
	mrn, _ := data["mrn"].(string)
	assert.Regexp(t, `^MRN-\d{8}-\d{4}$`, mrn)
}

func TestRoleWithoutGrantGets403(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/v1/patients", pharmacistToken, map[string]any{
		"name": "Asha Mwangi",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestValidationFailureGets400(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodPost, "/v1/patients", doctorToken, map[string]any{
		"name": "   ",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnknownPatientGets404(t *testing.T) {
	f := newFixture(t)

	rec := f.request(t, http.MethodGet, "/v1/patients/"+f.node.Generate().String(), doctorToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTodayQueueFollowsClock(t *testing.T) {
	f := newFixture(t)

	created := f.request(t, http.MethodPost, "/v1/patients", doctorToken, map[string]any{"name": "Asha Mwangi"})
	require.Equal(t, http.StatusOK, created.Code)
	patientID, _ := decodeData(t, created)["id"].(string)
	require.NotEmpty(t, patientID)

	scheduledAt := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	booked := f.request(t, http.MethodPost, "/v1/appointments", doctorToken, map[string]any{
		"patient_id":   patientID,
		"scheduled_at": scheduledAt.Format(time.RFC3339),
		"reason":       "follow-up",
	})
	require.Equal(t, http.StatusOK, booked.Code, booked.Body.String())

	rec := f.request(t, http.MethodGet, "/v1/appointments/queue", doctorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	queue, _ := decodeData(t, rec)["appointments"].([]any)
	assert.Len(t, queue, 1)

	// The next day the queue is empty again.
	f.clock.Advance(24 * time.Hour)
	rec = f.request(t, http.MethodGet, "/v1/appointments/queue", doctorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	queue, _ = decodeData(t, rec)["appointments"].([]any)
	assert.Len(t, queue, 0)
}
