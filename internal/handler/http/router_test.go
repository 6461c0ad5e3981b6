package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/jwt"
	"github.com/igorgomez/ponto-seguro-1/internal/repository/memory"
	attendanceService "github.com/igorgomez/ponto-seguro-1/internal/service/attendance"
	identityService "github.com/igorgomez/ponto-seguro-1/internal/service/identity"
	reportService "github.com/igorgomez/ponto-seguro-1/internal/service/report"
	scheduleService "github.com/igorgomez/ponto-seguro-1/internal/service/schedule"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	gw := memory.NewGateway()
	require.NoError(t, gw.Initialize(context.Background()))

	jwtService := jwt.NewJWTService("test-secret-key-for-jwt", "1h")
	identitySvc := identityService.NewIdentityService(gw, jwtService)
	attendanceSvc := attendanceService.NewAttendanceService(gw, gw, time.UTC)
	scheduleSvc := scheduleService.NewScheduleService(gw)
	reportSvc := reportService.NewReportService(gw, 10*time.Minute, time.UTC)

	router := NewRouter(
		RouterConfig{
			Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
			AllowedOrigins: []string{"*"},
		},
		jwtService,
		NewAuthHandler(identitySvc),
		NewEmployeeHandler(identitySvc),
		NewScheduleHandler(scheduleSvc),
		NewAttendanceHandler(attendanceSvc),
		NewReportHandler(reportSvc),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, srv.URL+"/api/v1"+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func login(t *testing.T, srv *httptest.Server, cpf, password string) string {
	t.Helper()
	status, env := call(t, srv, http.MethodPost, "/auth/login", "", map[string]string{"cpf": cpf, "password": password})
	require.Equal(t, http.StatusOK, status)

	var token struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, dst))
}

func createEmployee(t *testing.T, srv *httptest.Server, adminToken, cpf string) int64 {
	t.Helper()
	status, env := call(t, srv, http.MethodPost, "/employees", adminToken, map[string]string{"cpf": cpf, "name": "Employee " + cpf})
	require.Equal(t, http.StatusCreated, status)

	var created struct {
		ID int64 `json:"id"`
	}
	decodeData(t, env, &created)
	return created.ID
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t)

	status, env := call(t, srv, http.MethodPost, "/auth/login", "", map[string]string{"cpf": storage.DefaultAdminCPF, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = call(t, srv, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	token := login(t, srv, storage.DefaultAdminCPF, storage.DefaultAdminPassword)
	status, env = call(t, srv, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)

	var me struct {
		CPF  string `json:"cpf"`
		Role string `json:"role"`
	}
	decodeData(t, env, &me)
	assert.Equal(t, storage.DefaultAdminCPF, me.CPF)
	assert.Equal(t, "admin", me.Role)
}

func TestEmployeePunchFlow(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, storage.DefaultAdminCPF, storage.DefaultAdminPassword)

	status, env := call(t, srv, http.MethodPost, "/employees", admin, map[string]string{"cpf": "1", "name": "X"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "cpf")

	employeeID := createEmployee(t, srv, admin, "12345678901")
	status, _ = call(t, srv, http.MethodPost, "/employees", admin, map[string]string{"cpf": "12345678901", "name": "Dup"})
	assert.Equal(t, http.StatusConflict, status)

	emp := login(t, srv, "12345678901", "12345678901ponto")

	status, _ = call(t, srv, http.MethodGet, "/employees", emp, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = call(t, srv, http.MethodGet, "/time-records/today/me", emp, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", string(env.Data), "no record before the first punch")

	status, env = call(t, srv, http.MethodPost, "/time-records/punch", emp, map[string]string{"type": "break"})
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SEQUENCE_ERROR", env.Error.Code)
	assert.Equal(t, "no entry", env.Error.Details["reason"])

	status, env = call(t, srv, http.MethodPost, "/time-records/punch", emp, map[string]string{"type": "return"})
	assert.Equal(t, http.StatusConflict, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "SEQUENCE_ERROR", env.Error.Code)
	assert.Equal(t, "no break", env.Error.Details["reason"])

	status, _ = call(t, srv, http.MethodPost, "/time-records/punch", emp, map[string]string{"type": "lunch"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, env = call(t, srv, http.MethodPost, "/time-records/punch", emp, map[string]interface{}{
		"type":     "entry",
		"location": map[string]float64{"lat": -23.55, "lng": -46.63},
	})
	require.Equal(t, http.StatusOK, status)

	var record struct {
		ID            int64           `json:"id"`
		EmployeeID    int64           `json:"employee_id"`
		State         string          `json:"state"`
		EntryLocation json.RawMessage `json:"entry_location"`
	}
	decodeData(t, env, &record)
	assert.Equal(t, employeeID, record.EmployeeID)
	assert.Equal(t, "working", record.State)
	assert.JSONEq(t, `{"lat":-23.55,"lng":-46.63}`, string(record.EntryLocation))

	status, env = call(t, srv, http.MethodPost, "/time-records/punch", emp, map[string]string{"type": "exit"})
	require.Equal(t, http.StatusOK, status)

	status, env = call(t, srv, http.MethodGet, fmt.Sprintf("/time-records/%d/hours", record.ID), emp, nil)
	require.Equal(t, http.StatusOK, status)
	var hours struct {
		Worked json.RawMessage `json:"worked"`
	}
	decodeData(t, env, &hours)
	assert.Contains(t, string(hours.Worked), `"minutes"`)

	status, env = call(t, srv, http.MethodGet, "/time-records/me", emp, nil)
	require.Equal(t, http.StatusOK, status)
	var history []json.RawMessage
	decodeData(t, env, &history)
	assert.Len(t, history, 1)

	// Another employee cannot read this record
	createEmployee(t, srv, admin, "22222222222")
	other := login(t, srv, "22222222222", "22222222222ponto")
	status, _ = call(t, srv, http.MethodGet, fmt.Sprintf("/time-records/%d", record.ID), other, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, srv, http.MethodGet, fmt.Sprintf("/time-records/%d", record.ID), admin, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminEditAndFeeds(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, storage.DefaultAdminCPF, storage.DefaultAdminPassword)
	createEmployee(t, srv, admin, "12345678901")
	emp := login(t, srv, "12345678901", "12345678901ponto")

	status, env := call(t, srv, http.MethodPost, "/time-records/punch", emp, map[string]string{"type": "entry"})
	require.Equal(t, http.StatusOK, status)
	var record struct {
		ID int64 `json:"id"`
	}
	decodeData(t, env, &record)
	path := fmt.Sprintf("/time-records/%d", record.ID)

	status, _ = call(t, srv, http.MethodPatch, path, emp, map[string]string{"exit": "18:00", "reason": "x"})
	assert.Equal(t, http.StatusForbidden, status)

	status, env = call(t, srv, http.MethodPatch, path, admin, map[string]string{"exit": "18:00"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "reason")

	status, env = call(t, srv, http.MethodPatch, path, admin, map[string]string{"exit": "23:59", "reason": "forgot exit"})
	require.Equal(t, http.StatusOK, status)
	var edited struct {
		State      string `json:"state"`
		EditReason string `json:"edit_reason"`
	}
	decodeData(t, env, &edited)
	assert.Equal(t, "completed", edited.State)
	assert.Equal(t, "forgot exit", edited.EditReason)

	status, _ = call(t, srv, http.MethodPatch, "/time-records/999", admin, map[string]string{"exit": "18:00", "reason": "x"})
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = call(t, srv, http.MethodGet, "/time-records/abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	for _, p := range []string{"/time-records", "/time-records/today", "/time-records/recent?limit=5", "/activities/recent"} {
		status, env = call(t, srv, http.MethodGet, p, admin, nil)
		require.Equal(t, http.StatusOK, status, p)
		var items []json.RawMessage
		decodeData(t, env, &items)
		assert.Len(t, items, 1, p)
	}

	status, env = call(t, srv, http.MethodGet, "/reports/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, status)
	var dash struct {
		ActiveEmployees int `json:"active_employees"`
		Completed       int `json:"completed"`
	}
	decodeData(t, env, &dash)
	assert.Equal(t, 1, dash.ActiveEmployees)
	assert.Equal(t, 1, dash.Completed)
}

func TestSchedulesAndReports(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, storage.DefaultAdminCPF, storage.DefaultAdminPassword)
	employeeID := createEmployee(t, srv, admin, "12345678901")
	emp := login(t, srv, "12345678901", "12345678901ponto")

	schedulePath := fmt.Sprintf("/work-schedules/%d", employeeID)
	status, _ := call(t, srv, http.MethodPut, schedulePath, admin, map[string]interface{}{
		"schedules": []map[string]interface{}{{"weekday": 9, "start_time": "09:00", "end_time": "18:00"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = call(t, srv, http.MethodPut, schedulePath, admin, map[string]interface{}{
		"schedules": []map[string]interface{}{
			{"weekday": 1, "start_time": "09:00", "end_time": "18:00", "break_start": "12:00", "break_end": "13:00"},
			{"weekday": 3, "start_time": "09:00", "end_time": "18:00"},
		},
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = call(t, srv, http.MethodPut, schedulePath, emp, map[string]interface{}{"schedules": []interface{}{}})
	assert.Equal(t, http.StatusForbidden, status)

	status, env := call(t, srv, http.MethodGet, "/work-schedules/me", emp, nil)
	require.Equal(t, http.StatusOK, status)
	var rows []struct {
		Weekday int `json:"weekday"`
	}
	decodeData(t, env, &rows)
	assert.Len(t, rows, 2)

	status, env = call(t, srv, http.MethodGet, "/reports/me/reconcile?from=2024-01-01&to=2024-01-07", emp, nil)
	require.Equal(t, http.StatusOK, status)
	var rec struct {
		Absent int `json:"absent"`
	}
	decodeData(t, env, &rec)
	// Monday 2024-01-01 and Wednesday 2024-01-03 were scheduled and never punched.
	assert.Equal(t, 2, rec.Absent)

	status, _ = call(t, srv, http.MethodGet, "/reports/me/reconcile?from=2024-01-07&to=2024-01-01", emp, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = call(t, srv, http.MethodGet, fmt.Sprintf("/reports/%d/bank", employeeID), admin, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, srv, http.MethodGet, "/reports/me/bank", emp, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = call(t, srv, http.MethodGet, fmt.Sprintf("/reports/%d/reconcile", employeeID), emp, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestChangePassword(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, storage.DefaultAdminCPF, storage.DefaultAdminPassword)
	employeeID := createEmployee(t, srv, admin, "12345678901")
	emp := login(t, srv, "12345678901", "12345678901ponto")

	status, _ := call(t, srv, http.MethodPost, "/auth/change-password", emp, map[string]string{
		"current_password": "12345678901ponto",
		"new_password":     "novasenha",
		"confirm_password": "novasenha",
	})
	require.Equal(t, http.StatusOK, status)
	login(t, srv, "12345678901", "novasenha")

	status, _ = call(t, srv, http.MethodPost, fmt.Sprintf("/employees/%d/reset-password", employeeID), admin, nil)
	require.Equal(t, http.StatusOK, status)
	login(t, srv, "12345678901", "12345678901ponto")

	status, env := call(t, srv, http.MethodPatch, fmt.Sprintf("/employees/%d/toggle-status", employeeID), admin, nil)
	require.Equal(t, http.StatusOK, status)
	var toggled struct {
		Active bool `json:"active"`
	}
	decodeData(t, env, &toggled)
	assert.False(t, toggled.Active)

	status, _ = call(t, srv, http.MethodPost, "/auth/login", "", map[string]string{"cpf": "12345678901", "password": "12345678901ponto"})
	assert.Equal(t, http.StatusForbidden, status)
}
