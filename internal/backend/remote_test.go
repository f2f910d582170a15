package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/config"
	"github.com/spec-kit/staff-admin/internal/domain"
	"github.com/spec-kit/staff-admin/internal/observability"
	apperrors "github.com/spec-kit/staff-admin/pkg/util"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *observability.Metrics) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	metrics := observability.NewMetrics("test")
	client, err := NewClient(config.BackendConfig{BaseURL: srv.URL + "/api", TimeoutSeconds: 5, RequestIDHeader: "X-Request-ID"}, metrics, zap.NewNop())
	require.NoError(t, err)
	return client, metrics
}

func TestNewClientRejectsInvalidURL(t *testing.T) {
	_, err := NewClient(config.BackendConfig{BaseURL: "not a url"}, nil, zap.NewNop())
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Username == "admin" && body.Password == "secret" {
			_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "bad credentials"})
	})

	token, err := client.Login(context.Background(), "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	_, err = client.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestListUnitsAndGetStaff(t *testing.T) {
	client, metrics := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/api/units":
			_, _ = w.Write([]byte(`{"data":[{"_id":"u1","name":"Khoa CNTT"}]}`))
		case "/api/staffs/s1":
			_, _ = w.Write([]byte(`{"_id":"s1","mscb":"CB001","name":"Nguyễn Văn A","gender":"male","isPermanent":true,
				"dateOfBirth":"1990-05-17T00:00:00.000Z","unit":{"_id":"u1","name":"Khoa CNTT"},"qualificationCode":"Tiến sĩ"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Staff not found"}`))
		}
	})
	ctx := context.Background()

	units, err := client.ListUnits(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, []domain.Unit{{ID: "u1", Name: "Khoa CNTT"}}, units)

	record, err := client.GetStaff(ctx, "tok", "s1")
	require.NoError(t, err)
	assert.Equal(t, "CB001", record.MSCB)
	assert.Equal(t, "u1", record.Unit.ID)
	assert.Equal(t, domain.QualificationDoctor, record.QualificationCode)
	assert.Equal(t, "05/17/1990", record.DateOfBirth.FormValue())

	_, err = client.GetStaff(ctx, "tok", "missing")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	assert.Equal(t, "Staff not found", apperrors.ToDomainError(err).Message)

	// list_units/ok, get_staff/ok and get_staff/error
	count, err := testutil.GatherAndCount(metrics.Registry(), "test_backend_call_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCreateAndUpdateStaff(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotBody = map[string]any{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		if gotBody["mscb"] == "DUP" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"mscb already exists"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	ctx := context.Background()
	record := domain.StaffRecord{
		MSCB:              "CB002",
		Name:              "Trần Thị B",
		Gender:            domain.GenderFemale,
		DateOfBirth:       domain.NewDate(1985, 1, 2),
		Unit:              domain.UnitRef{ID: "u1", Name: "Khoa CNTT"},
		QualificationCode: domain.QualificationMaster,
	}

	require.NoError(t, client.CreateStaff(ctx, "tok", record))
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/staffs", gotPath)
	assert.Equal(t, "u1", gotBody["unit"])
	assert.Equal(t, "1985-01-02", gotBody["dateOfBirth"])
	assert.NotContains(t, gotBody, "_id")

	record.ID = "s2"
	require.NoError(t, client.UpdateStaff(ctx, "tok", record))
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/staffs/s2", gotPath)

	record.MSCB = "DUP"
	err := client.UpdateStaff(ctx, "tok", record)
	require.Error(t, err)
	assert.Equal(t, "mscb already exists", apperrors.ToDomainError(err).Message)

	record.ID = ""
	assert.Error(t, client.UpdateStaff(ctx, "tok", record))
}

func TestListStaff(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"data":[{"_id":"s1","mscb":"CB001","name":"A","unit":"u1","dateOfBirth":"1990-01-01"}],"total":21}`))
	})

	page, err := client.ListStaff(context.Background(), "tok", 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 21, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u1", page.Items[0].Unit.ID)
}

func TestUnreachableBackend(t *testing.T) {
	client, err := NewClient(config.BackendConfig{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1}, nil, zap.NewNop())
	require.NoError(t, err)

	_, err = client.ListUnits(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUpstreamUnavailable))
	assert.Error(t, client.Ping(context.Background()))
}
