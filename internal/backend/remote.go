package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/staff-admin/internal/config"
	"github.com/spec-kit/staff-admin/internal/domain"
	"github.com/spec-kit/staff-admin/internal/observability"
	apperrors "github.com/spec-kit/staff-admin/pkg/util"
)

type apiError struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type unitListResponse struct {
	Data []domain.Unit `json:"data"`
}

// Client talks JSON over HTTP to the remote staff API.
type Client struct {
	baseURL         *url.URL
	httpClient      *http.Client
	requestIDHeader string
	metrics         *observability.Metrics
	logger          *zap.Logger
}

var _ Backend = (*Client)(nil)

// NewClient validates the base URL and builds a client.
func NewClient(cfg config.BackendConfig, metrics *observability.Metrics, logger *zap.Logger) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid backend base url: %q", baseURL)
	}
	return &Client{
		baseURL:         u,
		httpClient:      &http.Client{Timeout: cfg.Timeout()},
		requestIDHeader: cfg.RequestIDHeader,
		metrics:         metrics,
		logger:          logger,
	}, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	err := c.doJSON(ctx, "login", http.MethodPost, "/auth/login", nil, "", loginRequest{Username: username, Password: password}, &out)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeUnauthorized) || apperrors.HasCode(err, apperrors.CodeValidation) || apperrors.HasCode(err, apperrors.CodeNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("login: empty token in response")
	}
	return out.Token, nil
}

func (c *Client) ListUnits(ctx context.Context, token string) ([]domain.Unit, error) {
	var out unitListResponse
	if err := c.doJSON(ctx, "list_units", http.MethodGet, "/units", nil, token, nil, &out); err != nil {
		return nil, err
	}
	if out.Data == nil {
		out.Data = []domain.Unit{}
	}
	return out.Data, nil
}

func (c *Client) GetStaff(ctx context.Context, token, id string) (*domain.StaffRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.NewNotFound("staff", nil)
	}
	var out domain.StaffRecord
	if err := c.doJSON(ctx, "get_staff", http.MethodGet, "/staffs/"+url.PathEscape(id), nil, token, nil, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		out.ID = id
	}
	return &out, nil
}

func (c *Client) CreateStaff(ctx context.Context, token string, record domain.StaffRecord) error {
	record.ID = ""
	return c.doJSON(ctx, "create_staff", http.MethodPost, "/staffs", nil, token, record, nil)
}

func (c *Client) UpdateStaff(ctx context.Context, token string, record domain.StaffRecord) error {
	if record.ID == "" {
		return apperrors.NewValidationError("staff id is required", nil)
	}
	return c.doJSON(ctx, "update_staff", http.MethodPut, "/staffs/"+url.PathEscape(record.ID), nil, token, record, nil)
}

func (c *Client) ListStaff(ctx context.Context, token string, page, limit int) (*domain.StaffPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	var out domain.StaffPage
	if err := c.doJSON(ctx, "list_staff", http.MethodGet, "/staffs", q, token, nil, &out); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []domain.StaffRecord{}
	}
	out.Page = page
	out.Limit = limit
	return &out, nil
}

// Ping checks that the staff API answers at all; any HTTP response counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUpstreamUnavailable(err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, query url.Values, token string, reqBody, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.metrics.RecordBackendCall(op, outcome, time.Since(start))
	}()

	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("json marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.requestIDHeader != "" {
		requestID := observability.RequestID(ctx)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		req.Header.Set(c.requestIDHeader, requestID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		c.logger.Warn("staff api unreachable", zap.String("op", op), zap.Error(err))
		return apperrors.NewUpstreamUnavailable(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUpstreamUnavailable(fmt.Errorf("http read: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		_ = json.Unmarshal(respBody, &apiErr)
		c.logger.Info("staff api rejected request",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", apiErr.Message),
		)
		return apperrors.NewUpstreamError(resp.StatusCode, strings.TrimSpace(apiErr.Message))
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperrors.NewUpstreamError(http.StatusBadGateway, fmt.Sprintf("decode %s response: %v", op, err))
	}
	return nil
}
