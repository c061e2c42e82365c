// Package api implements the typed client for the MoneyMate REST
// backend. Each method performs exactly one request and either returns
// a parsed result or fails with a *RequestError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"moneymate/internal/core"
)

// SessionStore is the slice of the session layer the client needs: the
// current user for payload attribution and persistence after auth.
type SessionStore interface {
	Current() *core.User
	Save(user core.User) error
}

type Client struct {
	baseURL  string
	http     *http.Client
	sessions SessionStore
}

// CreateResult is the backend envelope for transaction creation.
type CreateResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId,omitempty"`
	Error         string `json:"error,omitempty"`
}

// DeleteResult is the backend envelope for transaction deletion.
type DeleteResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuthResult is the backend envelope for login and user initialization.
type AuthResult struct {
	Success        bool       `json:"success"`
	UserID         string     `json:"userId,omitempty"`
	Username       string     `json:"username,omitempty"`
	Email          string     `json:"email,omitempty"`
	InitialBalance core.Money `json:"initialBalance,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// User builds the session record this result describes.
func (r AuthResult) User() core.User {
	return core.User{
		ID:             r.UserID,
		Username:       r.Username,
		Email:          r.Email,
		InitialBalance: r.InitialBalance,
	}
}

// NewClient creates a client for the backend at baseURL. sessions may
// be nil for callers that never authenticate (e.g. the worker).
func NewClient(baseURL string, timeout time.Duration, sessions SessionStore) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		sessions: sessions,
	}
}

// ListTransactions fetches the full transaction list.
func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var txs []core.Transaction
	if err := c.get(ctx, "/transactions", &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// CreateTransaction posts a new transaction. The current session's user
// identifier is attached to the payload when a session exists.
func (c *Client) CreateTransaction(ctx context.Context, in core.TransactionInput) (CreateResult, error) {
	if c.sessions != nil {
		if user := c.sessions.Current(); user != nil {
			in.UserID = user.ID
		}
	}
	var result CreateResult
	if err := c.post(ctx, "/transactions", in, &result); err != nil {
		return CreateResult{}, err
	}
	if !result.Success {
		return CreateResult{}, &RequestError{Status: http.StatusOK, Message: result.Error}
	}
	return result, nil
}

// DeleteTransaction removes a transaction by identifier.
func (c *Client) DeleteTransaction(ctx context.Context, id string) (DeleteResult, error) {
	req, err := c.newRequest(ctx, http.MethodDelete, "/transactions/"+url.PathEscape(id), nil)
	if err != nil {
		return DeleteResult{}, err
	}
	var result DeleteResult
	if err := c.do(req, &result); err != nil {
		return DeleteResult{}, err
	}
	if !result.Success {
		return DeleteResult{}, &RequestError{Status: http.StatusOK, Message: result.Error}
	}
	return result, nil
}

// GetBalance fetches the aggregate balance.
func (c *Client) GetBalance(ctx context.Context) (core.Balance, error) {
	var balance core.Balance
	if err := c.get(ctx, "/balance", &balance); err != nil {
		return core.Balance{}, err
	}
	return balance, nil
}

// GetCategories fetches the income/expense category catalog.
func (c *Client) GetCategories(ctx context.Context) (core.CategorySet, error) {
	var cats core.CategorySet
	if err := c.get(ctx, "/categories", &cats); err != nil {
		return core.CategorySet{}, err
	}
	return cats, nil
}

// GetMonthlyReport fetches the backend-computed report for a "YYYY-MM"
// month key.
func (c *Client) GetMonthlyReport(ctx context.Context, month string) (core.MonthlyReport, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.MonthlyReport{}, err
	}
	var report core.MonthlyReport
	if err := c.get(ctx, "/report/"+url.PathEscape(month), &report); err != nil {
		return core.MonthlyReport{}, err
	}
	if report.Month == "" {
		report.Month = month
	}
	return report, nil
}

// InitUser registers or initializes a user profile server-side.
func (c *Client) InitUser(ctx context.Context, in core.RegisterInput) (AuthResult, error) {
	var result AuthResult
	if err := c.post(ctx, "/init", in, &result); err != nil {
		return AuthResult{}, err
	}
	return result, nil
}

// Login authenticates against the backend and, on success, persists the
// session record for restoration on the next start.
func (c *Client) Login(ctx context.Context, username, password string) (core.User, error) {
	payload := map[string]string{"username": username, "password": password}
	var result AuthResult
	if err := c.post(ctx, "/login", payload, &result); err != nil {
		return core.User{}, err
	}
	if !result.Success {
		return core.User{}, &RequestError{Status: http.StatusOK, Message: result.Error}
	}
	user := result.User()
	if c.sessions != nil {
		if err := c.sessions.Save(user); err != nil {
			return core.User{}, fmt.Errorf("persist session: %w", err)
		}
	}
	return user, nil
}

// Register creates a user via the init endpoint and persists the
// session record on success.
func (c *Client) Register(ctx context.Context, in core.RegisterInput) (core.User, error) {
	result, err := c.InitUser(ctx, in)
	if err != nil {
		return core.User{}, err
	}
	if !result.Success {
		return core.User{}, &RequestError{Status: http.StatusOK, Message: result.Error}
	}
	user := result.User()
	if user.Username == "" {
		user.Username = in.Username
	}
	if user.Email == "" {
		user.Email = in.Email
	}
	if c.sessions != nil {
		if err := c.sessions.Save(user); err != nil {
			return core.User{}, fmt.Errorf("persist session: %w", err)
		}
	}
	return user, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}

// readError extracts the backend-supplied message from an error body,
// when one exists.
func readError(resp *http.Response) error {
	reqErr := &RequestError{Status: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return reqErr
	}
	var envelope struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Error != "" {
			reqErr.Message = envelope.Error
		} else if envelope.Message != "" {
			reqErr.Message = envelope.Message
		}
	}
	return reqErr
}
