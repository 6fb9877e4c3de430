package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrNoRelevantData is returned when the backend reports that no indexed
// content matched the query (a 404 from any query endpoint). Callers
// surface it as a fixed fallback message rather than a raw error.
var ErrNoRelevantData = errors.New("no relevant data found")

// Endpoint names a route on the retrieval backend
type Endpoint string

// Fixed set of backend endpoints
const (
	EndpointFinancialAssessment Endpoint = "/get_financial_assessment"
	EndpointGoalSetting         Endpoint = "/get_goal_setting"
	EndpointTaxPlanning         Endpoint = "/get_tax_planning"
	EndpointBudgeting           Endpoint = "/get_budgeting"
	EndpointRetirementPlanning  Endpoint = "/get_retirement_planning"
	EndpointMonitoring          Endpoint = "/get_monitoring"
	EndpointOpenQuery           Endpoint = "/rag_query"
	EndpointGptQuery            Endpoint = "/gpt_query"
	EndpointCustomQuery         Endpoint = "/rag_query_custom"

	endpointIngest         Endpoint = "/ingest_pdfs"
	endpointDeletePrevious Endpoint = "/delete_previous_file"
)

// Scope classifies an uploaded document's visibility
type Scope string

const (
	ScopeUser    Scope = "User"
	ScopePublic  Scope = "Public"
	ScopePrivate Scope = "Private"
)

// Client wraps calls to the retrieval backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a backend client with the default request timeout
func NewClient(baseURL string) *Client {
	return NewClientWithTimeout(baseURL, 120*time.Second)
}

// NewClientWithTimeout creates a backend client with a bounded request
// timeout. A timed-out request fails the same way any backend failure does.
func NewClientWithTimeout(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// QueryRequest is the payload accepted by every query endpoint
type QueryRequest struct {
	Query        string `json:"query"`
	CustomerName string `json:"customer_name,omitempty"`
	Context      string `json:"context,omitempty"`
	CustomPrompt string `json:"customPrompt,omitempty"`
}

// Source is a citation attached to a backend answer. The metadata mapping
// is opaque beyond the optional screenshot URL.
type Source struct {
	Metadata map[string]string `json:"metadata"`
}

// ScreenshotURL returns the source's screenshot URL, or "" if absent
func (s Source) ScreenshotURL() string {
	return s.Metadata["screenshot_url"]
}

// QueryResponse is the answer returned by the query endpoints
type QueryResponse struct {
	Response     string   `json:"response"`
	Sources      []Source `json:"sources,omitempty"`
	RebuiltQuery string   `json:"rebuilt_query,omitempty"`
}

// Query sends a query payload to the named endpoint. A 404 status maps to
// ErrNoRelevantData; a cancelled context surfaces as context.Canceled
// through the returned error.
func (c *Client) Query(ctx context.Context, endpoint Endpoint, req *QueryRequest) (*QueryResponse, error) {
	var out QueryResponse
	if err := c.doJSON(ctx, http.MethodPost, endpoint, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IngestRequest describes a document upload
type IngestRequest struct {
	File         io.Reader
	Filename     string
	Scope        Scope
	CustomerName string // set for ScopeUser uploads
	PrivateName  string // required for ScopePrivate uploads
	CustomPrompt string
}

// IngestResponse is returned by the ingestion and deletion endpoints
type IngestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// IngestDocument uploads a document to the backend as a multipart form
func (c *Client) IngestDocument(ctx context.Context, req *IngestRequest) (*IngestResponse, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return nil, fmt.Errorf("failed to copy file contents: %w", err)
	}

	fields := map[string]string{
		"indexType":    string(req.Scope),
		"customerName": req.CustomerName,
		"privateName":  req.PrivateName,
		"customPrompt": req.CustomPrompt,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", key, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize form: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+string(endpointIngest), &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out IngestResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode ingest response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("ingest failed: %d: %s", resp.StatusCode, out.Message)
	}

	return &out, nil
}

// DeletePreviousDocument asks the backend to drop a customer's previously
// ingested document. Used as a best-effort cleanup before User-scope
// uploads.
func (c *Client) DeletePreviousDocument(ctx context.Context, customerName string, scope Scope) (*IngestResponse, error) {
	payload := map[string]string{
		"customer_name": customerName,
		"index_type":    string(scope),
	}

	var out IngestResponse
	if err := c.doJSON(ctx, http.MethodPost, endpointDeletePrevious, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// doJSON is a helper to perform JSON requests against the backend
func (c *Client) doJSON(ctx context.Context, method string, endpoint Endpoint, in any, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+string(endpoint), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNoRelevantData
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// On error, read body and return error
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("[RAG]: backend '%s %s' failed: %d: %s", method, endpoint, resp.StatusCode, string(b))
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
