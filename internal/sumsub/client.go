package sumsub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production Sumsub API origin.
const DefaultBaseURL = "https://api.sumsub.com"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Client calls the Sumsub API. Each call is signed independently and there are no retries.
//
// A Client is safe for concurrent use; the only shared state is the immutable credentials held by the Signer.
type Client struct {
	baseURL    string
	signer     *Signer
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client. The client's timeout applies to every call.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for per-call debug logging.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit throttles outbound calls to requestsPerSecond. If requestsPerSecond <= 0, calls are not throttled.
func WithRateLimit(requestsPerSecond float64, burst int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// NewClient creates a client for the API at baseURL (scheme and host, e.g DefaultBaseURL).
func NewClient(baseURL string, signer *Signer, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		signer:     signer,
		httpClient: http.DefaultClient,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSessionLink requests a WebSDK verification link for the user.
//
//	POST /resources/sdkIntegrations/levels/{levelName}/websdkLink?externalUserId={externalUserID}
//
// The level name is path-escaped; the user id is sent verbatim as the query value.
func (c *Client) FetchSessionLink(ctx context.Context, levelName, externalUserID string) (*SessionLink, error) {
	path := fmt.Sprintf("/resources/sdkIntegrations/levels/%s/websdkLink?externalUserId=%s",
		url.PathEscape(levelName), externalUserID)

	body, status, err := c.do(ctx, http.MethodPost, path, nil, "")
	if err != nil {
		return nil, err
	}

	var link SessionLink
	if err := json.Unmarshal(body, &link); err != nil {
		return nil, WrapProtocolError(err, "failed to decode session link response", status)
	}
	if link.URL == "" {
		return nil, NewProtocolError("session link response has no url", status)
	}
	return &link, nil
}

// FetchUserStatus returns the applicant record for an external user id.
//
//	GET /resources/applicants/-;externalUserId={externalUserID}/one
func (c *Client) FetchUserStatus(ctx context.Context, externalUserID string) (*UserStatus, error) {
	path := fmt.Sprintf("/resources/applicants/-;externalUserId=%s/one", externalUserID)

	body, status, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, err
	}

	var us UserStatus
	if err := json.Unmarshal(body, &us); err != nil {
		return nil, WrapProtocolError(err, "failed to decode applicant response", status)
	}
	if us.ID == "" {
		return nil, NewProtocolError("applicant response has no id", status)
	}
	us.Raw = body
	return &us, nil
}

// ResetUser resets the applicant's verification state.
// internalUserID is the applicant id from UserStatus, not the external user id.
//
//	POST /resources/applicants/{internalUserID}/reset
func (c *Client) ResetUser(ctx context.Context, internalUserID string) (*ResetAck, error) {
	path := fmt.Sprintf("/resources/applicants/%s/reset", url.PathEscape(internalUserID))

	body, status, err := c.do(ctx, http.MethodPost, path, nil, "")
	if err != nil {
		return nil, err
	}

	ack := &ResetAck{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, ack); err != nil {
			return nil, WrapProtocolError(err, "failed to decode reset response", status)
		}
	}
	ack.Raw = body
	return ack, nil
}

// AddIDDocument uploads an identity document for an applicant as multipart/form-data
// (a "metadata" JSON field and a "content" file part).
//
//	POST /resources/applicants/{applicantID}/info/idDoc
func (c *Client) AddIDDocument(ctx context.Context, applicantID string, metadata IDDocMetadata, fileName string, content io.Reader) (*IDDocument, error) {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document metadata: %w", err)
	}

	payload, contentType, err := MultipartBody(
		MultipartPart{Name: "metadata", Content: bytes.NewReader(meta)},
		MultipartPart{Name: "content", FileName: fileName, Content: content},
	)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/resources/applicants/%s/info/idDoc", url.PathEscape(applicantID))

	body, status, err := c.do(ctx, http.MethodPost, path, payload, contentType)
	if err != nil {
		return nil, err
	}

	var doc IDDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, WrapProtocolError(err, "failed to decode document response", status)
	}
	doc.Raw = body
	return &doc, nil
}

// do signs and sends one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload []byte, contentType string) ([]byte, int, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, 0, WrapTransportError(err, "rate limit wait failed")
		}
	}

	signed := c.signer.Sign(method, path, payload)

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, signed.Method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, WrapTransportError(err, "failed to create request")
	}
	signed.Apply(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()

	// #nosec G704 -- base URL is from config and the path is built by this package
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, WrapTransportError(err, fmt.Sprintf("%s %s failed", signed.Method, stripQuery(path)))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, WrapTransportError(err, "failed to read response body")
	}

	c.logger.Debug("sumsub call",
		slog.String("method", signed.Method),
		slog.String("path", stripQuery(path)),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, classifyRejection(signed.Method, path, resp.StatusCode, body)
	}

	return body, resp.StatusCode, nil
}

// classifyRejection turns a non-2xx response into a remote rejection, or a protocol error if the
// body is not a JSON object carrying at least one provider error field.
func classifyRejection(method, path string, statusCode int, body []byte) error {
	msg := fmt.Sprintf("%s %s rejected", method, stripQuery(path))

	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		return NewProtocolError(msg+": error body is not a JSON object", statusCode)
	}

	var pe ProviderError
	if err := json.Unmarshal(body, &pe); err != nil {
		return WrapProtocolError(err, msg+": unparseable error body", statusCode)
	}
	if pe == (ProviderError{}) {
		return NewProtocolError(msg+": error body has no error fields", statusCode)
	}
	return NewRemoteRejection(msg, statusCode, json.RawMessage(body), &pe)
}

// stripQuery drops the query string so user ids in query values are not repeated in messages.
func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}
