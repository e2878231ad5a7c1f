package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/DataDog/jsonapi"
	"github.com/gorilla/schema"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/leg100/console/internal"
	"github.com/leg100/console/internal/logr"
)

const (
	// DefaultURL is the default URL of the console API.
	DefaultURL = "http://localhost:8080"

	// WorkspaceHeader names the request header that selects the workspace.
	WorkspaceHeader = "X-Console-Workspace"

	mediaType = "application/vnd.api+json"
)

// Encoder encodes structs into query parameters.
var Encoder = schema.NewEncoder()

type (
	Client struct {
		baseURL *url.URL
		headers http.Header
		http    *retryablehttp.Client
	}

	// ClientConfig provides configuration details to the API client.
	ClientConfig struct {
		// The URL of the console.
		URL string
		// Workspace slug to which requests are scoped.
		Workspace string
		// API token, sent as a bearer token if non-empty.
		Token string
		// Headers that will be added to every request.
		Headers http.Header
		// Toggle retrying requests upon encountering transient errors.
		RetryRequests bool
		// Override default http transport
		Transport http.RoundTripper
		// Logger for logging an error upon retry
		Logger logr.Logger
	}
)

func NewClient(config ClientConfig) (*Client, error) {
	// set defaults
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Headers == nil {
		config.Headers = make(http.Header)
	}
	if config.Transport == nil {
		config.Transport = http.DefaultTransport
	}
	config.Headers.Set("User-Agent", "console-cli/"+internal.Version)
	if config.Workspace != "" {
		config.Headers.Set(WorkspaceHeader, config.Workspace)
	}
	if config.Token != "" {
		config.Headers.Set("Authorization", "Bearer "+config.Token)
	}

	u, err := internal.NewWebURL(config.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	baseURL := u.URL
	baseURL.Path = path.Join(baseURL.Path, APIPrefix)
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}

	client := &Client{
		baseURL: baseURL,
		headers: config.Headers,
	}
	client.http = &retryablehttp.Client{
		Backoff:      retryablehttp.DefaultBackoff,
		ErrorHandler: retryablehttp.PassthroughErrorHandler,
		HTTPClient:   &http.Client{Transport: config.Transport},
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 30 * time.Second,
		RetryMax:     30,
	}
	if config.RetryRequests {
		client.http.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
			retry, retryErr := retryablehttp.ErrorPropagatedRetryPolicy(ctx, resp, err)
			if retry {
				if retryErr != nil {
					err = retryErr
				}
				// The http response is nil when there is a problem with the
				// request and there is no response, e.g. socket timeout.
				if resp != nil && resp.Request != nil {
					config.Logger.Error(err, "retrying request", "url", resp.Request.URL, "status", resp.StatusCode)
				} else {
					config.Logger.Error(err, "retrying request")
				}
			}
			return retry, retryErr
		}
	} else {
		client.http.CheckRetry = func(_ context.Context, _ *http.Response, err error) (bool, error) {
			return false, err
		}
	}
	return client, nil
}

// Hostname returns the server host:port.
func (c *Client) Hostname() string {
	return c.baseURL.Host
}

// NewRequest creates an API request. A relative path is resolved relative to
// the API base URL.
//
// If v is supplied then for GET requests it is encoded as query parameters,
// for PUT requests it is sent as the raw body, and otherwise it is encoded as
// JSON:API if it carries jsonapi tags, or as plain JSON if not.
func (c *Client) NewRequest(method, path string, v any) (*retryablehttp.Request, error) {
	u, err := c.baseURL.Parse(path)
	if err != nil {
		return nil, err
	}

	reqHeaders := make(http.Header)

	var body any
	switch method {
	case "GET":
		reqHeaders.Set("Accept", mediaType)

		if v != nil {
			q := url.Values{}
			if err := Encoder.Encode(v, q); err != nil {
				return nil, err
			}
			u.RawQuery = q.Encode()
		}
	case "DELETE", "PATCH", "POST":
		reqHeaders.Set("Accept", mediaType)
		reqHeaders.Set("Content-Type", mediaType)

		if v != nil {
			if body, err = serializeRequestBody(v); err != nil {
				return nil, err
			}
		}
	case "PUT":
		reqHeaders.Set("Accept", "application/json")
		reqHeaders.Set("Content-Type", "application/octet-stream")
		body = v
	}

	req, err := retryablehttp.NewRequest(method, u.String(), body)
	if err != nil {
		return nil, err
	}
	maps.Copy(req.Header, c.headers)
	maps.Copy(req.Header, reqHeaders)

	return req, nil
}

// serializeRequestBody serializes the given ptr or ptr slice, using jsonapi
// if the type carries jsonapi tags, otherwise plain json.
func serializeRequestBody(v any) (any, error) {
	var modelType reflect.Type
	bodyType := reflect.TypeOf(v)
	invalidBodyError := errors.New("DELETE/PATCH/POST body must be nil, ptr, or ptr slice")
	switch bodyType.Kind() {
	case reflect.Slice:
		sliceElem := bodyType.Elem()
		if sliceElem.Kind() != reflect.Pointer {
			return nil, invalidBodyError
		}
		modelType = sliceElem.Elem()
	case reflect.Pointer:
		modelType = reflect.ValueOf(v).Elem().Type()
	default:
		return nil, invalidBodyError
	}
	if modelType.Kind() != reflect.Struct {
		return json.Marshal(v)
	}

	for structField := range modelType.Fields() {
		if structField.Tag.Get("jsonapi") != "" {
			return jsonapi.Marshal(v, jsonapi.MarshalClientMode())
		}
	}
	return json.Marshal(v)
}

// Do sends an API request and returns the API response. The API response
// is JSONAPI decoded and the document's primary data is stored in the value
// pointed to by v, or returned as an error if an API error has occurred.
//
// If v implements the io.Writer interface, the raw response body will be
// written to v, without attempting to first decode it.
func (c *Client) Do(ctx context.Context, req *retryablehttp.Request, v any) error {
	req = req.WithContext(ctx)

	resp, err := c.http.Do(req)
	if err != nil {
		// If we got an error, and the context has been canceled,
		// the context's error is probably more useful.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			return err
		}
	}
	defer resp.Body.Close()

	if err := checkResponseCode(resp); err != nil {
		return err
	}

	if v == nil {
		return nil
	}

	if w, ok := v.(io.Writer); ok {
		_, err = io.Copy(w, resp.Body)
		return err
	}

	if err := unmarshalResponse(resp.Body, v); err != nil {
		return fmt.Errorf("unmarshalling response: %w", err)
	}
	return nil
}

func unmarshalResponse(r io.Reader, v any) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	dst := reflect.Indirect(reflect.ValueOf(v))

	if dst.Kind() == reflect.Slice {
		return jsonapi.Unmarshal(b, v)
	}
	if dst.Kind() != reflect.Struct {
		return fmt.Errorf("v must be a struct, slice or an io.Writer")
	}

	// Try to get the Items and Pagination struct fields.
	items := dst.FieldByName("Items")
	pagination := dst.FieldByName("Pagination")

	// Unmarshal a single value if v does not contain the
	// Items and Pagination struct fields.
	if !items.IsValid() || !pagination.IsValid() {
		return jsonapi.Unmarshal(b, v)
	}
	if items.Type().Kind() != reflect.Slice {
		return fmt.Errorf("v.Items must be a slice")
	}
	return jsonapi.Unmarshal(b, items.Addr().Interface(), jsonapi.UnmarshalMeta(pagination.Addr().Interface()))
}

// APIError is returned when the API responds with an error status. It wraps
// the domain error corresponding to the status, if there is one.
type APIError struct {
	Status int
	Err    error
	// Details from the JSON:API error document, if any.
	Details []string
}

func (e *APIError) Error() string {
	msg := http.StatusText(e.Status)
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

// statusErrors maps response status codes to domain errors.
var statusErrors = map[int]error{
	http.StatusUnauthorized:          internal.ErrUnauthorized,
	http.StatusForbidden:             internal.ErrAccessNotPermitted,
	http.StatusNotFound:              internal.ErrResourceNotFound,
	http.StatusRequestTimeout:        internal.ErrTimeout,
	http.StatusGatewayTimeout:        internal.ErrTimeout,
	http.StatusConflict:              internal.ErrConflict,
	http.StatusRequestEntityTooLarge: internal.ErrUploadTooLarge,
}

// checkResponseCode returns an *APIError if the response status is not 2xx.
func checkResponseCode(r *http.Response) error {
	if r.StatusCode >= 200 && r.StatusCode <= 299 {
		return nil
	}
	return &APIError{
		Status:  r.StatusCode,
		Err:     statusErrors[r.StatusCode],
		Details: errorDetails(r.Body),
	}
}

// errorDetails reads the details of an error in JSON:API format from the
// reader. Nil is returned if the reader does not contain such an error.
func errorDetails(r io.Reader) []string {
	var payload struct {
		Errors []*jsonapi.Error `json:"errors"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil
	}
	var details []string
	for _, e := range payload.Errors {
		if e.Detail == "" {
			details = append(details, e.Title)
		} else {
			details = append(details, fmt.Sprintf("%s: %s", e.Title, e.Detail))
		}
	}
	return details
}
