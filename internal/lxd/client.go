package lxd

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexisbeaulieu97/lxsync/internal/logger"
)

// DefaultSocketURL is the classic LXD unix socket endpoint.
const DefaultSocketURL = "unix:/var/lib/lxd/unix.socket"

// SnapSocketPath is where snap-packaged LXD exposes its socket.
const SnapSocketPath = "/var/snap/lxd/common/lxd/unix.socket"

// ServerConfig carries everything needed to reach one LXD server.
type ServerConfig struct {
	// URL is either "unix:<path>" or an https URL.
	URL string
	// ClientCert and ClientKey are PEM file paths, used for https URLs only.
	ClientCert string
	ClientKey  string
	// InstancesEndpoint selects /instances (default) or /containers for
	// LXD versions predating the instances API.
	InstancesEndpoint string
}

// Client talks to a single LXD server. All methods block until the server
// has fully applied the request: async operations are waited on before
// returning.
type Client struct {
	httpClient *http.Client
	baseURL    string
	endpoint   string
	log        *logger.Logger
}

// New builds a Client from ServerConfig. Unix socket URLs get a dedicated
// dialer; https URLs load the client certificate pair and skip server
// verification (LXD servers use self-signed certificates, trust is
// established through the client certificate).
func New(cfg ServerConfig, log *logger.Logger) (*Client, error) {
	endpoint := cfg.InstancesEndpoint
	if endpoint == "" {
		endpoint = "/instances"
	}

	c := &Client{
		endpoint: "/1.0" + endpoint,
		log:      log,
	}

	switch {
	case strings.HasPrefix(cfg.URL, "unix:"):
		socketPath := strings.TrimPrefix(cfg.URL, "unix:")
		socketPath = strings.TrimPrefix(socketPath, "//")
		c.baseURL = "http://lxd"
		c.httpClient = &http.Client{
			Timeout: 0,
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
					var d net.Dialer
					return d.DialContext(ctx, "unix", socketPath)
				},
			},
		}
	case strings.HasPrefix(cfg.URL, "https://"):
		tlsConfig := &tls.Config{InsecureSkipVerify: true}
		if cfg.ClientCert != "" || cfg.ClientKey != "" {
			cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
			if err != nil {
				return nil, &TransportError{Op: "load client certificate", Err: err}
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}
		c.baseURL = strings.TrimRight(cfg.URL, "/")
		c.httpClient = &http.Client{
			Timeout:   0,
			Transport: &http.Transport{TLSClientConfig: tlsConfig},
		}
	default:
		return nil, &TransportError{Op: "parse server url", Err: fmt.Errorf("unsupported url %q", cfg.URL)}
	}

	return c, nil
}

// response is the LXD API envelope common to every endpoint.
type response struct {
	Type       string          `json:"type"`
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Operation  string          `json:"operation"`
	ErrorCode  int             `json:"error_code"`
	Error      string          `json:"error"`
	Metadata   json.RawMessage `json:"metadata"`
}

// operationResult is the metadata of a finished background operation.
type operationResult struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Err        string `json:"err"`
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*response, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, &TransportError{Op: "encode request", Err: err}
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.WithFields(map[string]any{"method": method, "path": path}).Debug("lxd request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}

	c.log.WithFields(map[string]any{
		"method":   method,
		"path":     path,
		"type":     envelope.Type,
		"duration": time.Since(start).String(),
	}).Debug("lxd response")

	switch envelope.Type {
	case "error":
		code := envelope.ErrorCode
		if code == 0 {
			code = resp.StatusCode
		}
		return nil, &APIError{Code: code, Message: envelope.Error}
	case "async":
		return c.waitOperation(ctx, envelope.Operation)
	default:
		return &envelope, nil
	}
}

// waitOperation blocks until the background operation finishes. The wait is
// bounded only by ctx; the state-change timeout itself is enforced server
// side through the request body.
func (c *Client) waitOperation(ctx context.Context, operation string) (*response, error) {
	envelope, err := c.do(ctx, http.MethodGet, operation+"/wait", nil)
	if err != nil {
		return nil, err
	}

	var result operationResult
	if err := json.Unmarshal(envelope.Metadata, &result); err != nil {
		return nil, &TransportError{Op: "decode operation result", Err: err}
	}
	if result.Err != "" || result.StatusCode >= 400 {
		return nil, &APIError{Code: result.StatusCode, Message: operationMessage(result)}
	}
	return envelope, nil
}

func operationMessage(result operationResult) string {
	if result.Err != "" {
		return result.Err
	}
	return result.Status
}

// GetInstance fetches the instance metadata document. A missing instance is
// reported as an *APIError for which IsNotFound returns true.
func (c *Client) GetInstance(ctx context.Context, name string) (*Instance, error) {
	envelope, err := c.do(ctx, http.MethodGet, c.instancePath(name), nil)
	if err != nil {
		return nil, err
	}

	var inst Instance
	if err := json.Unmarshal(envelope.Metadata, &inst); err != nil {
		return nil, &TransportError{Op: "decode instance", Err: err}
	}
	return &inst, nil
}

// GetInstanceState fetches the runtime state document, including per-device
// network addresses.
func (c *Client) GetInstanceState(ctx context.Context, name string) (*InstanceState, error) {
	envelope, err := c.do(ctx, http.MethodGet, c.instancePath(name)+"/state", nil)
	if err != nil {
		return nil, err
	}

	var state InstanceState
	if err := json.Unmarshal(envelope.Metadata, &state); err != nil {
		return nil, &TransportError{Op: "decode instance state", Err: err}
	}
	return &state, nil
}

// CreateInstance creates a new instance. A non-empty target scopes creation
// to one cluster member.
func (c *Client) CreateInstance(ctx context.Context, req CreateRequest, target string) error {
	path := c.endpoint
	if target != "" {
		path += "?" + url.Values{"target": []string{target}}.Encode()
	}
	_, err := c.do(ctx, http.MethodPost, path, req)
	return err
}

// UpdateInstance replaces the instance's mutable attributes.
func (c *Client) UpdateInstance(ctx context.Context, name string, attrs InstanceAttributes) error {
	_, err := c.do(ctx, http.MethodPut, c.instancePath(name), attrs)
	return err
}

// DeleteInstance removes the instance permanently.
func (c *Client) DeleteInstance(ctx context.Context, name string) error {
	_, err := c.do(ctx, http.MethodDelete, c.instancePath(name), nil)
	return err
}

// ChangeInstanceState applies a lifecycle verb (start, stop, restart,
// freeze, unfreeze) and waits for the resulting operation.
func (c *Client) ChangeInstanceState(ctx context.Context, name string, change StateChange) error {
	_, err := c.do(ctx, http.MethodPut, c.instancePath(name)+"/state", change)
	return err
}

// Authenticate registers this client's certificate using the server's trust
// password.
func (c *Client) Authenticate(ctx context.Context, password string) error {
	body := map[string]string{"type": "client", "password": password}
	_, err := c.do(ctx, http.MethodPost, "/1.0/certificates", body)
	return err
}

func (c *Client) instancePath(name string) string {
	return c.endpoint + "/" + url.PathEscape(name)
}
