package client

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/libreclinica/api-gateway/internal/config"
)

// Client wraps the legacy LibreClinica SOAP web services. Instances are
// stateless per call; the configured URL and credentials are read-only.
type Client struct {
	httpClient *http.Client
	config     *config.SOAPConfig
	logger     *logrus.Logger
}

// NewClient creates a new SOAP client instance
func NewClient(cfg *config.SOAPConfig, logger *logrus.Logger) *Client {
	timeout := 30 * time.Second
	if cfg.Timeout > 0 {
		timeout = cfg.Timeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		config: cfg,
		logger: logger,
	}
}

// IsEnabled reports whether the SOAP path is configured and switched on
func (c *Client) IsEnabled() bool {
	return c.config.Enabled && c.config.BaseURL != ""
}

// responseEnvelope captures the body of a SOAP 1.1 response. The inner
// payload is kept raw and decoded by the caller into its typed result.
type responseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault   *soapFault `xml:"Fault"`
		Payload []byte     `xml:",innerxml"`
	} `xml:"Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	Reason string `xml:"faultstring"`
}

// call performs one SOAP round-trip: it wraps body in a SOAP 1.1 envelope
// carrying a WS-Security UsernameToken header, posts it to the service
// endpoint, and decodes the response payload into out. A transport error,
// a SOAP fault, or a non-2xx status all surface as errors; classifying the
// failure is the hybrid services' concern, not the client's.
func (c *Client) call(ctx context.Context, service, action, body string, out interface{}) error {
	endpoint := strings.TrimRight(c.config.BaseURL, "/") + "/ws/" + service + "/v1"

	envelope := c.buildEnvelope(body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBufferString(envelope))
	if err != nil {
		return fmt.Errorf("failed to create soap request: %w", err)
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", action)

	c.logger.WithFields(logrus.Fields{
		"service": service,
		"action":  action,
	}).Debug("Calling legacy SOAP service")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)

	if err != nil {
		return fmt.Errorf("soap call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read soap response: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"service":    service,
		"action":     action,
		"statusCode": resp.StatusCode,
		"duration":   duration,
	}).Debug("SOAP response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("soap endpoint returned status %d: %s", resp.StatusCode, truncate(string(respBody), 512))
	}

	var env responseEnvelope
	if err := xml.Unmarshal(respBody, &env); err != nil {
		return fmt.Errorf("failed to unmarshal soap envelope: %w", err)
	}

	if env.Body.Fault != nil {
		return fmt.Errorf("soap fault %s: %s", env.Body.Fault.Code, env.Body.Fault.Reason)
	}

	if out != nil {
		if err := xml.Unmarshal(env.Body.Payload, out); err != nil {
			return fmt.Errorf("failed to unmarshal soap payload: %w", err)
		}
	}

	return nil
}

// buildEnvelope assembles the SOAP 1.1 envelope. LibreClinica expects a
// WS-Security UsernameToken whose password is the SHA-1 hex digest of the
// account password.
func (c *Client) buildEnvelope(body string) string {
	digest := sha1.Sum([]byte(c.config.Password))

	var sb strings.Builder
	sb.WriteString(xml.Header)
	sb.WriteString(`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/">`)
	sb.WriteString(`<soapenv:Header>`)
	sb.WriteString(`<wsse:Security xmlns:wsse="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd" soapenv:mustUnderstand="1">`)
	sb.WriteString(`<wsse:UsernameToken>`)
	sb.WriteString(`<wsse:Username>` + xmlEscape(c.config.Username) + `</wsse:Username>`)
	sb.WriteString(`<wsse:Password Type="http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-username-token-profile-1.0#PasswordText">` + hex.EncodeToString(digest[:]) + `</wsse:Password>`)
	sb.WriteString(`</wsse:UsernameToken>`)
	sb.WriteString(`</wsse:Security>`)
	sb.WriteString(`</soapenv:Header>`)
	sb.WriteString(`<soapenv:Body>`)
	sb.WriteString(body)
	sb.WriteString(`</soapenv:Body>`)
	sb.WriteString(`</soapenv:Envelope>`)
	return sb.String()
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close closes idle HTTP connections
func (c *Client) Close() {
	if c.httpClient != nil {
		c.httpClient.CloseIdleConnections()
	}
}
