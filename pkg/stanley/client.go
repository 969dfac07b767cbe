// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

// Package stanley is a client for the Stanley time-series archiver.
package stanley

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"
)

// PasswordEnv is the environment variable the archiver password is read
// from; ReadPassword removes it from the environment so that it does not
// leak to child processes.
const PasswordEnv = "STANLEY_PASSWORD"

// Client talks to a Stanley archiver.  The zero value is not usable: at
// least BaseURL and credentials must be set.
type Client struct {
	BaseURL    string
	Username   string
	Password   string
	HTTPClient *http.Client
	UserAgent  string
}

func (c *Client) fillDefaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.UserAgent == "" {
		c.UserAgent = "github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/stanley"
	}
}

// WithCACert returns a client that trusts only the certification authority
// in the given PEM file, for archivers behind a private CA.
func (c Client) WithCACert(filename string) (*Client, error) {
	pem, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no CA certificates found in %q", filename)
	}
	c.HTTPClient = &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				RootCAs:    pool,
				MinVersion: tls.VersionTLS12,
			},
		},
	}
	return &c, nil
}

// ReadPassword reads the archiver password from PasswordEnv and scrubs the
// variable from the process environment.
func ReadPassword() (string, error) {
	password, ok := os.LookupEnv(PasswordEnv)
	if !ok {
		return "", fmt.Errorf("environment variable %s is not set", PasswordEnv)
	}
	if err := os.Unsetenv(PasswordEnv); err != nil {
		return "", err
	}
	return password, nil
}

// SeriesPath returns the archiver series that this driver records a
// sensor's temperatures under.
func SeriesPath(sensorID string) string {
	return "/sensors/temperature/" + sensorID
}

// Reading is a single timestamped value of one series.
type Reading struct {
	Time  time.Time
	Value float64
}

// MarshalJSON encodes the reading as a [timestamp, value] pair; NaN values
// (failed sensor reads) become null, since JSON has no NaN.
func (r Reading) MarshalJSON() ([]byte, error) {
	var value any = r.Value
	if math.IsNaN(r.Value) {
		value = nil
	}
	return json.Marshal([2]any{r.Time.Format(time.RFC3339Nano), value})
}

// HTTPError is a non-2xx answer from the archiver.
type HTTPError struct {
	Status     string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %s", e.Status)
}

// PostReadings appends readings to the archiver, keyed by series path.
func (c Client) PostReadings(ctx context.Context, readings map[string][]Reading) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("stanley: post readings: %w", err)
		}
	}()
	c.fillDefaults()

	body, err := json.Marshal(map[string]any{
		"readings": readings,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/readings", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.UserAgent)
	req.SetBasicAuth(c.Username, c.Password)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{Status: resp.Status, StatusCode: resp.StatusCode}
	}
	return nil
}
