// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

// Package daemon implements the long-running sampling mode: periodically
// read every configured sensor, export the readings to the archiver, and
// serve Prometheus metrics about the whole affair.
package daemon

import (
	"encoding/json"
	"os"
	"time"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// Duration is a time.Duration that unmarshals from a string such as "5m"
// or "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	dur, err := time.ParseDuration(str)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// ArchiverConfig says where to send readings.  The password is never part
// of the file; it comes from the environment.
type ArchiverConfig struct {
	URL      string `json:"url"`
	Username string `json:"username"`
	CACert   string `json:"ca-cert,omitempty"`
}

// Config is the daemon configuration file.
type Config struct {
	// Interval between sampling rounds.
	Interval Duration `json:"interval,omitempty"`
	// Sensors to read.  Empty means every DS18S20 on the bus.
	Sensors []string `json:"sensors,omitempty"`
	// BusDir overrides the 1-wire sysfs directory.
	BusDir string `json:"bus-dir,omitempty"`
	// Listen is the address of the metrics and health endpoint.
	Listen string `json:"listen,omitempty"`
	// Spool is the path of a SQLite database holding readings that could
	// not be delivered.  Empty disables spooling.
	Spool string `json:"spool,omitempty"`

	Archiver ArchiverConfig `json:"archiver"`
}

// FillDefaults substitutes defaults for any zero fields that have one.
func (c *Config) FillDefaults() {
	if c.Interval.Duration == 0 {
		c.Interval.Duration = time.Minute
	}
	if c.Listen == "" {
		c.Listen = ":9101"
	}
}

// Validate reports configurations that FillDefaults cannot repair.
func (c *Config) Validate() error {
	if c.Interval.Duration < 0 {
		return errors.Errorf("negative interval: %v", c.Interval)
	}
	if c.Archiver.URL == "" {
		return errors.New("archiver.url is not set")
	}
	if c.Archiver.Username == "" {
		return errors.New("archiver.username is not set")
	}
	return nil
}

// LoadConfig reads a YAML configuration file, rejecting unknown fields.
func LoadConfig(filename string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, errors.Wrap(err, "load configuration")
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "load configuration %q", filename)
	}
	cfg.FillDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "load configuration %q", filename)
	}
	return cfg, nil
}
