// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

// Package w1 reads DS18S20 temperature sensors through the Linux 1-Wire
// sysfs interface.
//
// The kernel exposes each slave device as a directory
// /sys/bus/w1/devices/<id>/ whose w1_slave file holds the raw scratchpad
// dump plus a parsed temperature.
package w1

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/datawire/dlib/dlog"
	"golang.org/x/sync/errgroup"
)

// DefaultBusDir is where the w1 kernel driver mounts slave devices.
const DefaultBusDir = "/sys/bus/w1/devices"

// ds18s20Family is the device-family prefix of DS18S20 sensor IDs
// (e.g. "10-000802824e58").
const ds18s20Family = "10-"

// Bus is a 1-Wire bus rooted at a sysfs directory.  The zero value reads
// from DefaultBusDir; tests point Dir at a fixture tree.
type Bus struct {
	Dir string
}

func (b Bus) dir() string {
	if b.Dir == "" {
		return DefaultBusDir
	}
	return b.Dir
}

// ListSensors returns the IDs of all DS18S20 slaves currently on the bus,
// sorted for stable output.
func (b Bus) ListSensors() ([]string, error) {
	entries, err := os.ReadDir(b.dir())
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ds18s20Family) {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ReadTemperature reads one sensor and returns its temperature in degrees
// Celsius.
func (b Bus) ReadTemperature(ctx context.Context, sensorID string) (float64, error) {
	filename := filepath.Join(b.dir(), sensorID, "w1_slave")
	content, err := os.ReadFile(filename)
	if err != nil {
		return 0, err
	}
	temperature, err := ParseSlave(string(content))
	if err != nil {
		return 0, &SensorError{SensorID: sensorID, Err: err}
	}
	dlog.Infof(ctx, "read temperature for sensor %s: %.2f C", sensorID, temperature)
	return temperature, nil
}

// ReadAll reads every listed sensor concurrently.  A sensor that cannot be
// read yields NaN rather than failing the whole sweep; the error is logged
// and the remaining sensors are still read.
func (b Bus) ReadAll(ctx context.Context, sensorIDs []string) map[string]float64 {
	temperatures := make([]float64, len(sensorIDs))
	grp, ctx := errgroup.WithContext(ctx)
	for i, sensorID := range sensorIDs {
		i := i
		sensorID := sensorID
		grp.Go(func() error {
			temperature, err := b.ReadTemperature(ctx, sensorID)
			if err != nil {
				dlog.Errorf(ctx, "sensor %s: %v", sensorID, err)
				temperature = math.NaN()
			}
			temperatures[i] = temperature
			return nil
		})
	}
	_ = grp.Wait() // the goroutines never return an error

	ret := make(map[string]float64, len(sensorIDs))
	for i, sensorID := range sensorIDs {
		ret[sensorID] = temperatures[i]
	}
	return ret
}

// SensorError wraps a parse failure with the sensor it came from.
type SensorError struct {
	SensorID string
	Err      error
}

func (e *SensorError) Error() string {
	return "sensor " + e.SensorID + ": " + e.Err.Error()
}

func (e *SensorError) Unwrap() error {
	return e.Err
}
