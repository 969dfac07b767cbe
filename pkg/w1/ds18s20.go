// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package w1

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// A w1_slave payload is two lines:
//
//	2d 00 4b 46 ff ff 02 10 19 : crc=19 YES
//	2d 00 4b 46 ff ff 02 10 19 t=22625
//
// The first line reports whether the scratchpad CRC checked out; the second
// carries the temperature in millidegrees Celsius.
var (
	reFirstLine  = regexp.MustCompile(`.*: crc=(\w\w) (?P<valid>YES|NO)`)
	reSecondLine = regexp.MustCompile(`.*t=(?P<temperature>-?\d+)`)
)

var (
	// ErrCRC means the sensor answered but its scratchpad failed the CRC
	// check; this happens transiently on long or noisy bus wiring.
	ErrCRC = errors.New("crc not valid")
	// ErrMalformed means the w1_slave payload did not have the expected
	// two-line shape.
	ErrMalformed = errors.New("sensor output not valid")
)

// ParseSlave extracts the temperature in degrees Celsius from a raw
// w1_slave payload.
func ParseSlave(content string) (float64, error) {
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return 0, ErrMalformed
	}

	firstLineMatch := reFirstLine.FindStringSubmatch(lines[0])
	secondLineMatch := reSecondLine.FindStringSubmatch(lines[1])
	if firstLineMatch == nil || secondLineMatch == nil {
		return 0, ErrMalformed
	}

	if firstLineMatch[reFirstLine.SubexpIndex("valid")] != "YES" {
		return 0, ErrCRC
	}

	millidegrees, err := strconv.Atoi(secondLineMatch[reSecondLine.SubexpIndex("temperature")])
	if err != nil {
		return 0, ErrMalformed
	}
	return float64(millidegrees) / 1000, nil
}
