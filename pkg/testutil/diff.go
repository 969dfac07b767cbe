// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

// Package testutil has helpers for inspecting and comparing the archives
// that the release commands produce.
package testutil

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
	"testing"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"
	"github.com/pmezard/go-difflib/difflib"
)

var spewConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisableCapacities:       true,
	DisablePointerAddresses: true,
	SortKeys:                true,
}

// DumpTarballFull renders every header and every byte of content of a
// gzip-compressed tarball, for use in a diff.
func DumpTarballFull(tarball []byte) (string, error) {
	gzReader, err := gzip.NewReader(bytes.NewReader(tarball))
	if err != nil {
		return "", err
	}
	defer gzReader.Close()

	ret := new(strings.Builder)

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}
		fmt.Fprintf(ret, "tarHeader = %s", spewConfig.Sdump(header))

		content, err := io.ReadAll(tarReader)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(ret, "tarContent =%s", spewConfig.Sdump(content))
	}

	return ret.String(), nil
}

// DumpTarballListing renders an ls-style listing of a gzip-compressed
// tarball, one line per entry.
func DumpTarballListing(tarball []byte) (string, error) {
	gzReader, err := gzip.NewReader(bytes.NewReader(tarball))
	if err != nil {
		return "", err
	}
	defer gzReader.Close()

	ret := new(strings.Builder)
	table := tabwriter.NewWriter(
		ret, // output
		0,   // minwidth
		1,   // tabwidth
		1,   // padding
		' ', // padchar
		0)   // flags
	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", err
		}
		fmt.Fprintln(table, strings.Join([]string{
			"",
			header.FileInfo().Mode().String(),
			header.ModTime.UTC().Format("2006-01-02T15:04:05Z"),
			fmt.Sprintf("% 10d", header.Size),
			header.Name,
		}, "\t"))
		if _, err := io.ReadAll(tarReader); err != nil {
			return "", err
		}
	}
	if err := table.Flush(); err != nil {
		return "", err
	}

	return ret.String(), nil
}

// AssertEqualTarballs compares two gzip-compressed tarballs and reports a
// unified diff on mismatch.
func AssertEqualTarballs(t *testing.T, exp, act []byte) bool {
	t.Helper()

	// First just compare the listings, in order to "fail fast" and give more readable output.
	expStr, err := DumpTarballListing(exp)
	if err != nil {
		t.Errorf("error dumping expected tarball listing: %v", err)
		return false
	}
	actStr, err := DumpTarballListing(act)
	if err != nil {
		t.Errorf("error dumping actual tarball listing: %v", err)
		return false
	}
	if expStr != actStr {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(expStr),
			B:        difflib.SplitLines(actStr),
			FromFile: "Expected",
			FromDate: "",
			ToFile:   "Actual",
			ToDate:   "",
			Context:  1,
		})
		t.Errorf("Listing diff:\n%s", diff)
		return false
	}

	// OK, that passed, now do a more comprehensive diff.
	expStr, err = DumpTarballFull(exp)
	if err != nil {
		t.Errorf("error dumping expected tarball: %v", err)
		return false
	}
	actStr, err = DumpTarballFull(act)
	if err != nil {
		t.Errorf("error dumping actual tarball: %v", err)
		return false
	}
	if expStr != actStr {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(expStr),
			B:        difflib.SplitLines(actStr),
			FromFile: "Expected",
			FromDate: "",
			ToFile:   "Actual",
			ToDate:   "",
			Context:  1,
		})
		t.Errorf("Full diff:\n%s", diff)
		return false
	}

	return true
}
