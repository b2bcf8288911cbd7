// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package saf

import (
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisambiguateAt(t *testing.T) {
	ts := time.UnixMilli(1712345678901)
	tests := []struct {
		in, want string
	}{
		{"report.csv", "report-1712345678901.csv"},
		{"archive.tar.gz", "archive.tar-1712345678901.gz"},
		{"noext", "noext-1712345678901"},
		{".bashrc", "-1712345678901.bashrc"},
		{"trailing.", "trailing-1712345678901."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DisambiguateAt(tt.in, ts), "DisambiguateAt(%q)", tt.in)
	}
}

func TestDisambiguateUsesWallClock(t *testing.T) {
	before := time.Now().UnixMilli()
	got := Disambiguate("report.csv")
	after := time.Now().UnixMilli()

	m := regexp.MustCompile(`^report-(\d+)\.csv$`).FindStringSubmatch(got)
	require.NotNil(t, m, "unexpected name %q", got)
	ms, err := strconv.ParseInt(m[1], 10, 64)
	require.NoError(t, err)
	assert.Greater(t, ms, int64(0))
	assert.GreaterOrEqual(t, ms, before)
	assert.LessOrEqual(t, ms, after)
}

func TestValidName(t *testing.T) {
	for _, name := range []string{"a.bin", "with space.txt", ".hidden"} {
		assert.True(t, validName(name), name)
	}
	for _, name := range []string{"", ".", "..", "a/b", "nul\x00"} {
		assert.False(t, validName(name), "%q", name)
	}
}
