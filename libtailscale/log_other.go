// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build !android

package libtailscale

// redirectStdio 在非 Android 平台上保留原始 stdout/stderr。
func redirectStdio() {}
