// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package saf

import "errors"

// 错误种类。对外回调接口会把它们统一折叠为 -1 或空字符串，
// Go 侧调用方可通过 errors.Is 区分。
var (
	ErrNotInitialized     = errors.New("saf: share directory not registered")
	ErrUnresolvableHandle = errors.New("saf: handle does not resolve to an accessible entry")
	ErrCreateFailed       = errors.New("saf: cannot create destination entry")
	ErrStreamOpenFailed   = errors.New("saf: cannot open stream")
	ErrCopyFailed         = errors.New("saf: copy failed")
	ErrDeleteFailed       = errors.New("saf: cannot delete entry")
)
