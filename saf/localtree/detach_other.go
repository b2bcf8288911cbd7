// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build !unix

package localtree

import (
	"fmt"

	"github.com/hexonal/tailscale-android-saf/saf"
)

func detach(uintptr) (saf.Descriptor, error) {
	return saf.InvalidDescriptor, fmt.Errorf("%w on this platform", errNoDescriptor)
}
