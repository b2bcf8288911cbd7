// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build unix

package localtree

import (
	"github.com/hexonal/tailscale-android-saf/saf"
	"golang.org/x/sys/unix"
)

// detach 复制 fd，使返回的描述符不受原 *os.File 关闭或回收影响。
func detach(fd uintptr) (saf.Descriptor, error) {
	nfd, err := unix.Dup(int(fd))
	if err != nil {
		return saf.InvalidDescriptor, err
	}
	return saf.Descriptor(nfd), nil
}
