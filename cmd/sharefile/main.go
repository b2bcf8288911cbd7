// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// sharefile 命令在本地目录上驱动与 Android 客户端相同的建文件、改名与提升逻辑，用于调试传输。
package main

import (
	"github.com/hexonal/tailscale-android-saf/cmd/sharefile/cmd"
)

func main() {
	cmd.Execute(cmd.InitializeCommands())
}
