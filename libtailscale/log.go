// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Gratefully borrowed from Gio UI https://gioui.org/ under MIT license
// log.go 提供 Android 平台下的日志重定向与适配。
package libtailscale

import (
	"log"
	"os"
	"path/filepath"
	"sync"
)

// logLineLimit 日志单行最大长度（含换行），与 android/log.h 保持一致。
const logLineLimit = 1024

// ID 当前进程名。
var ID = filepath.Base(os.Args[0])

// redirectStdioOnce 保证 stdout/stderr 只重定向一次。
var redirectStdioOnce sync.Once

// initLogging 初始化日志系统，将 Go 日志重定向到 Android logcat。
// 可重复调用，以最新的 appCtx 为准。
// appCtx: Android App 上下文。
func initLogging(appCtx AppContext) {
	// Android logcat 已包含时间戳，去除 Go 日志时间。
	log.SetFlags(log.Flags() &^ log.LstdFlags)
	// 设置日志输出为 androidLogWriter
	log.SetOutput(&androidLogWriter{
		appCtx: appCtx,
	})

	// 重定向 stdout 和 stderr 到 Android 日志
	redirectStdioOnce.Do(redirectStdio)
}

// androidLogWriter 实现 io.Writer，将日志写入 Android logcat。
type androidLogWriter struct {
	appCtx AppContext
}

// Write 实现 io.Writer，将数据分段写入 Android 日志。
func (w *androidLogWriter) Write(data []byte) (int, error) {
	n := 0
	for len(data) > 0 {
		msg := data
		// 截断超长日志
		if len(msg) > logLineLimit {
			msg = msg[:logLineLimit]
		}
		w.appCtx.Log(ID, string(msg))
		n += len(msg)
		data = data[len(msg):]
	}
	return n, nil
}
