// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

//go:build android

package libtailscale

/*
#cgo LDFLAGS: -llog

#include <stdlib.h>
#include <android/log.h>
*/
import "C"

import (
	"bufio"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"syscall"
	"unsafe"
)

// logTag 用于 Android 日志的 tag。
var logTag = C.CString(ID)

// redirectStdio 把 stdout 和 stderr 转发到 logcat。
func redirectStdio() {
	logFd(os.Stdout.Fd())
	logFd(os.Stderr.Fd())
}

// logFd 重定向指定 fd 到 Android 日志。
// fd: 文件描述符。
func logFd(fd uintptr) {
	r, w, err := os.Pipe()
	if err != nil {
		panic(err)
	}
	// 复制 w 的 fd 到目标 fd
	if err := syscall.Dup3(int(w.Fd()), int(fd), syscall.O_CLOEXEC); err != nil {
		panic(err)
	}
	// 启动协程读取日志并写入 Android logcat
	go func() {
		defer func() {
			if p := recover(); p != nil {
				log.Printf("panic in logFd %s: %s", p, debug.Stack())
				panic(p)
			}
		}()

		lineBuf := bufio.NewReaderSize(r, logLineLimit)
		// buf 用于传递给 C，包含结尾的 '\0'
		buf := make([]byte, lineBuf.Size()+1)
		cbuf := (*C.char)(unsafe.Pointer(&buf[0]))
		for {
			line, _, err := lineBuf.ReadLine()
			if err != nil {
				break
			}
			copy(buf, line)
			buf[len(line)] = 0
			C.__android_log_write(C.ANDROID_LOG_INFO, logTag, cbuf)
		}
		// 防止 w 被 GC 回收导致 fd 被关闭
		runtime.KeepAlive(w)
	}()
}
