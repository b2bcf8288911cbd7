// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package libtailscale

import (
	"log"
	"sync"

	"github.com/hexonal/tailscale-android-saf/saf"
)

var (
	// onShareFileHelper 用于接收 ShareFileHelper 实例的全局通道，便于文件接收。
	onShareFileHelper = make(chan ShareFileHelper, 1)

	// onFilePath 用于接收 Taildrop SAF 路径的全局通道。
	onFilePath = make(chan string, 1)
)

// shareFiles 保存进程级的 SAF 目录注册，后注册者覆盖先注册者。
var shareFiles = &saf.Registry{Base: saf.Config{Logf: log.Printf}}

// android 结构体用于存储全局 Android App 上下文。
var android struct {
	// mu 保护结构体所有字段的互斥锁。
	mu sync.Mutex

	// appCtx 全局 Android App context。
	appCtx AppContext
}

// replaceLatest 向容量为 1 的通道发送 v，若已有未读取的旧值则先丢弃。
func replaceLatest[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		// 通道已满，清空旧值后重试
		select {
		case <-ch:
		default:
		}
	}
}
