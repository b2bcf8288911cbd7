// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package libtailscale

import (
	"log"
	"runtime/debug"
	"sync"

	"tailscale.com/util/set"
)

// FileOpsCallback 在 ShareFileHelper 或 directFileRoot 变化后被调用。
type FileOpsCallback func(ops *AndroidFileOps, directFileRoot string)

// fileOps 保存文件接收流程当前使用的 AndroidFileOps 与 SAF 根目录。
var fileOps struct {
	once sync.Once

	mu             sync.Mutex
	ops            *AndroidFileOps
	directFileRoot string
	cbs            set.HandleSet[FileOpsCallback]
}

// startFileOpsWatcher 确保监听协程只启动一次。
func startFileOpsWatcher() {
	fileOps.once.Do(func() {
		go watchFileOpsChanges()
	})
}

// watchFileOpsChanges 监听文件操作相关的全局通道，更新当前 AndroidFileOps 与 directFileRoot 并通知订阅者。
func watchFileOpsChanges() {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("panic in watchFileOpsChanges %s: %s", p, debug.Stack())
			panic(p)
		}
	}()

	for {
		select {
		case newPath := <-onFilePath:
			log.Printf("Got new directFileRoot")
			fileOps.mu.Lock()
			fileOps.directFileRoot = newPath
			fileOps.mu.Unlock()
		case helper := <-onShareFileHelper:
			log.Printf("Got shareFileHelper")
			fileOps.mu.Lock()
			fileOps.ops = NewAndroidFileOps(helper)
			fileOps.mu.Unlock()
		}
		notifyFileOps()
	}
}

// notifyFileOps 在锁外依次调用所有订阅回调。
func notifyFileOps() {
	fileOps.mu.Lock()
	ops, root := fileOps.ops, fileOps.directFileRoot
	cbs := make([]FileOpsCallback, 0, len(fileOps.cbs))
	for _, cb := range fileOps.cbs {
		cbs = append(cbs, cb)
	}
	fileOps.mu.Unlock()

	for _, cb := range cbs {
		cb(ops, root)
	}
}

// CurrentFileOps 返回当前的 AndroidFileOps（可能为 nil）与 directFileRoot。
func CurrentFileOps() (*AndroidFileOps, string) {
	fileOps.mu.Lock()
	defer fileOps.mu.Unlock()
	return fileOps.ops, fileOps.directFileRoot
}

// SubscribeFileOps 注册变更回调，返回注销函数。
// 回调在监听协程中同步执行，不应阻塞。
func SubscribeFileOps(cb FileOpsCallback) (unregister func()) {
	startFileOpsWatcher()
	fileOps.mu.Lock()
	handle := fileOps.cbs.Add(cb)
	fileOps.mu.Unlock()
	return func() {
		fileOps.mu.Lock()
		delete(fileOps.cbs, handle)
		fileOps.mu.Unlock()
	}
}
