// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package saf

import "sync"

// Registry 保存进程级的（访问能力, 目录句柄）注册，服务于只能传递
// 文件名的回调接口。后注册者覆盖先注册者。
//
// 每次操作开始时取一次快照；与进行中的操作并发地重新注册，
// 不会影响该操作已经取得的快照。
type Registry struct {
	// Base 提供除访问能力与目录句柄以外的配置（日志、时钟等）。
	// 应在首次 Register 之前设置。
	Base Config

	mu     sync.Mutex
	helper *Helper
}

// Register 记录 access 与 dirHandle，覆盖之前的注册。
func (r *Registry) Register(access Access, dirHandle string) {
	cfg := r.Base
	cfg.DirHandle = dirHandle
	cfg.Dirs, cfg.Files = nil, nil
	if access != nil {
		cfg.Dirs, cfg.Files = access, access
	}
	h := NewHelper(cfg)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.helper = h
}

// Helper 返回当前注册对应的 Helper，未注册时返回 ErrNotInitialized。
func (r *Registry) Helper() (*Helper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.helper == nil {
		return nil, ErrNotInitialized
	}
	return r.helper, nil
}

// OpenForWriting 在当前注册目录中执行 Helper.OpenForWriting。
func (r *Registry) OpenForWriting(fileName string) (Descriptor, error) {
	h, err := r.Helper()
	if err != nil {
		return InvalidDescriptor, err
	}
	return h.OpenForWriting(fileName)
}

// Promote 使用当前注册执行 Helper.Promote。
func (r *Registry) Promote(partialHandle, targetDirHandle, targetName string) (string, error) {
	h, err := r.Helper()
	if err != nil {
		return "", err
	}
	return h.Promote(partialHandle, targetDirHandle, targetName)
}
