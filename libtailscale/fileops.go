// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// libtailscale 包为 Android 平台 Tailscale 客户端提供文件操作相关的适配。
package libtailscale

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// AndroidFileOps 把 ShareFileHelper 的哨兵返回值转换为 Go 错误，供 Go 侧的文件接收流程使用。
type AndroidFileOps struct {
	// helper 持有当前的 ShareFileHelper 实例。
	helper ShareFileHelper
}

var errNoShareFileHelper = errors.New("no ShareFileHelper registered")

// NewAndroidFileOps 创建 AndroidFileOps 实例。
// helper: ShareFileHelper 实例。
// 返回 *AndroidFileOps。
func NewAndroidFileOps(helper ShareFileHelper) *AndroidFileOps {
	// 直接封装 helper
	return &AndroidFileOps{helper: helper}
}

// GetSafFd 调用 helper 的 OpenFileForWriting，失败返回 -1。
func (ops *AndroidFileOps) GetSafFd(filename string) int32 {
	if ops == nil || ops.helper == nil {
		return -1
	}
	return ops.helper.OpenFileForWriting(filename)
}

// OpenFileWriter 在 SAF 目录中新建文件并返回基于其 fd 的写入流。
// filename: 文件名。
// 返回 io.WriteCloser 和错误，关闭写入流即关闭 fd。
func (ops *AndroidFileOps) OpenFileWriter(filename string) (io.WriteCloser, error) {
	if ops == nil || ops.helper == nil {
		return nil, errNoShareFileHelper
	}
	fd := ops.GetSafFd(filename)
	if fd < 0 {
		// 打开失败，返回错误
		return nil, fmt.Errorf("failed to open SAF file descriptor for %s", filename)
	}
	return os.NewFile(uintptr(fd), "saf_fd_"+filename), nil
}

// RenamePartialFile 重命名部分文件。
// partialUri: 原始部分文件 URI。
// targetDirUri: 目标目录 URI。
// targetName: 目标文件名。
// 返回新文件 URI 和错误。
func (ops *AndroidFileOps) RenamePartialFile(partialUri, targetDirUri, targetName string) (string, error) {
	if ops == nil || ops.helper == nil {
		return "", errNoShareFileHelper
	}
	newURI := ops.helper.RenamePartialFile(partialUri, targetDirUri, targetName)
	if newURI == "" {
		// 重命名失败
		return "", fmt.Errorf("failed to rename partial file via SAF")
	}
	// 返回新 URI
	return newURI, nil
}
