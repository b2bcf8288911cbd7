// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package saf 在只能通过不透明句柄（SAF content URI）访问的目录中创建文件、
// 提升（promote）部分文件，访问层由平台侧注入。
package saf

import "io"

// MIMEOctetStream 新建条目统一使用的通用二进制内容类型。
const MIMEOctetStream = "application/octet-stream"

// Descriptor 是进程内的原始文件描述符，返回后所有权归调用方。
type Descriptor int32

// InvalidDescriptor 表示未能获得描述符。
const InvalidDescriptor Descriptor = -1

// Entry 是目录中已解析、可写入的文件条目，只在内存中存在。
type Entry struct {
	Name   string // 显示名
	Handle string // 条目自身的不透明句柄
}

// Directory 是由目录句柄解析得到的目录引用。
type Directory interface {
	// FindFile 按名称查找子条目，不存在时返回 false 且 err 为 nil。
	FindFile(name string) (Entry, bool, error)
	// CreateFile 在目录中创建新的文件条目。
	// 同名冲突时的行为（覆盖、自动改名或失败）由实现决定。
	CreateFile(mimeType, name string) (Entry, error)
}

// DirectoryAccess 将目录句柄解析为 Directory。
type DirectoryAccess interface {
	ResolveDir(handle string) (Directory, error)
}

// File 是由单文件句柄解析得到、可删除的文件引用。
type File interface {
	Delete() error
}

// FileAccess 针对单个文件句柄提供解析、读写流与描述符。
type FileAccess interface {
	ResolveFile(handle string) (File, error)
	OpenReader(handle string) (io.ReadCloser, error)
	OpenWriter(handle string) (io.WriteCloser, error)
	// OpenDescriptor 以 mode（"r"、"w"、"wa"、"rw"、"rwt"）打开句柄，
	// 返回的描述符由调用方负责关闭。
	OpenDescriptor(handle, mode string) (Descriptor, error)
}

// Access 同时具备目录与文件访问能力，对应平台侧的内容访问服务。
type Access interface {
	DirectoryAccess
	FileAccess
}
