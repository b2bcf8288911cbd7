// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// libtailscale 包为 Android 平台提供 SAF（Storage Access Framework）文件写入的 Go 层实现，
// 通过 gomobile 绑定供 Kotlin 侧调用。
package libtailscale

import (
	_ "golang.org/x/mobile/bind" // 用于 gomobile 绑定，实际不直接引用
)

// AppContext 提供应用运行的上下文，所有方法均由 Android 侧实现。
type AppContext interface {
	// Log 记录日志。
	// tag: 日志标签。
	// logLine: 日志内容。
	Log(tag, logLine string)

	// EncryptToPref 加密存储键值对。
	// key: 键。
	// value: 值。
	EncryptToPref(key, value string) error

	// DecryptFromPref 解密读取键值。
	// key: 键。
	// 返回值和错误。
	DecryptFromPref(key string) (string, error)
}

// InputStream 适配 Java InputStream。
// Read 返回 nil 表示流结束。
type InputStream interface {
	Read() ([]byte, error)
	Close() error
}

// OutputStream 适配 Java OutputStream。
type OutputStream interface {
	Write([]byte) (int, error)
	Close() error
}

// ShareFileHelper 是 Taildrop 写入 SAF 目录的两个回调入口。
// 失败时分别返回 -1 和空字符串，调用方无法区分失败原因。
type ShareFileHelper interface {
	// OpenFileForWriting 在已选择的 SAF 目录中新建文件并返回可写 fd，失败返回 -1。
	OpenFileForWriting(fileName string) int32
	// RenamePartialFile 把部分文件提升到目标目录，返回新文件 URI，失败返回空字符串。
	RenamePartialFile(partialUri string, targetDirUri string, targetName string) string
}

// DocumentProvider 由 Kotlin 侧基于 DocumentFile 与 ContentResolver 实现，
// 所有 URI 对 Go 层都是不透明的字符串。
type DocumentProvider interface {
	// IsDirectory 判断树 URI 是否指向仍可访问的目录（DocumentFile.fromTreeUri）。
	IsDirectory(dirUri string) (bool, error)
	// FindFile 在目录中按名称查找子文档，不存在时返回空字符串。
	FindFile(dirUri, name string) (string, error)
	// CreateFile 在目录中创建文档，返回新文档 URI，失败返回空字符串或错误。
	CreateFile(dirUri, mimeType, name string) (string, error)
	// OpenInputStream 打开文档读取流（ContentResolver.openInputStream）。
	OpenInputStream(uri string) (InputStream, error)
	// OpenOutputStream 打开文档写入流（ContentResolver.openOutputStream）。
	OpenOutputStream(uri string) (OutputStream, error)
	// OpenFileDescriptor 以 mode 打开文档并返回已 detach 的 fd，所有权交给 Go 层。
	OpenFileDescriptor(uri, mode string) (int32, error)
	// Delete 删除单个文档（DocumentFile.fromSingleUri(...).delete()）。
	Delete(uri string) (bool, error)
}

// SetShareFileHelper 设置全局 ShareFileHelper 实例。
// fileHelper: ShareFileHelper 实例。
func SetShareFileHelper(fileHelper ShareFileHelper) {
	// 通道容量为 1，只保留最新 helper
	replaceLatest(onShareFileHelper, fileHelper)
	startFileOpsWatcher()
}

// SetDirectFileRoot 设置全局 directFileRoot 路径。
// filePath: SAF 根路径。
func SetDirectFileRoot(filePath string) {
	replaceLatest(onFilePath, filePath)
	startFileOpsWatcher()
}
