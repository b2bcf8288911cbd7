// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package saf

import (
	"errors"
	"fmt"
	"io"

	"tailscale.com/tstime"
	"tailscale.com/types/logger"
)

// Config 描述一个 Helper 所需的全部依赖，构造一次后传入 NewHelper。
type Config struct {
	// DirHandle 是用户选择的目标目录句柄，OpenForWriting 在此目录中创建文件。
	DirHandle string

	// Dirs 与 Files 由平台侧注入。任一为 nil 时所有操作返回 ErrNotInitialized。
	Dirs  DirectoryAccess
	Files FileAccess

	// Logf 可选，默认丢弃日志。
	Logf logger.Logf
	// Clock 可选，用于生成冲突替代名，默认使用系统时钟。
	Clock tstime.Clock
	// MIMEType 可选，默认 MIMEOctetStream。
	MIMEType string

	// KeepPartialDestination 为 true 时，复制失败后保留已创建的目标条目。
	// 默认会尽力删除该条目，源文件在任何失败路径上都不会被删除。
	KeepPartialDestination bool
}

// Helper 实现打开写入与部分文件提升两个操作。
// 两个操作都是同步阻塞调用，应在调用方管理的 goroutine 中执行。
type Helper struct {
	dirHandle  string
	dirs       DirectoryAccess
	files      FileAccess
	logf       logger.Logf
	clock      tstime.Clock
	mimeType   string
	keepOrphan bool
}

// NewHelper 根据 cfg 创建 Helper，未设置的可选字段使用默认值。
func NewHelper(cfg Config) *Helper {
	h := &Helper{
		dirHandle:  cfg.DirHandle,
		dirs:       cfg.Dirs,
		files:      cfg.Files,
		logf:       cfg.Logf,
		clock:      cfg.Clock,
		mimeType:   cfg.MIMEType,
		keepOrphan: cfg.KeepPartialDestination,
	}
	if h.logf == nil {
		h.logf = logger.Discard
	}
	h.logf = logger.WithPrefix(h.logf, "saf: ")
	if h.clock == nil {
		h.clock = tstime.StdClock{}
	}
	if h.mimeType == "" {
		h.mimeType = MIMEOctetStream
	}
	return h
}

// DirHandle 返回注册的目标目录句柄。
func (h *Helper) DirHandle() string {
	if h == nil {
		return ""
	}
	return h.dirHandle
}

func (h *Helper) hasAccess() bool {
	return h != nil && h.dirs != nil && h.files != nil
}

// OpenForWriting 在注册目录中创建名为 fileName 的新文件并以写模式打开，
// 返回其原始描述符。不预先检查同名冲突。
// 成功时即使调用方之后未使用描述符，目录中也会留下一个空文件。
func (h *Helper) OpenForWriting(fileName string) (Descriptor, error) {
	fd, err := h.openForWriting(fileName)
	if err != nil {
		metricOpenWriteFailed.Add(1)
		return InvalidDescriptor, err
	}
	metricOpenWrite.Add(1)
	return fd, nil
}

func (h *Helper) openForWriting(fileName string) (Descriptor, error) {
	if !h.hasAccess() || h.dirHandle == "" {
		return InvalidDescriptor, ErrNotInitialized
	}
	dir, err := h.resolveDir(h.dirHandle)
	if err != nil {
		return InvalidDescriptor, err
	}
	entry, err := h.create(dir, fileName)
	if err != nil {
		return InvalidDescriptor, err
	}
	fd, err := h.files.OpenDescriptor(entry.Handle, "w")
	if err != nil {
		return InvalidDescriptor, fmt.Errorf("%w: descriptor for %q: %w", ErrStreamOpenFailed, entry.Name, err)
	}
	if fd < 0 {
		return InvalidDescriptor, fmt.Errorf("%w: invalid descriptor %d for %q", ErrStreamOpenFailed, fd, entry.Name)
	}
	h.logf("opened %q for writing", entry.Name)
	return fd, nil
}

// Promote 把 partialHandle 指向的部分文件复制到 targetDirHandle 目录下，
// 名称为 targetName（若已存在则改用 DisambiguateAt 生成的替代名），
// 复制成功后删除源文件并返回新条目的句柄。
//
// 源文件只在复制成功后才会被删除。删除失败只记录日志，不影响返回结果。
func (h *Helper) Promote(partialHandle, targetDirHandle, targetName string) (string, error) {
	handle, err := h.promote(partialHandle, targetDirHandle, targetName)
	if err != nil {
		metricPromoteFailed.Add(1)
		return "", err
	}
	metricPromote.Add(1)
	return handle, nil
}

func (h *Helper) promote(partialHandle, targetDirHandle, targetName string) (string, error) {
	if !h.hasAccess() {
		return "", ErrNotInitialized
	}
	dir, err := h.resolveDir(targetDirHandle)
	if err != nil {
		return "", err
	}

	name := targetName
	_, exists, err := dir.FindFile(name)
	if err != nil {
		return "", fmt.Errorf("%w: lookup %q: %w", ErrUnresolvableHandle, name, err)
	}
	if exists {
		name = DisambiguateAt(targetName, h.clock.Now())
		metricPromoteCollision.Add(1)
		h.logf("promote: %q exists, using %q", targetName, name)
	}

	dest, err := h.create(dir, name)
	if err != nil {
		return "", err
	}
	if err := h.copy(partialHandle, dest.Handle); err != nil {
		h.discard(dest)
		return "", err
	}
	h.removeSource(partialHandle)
	h.logf("promote: wrote %q", dest.Name)
	return dest.Handle, nil
}

func (h *Helper) resolveDir(handle string) (Directory, error) {
	if handle == "" {
		return nil, fmt.Errorf("%w: empty directory handle", ErrUnresolvableHandle)
	}
	dir, err := h.dirs.ResolveDir(handle)
	if err != nil {
		return nil, fmt.Errorf("%w: directory %q: %w", ErrUnresolvableHandle, handle, err)
	}
	if dir == nil {
		return nil, fmt.Errorf("%w: directory %q", ErrUnresolvableHandle, handle)
	}
	return dir, nil
}

func (h *Helper) create(dir Directory, name string) (Entry, error) {
	if !validName(name) {
		return Entry{}, fmt.Errorf("%w: invalid file name %q", ErrCreateFailed, name)
	}
	entry, err := dir.CreateFile(h.mimeType, name)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %q: %w", ErrCreateFailed, name, err)
	}
	if entry.Handle == "" {
		return Entry{}, fmt.Errorf("%w: %q: no handle", ErrCreateFailed, name)
	}
	if entry.Name == "" {
		entry.Name = name
	}
	return entry, nil
}

// copy 把 src 的全部字节写入 dst。两个流在所有返回路径上都会关闭。
func (h *Helper) copy(src, dst string) (err error) {
	in, err := h.files.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%w: source: %w", ErrStreamOpenFailed, err)
	}
	defer in.Close()

	out, err := h.files.OpenWriter(dst)
	if err != nil {
		return fmt.Errorf("%w: destination: %w", ErrStreamOpenFailed, err)
	}
	defer func() {
		// Close 会刷新缓冲数据，其错误同样视为复制失败。
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: close destination: %w", ErrCopyFailed, cerr)
		}
	}()

	n, err := io.Copy(out, in)
	if err != nil {
		return fmt.Errorf("%w after %d bytes: %w", ErrCopyFailed, n, err)
	}
	return nil
}

// discard 尽力删除复制失败后遗留的目标条目。
func (h *Helper) discard(dest Entry) {
	if h.keepOrphan {
		h.logf("promote: keeping partial destination %q", dest.Name)
		return
	}
	if err := h.delete(dest.Handle); err != nil {
		h.logf("promote: leaving partial destination %q: %v", dest.Name, err)
		return
	}
	metricOrphanRemoved.Add(1)
}

func (h *Helper) removeSource(handle string) {
	if err := h.delete(handle); err != nil {
		metricSourceKept.Add(1)
		h.logf("promote: source not removed: %v", err)
	}
}

func (h *Helper) delete(handle string) error {
	f, err := h.files.ResolveFile(handle)
	if err != nil {
		return errors.Join(ErrDeleteFailed, fmt.Errorf("%w: %w", ErrUnresolvableHandle, err))
	}
	if f == nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, ErrUnresolvableHandle)
	}
	if err := f.Delete(); err != nil {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	return nil
}
