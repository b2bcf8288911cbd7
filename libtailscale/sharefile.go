// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// sharefile.go 实现 Go 侧的 ShareFileHelper：Kotlin 侧只需提供 DocumentProvider，
// 创建文件、冲突改名、复制与删除源文件都在 Go 层完成。
package libtailscale

import (
	"fmt"
	"io"
	"log"
	"runtime/debug"

	"github.com/hexonal/tailscale-android-saf/saf"
)

// InitShareFileHelper 注册用户选择的 SAF 目录，并把 Go 侧 helper 设为当前 ShareFileHelper。
// 可重复调用，后一次注册覆盖前一次。
// appCtx: Android App 上下文，用于日志与持久化目录 URI，可为 nil。
// provider: Kotlin 侧的 DocumentProvider。
// dirUri: 用户授权的目录树 URI。
func InitShareFileHelper(appCtx AppContext, provider DocumentProvider, dirUri string) {
	if appCtx != nil {
		initLogging(appCtx)
		android.mu.Lock()
		android.appCtx = appCtx
		android.mu.Unlock()
		// 持久化目录 URI，便于进程重启后恢复注册
		if err := newStateStore(appCtx).WriteString(shareDirPrefKey, dirUri); err != nil {
			log.Printf("InitShareFileHelper: persist directory: %v", err)
		}
	}

	var access saf.Access
	if provider != nil {
		access = &documentAccess{p: provider}
	}
	shareFiles.Register(access, dirUri)
	SetShareFileHelper(goShareFileHelper{reg: shareFiles})
}

// RestoreShareFileHelper 读取上次持久化的目录 URI 并重新注册。
// appCtx 为 nil 时使用上一次注册时的上下文。
// 返回 true 表示找到已保存的目录并完成注册。
func RestoreShareFileHelper(appCtx AppContext, provider DocumentProvider) bool {
	if appCtx == nil {
		android.mu.Lock()
		appCtx = android.appCtx
		android.mu.Unlock()
	}
	if appCtx == nil {
		return false
	}
	dirUri, err := newStateStore(appCtx).ReadString(shareDirPrefKey, "")
	if err != nil {
		log.Printf("RestoreShareFileHelper: %v", err)
		return false
	}
	if dirUri == "" {
		return false
	}
	InitShareFileHelper(appCtx, provider, dirUri)
	return true
}

// goShareFileHelper 在 Go 层实现 ShareFileHelper，内部错误在此统一折叠为 -1 或空字符串。
type goShareFileHelper struct {
	reg *saf.Registry
}

// OpenFileForWriting 实现 ShareFileHelper。
func (h goShareFileHelper) OpenFileForWriting(fileName string) (fd int32) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("panic in OpenFileForWriting %s: %s", p, debug.Stack())
			fd = -1
		}
	}()

	d, err := h.reg.OpenForWriting(fileName)
	if err != nil {
		log.Printf("OpenFileForWriting(%q): %v", fileName, err)
		return -1
	}
	return int32(d)
}

// RenamePartialFile 实现 ShareFileHelper。
func (h goShareFileHelper) RenamePartialFile(partialUri, targetDirUri, targetName string) (uri string) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("panic in RenamePartialFile %s: %s", p, debug.Stack())
			uri = ""
		}
	}()

	uri, err := h.reg.Promote(partialUri, targetDirUri, targetName)
	if err != nil {
		log.Printf("RenamePartialFile(%q): %v", targetName, err)
		return ""
	}
	return uri
}

// documentAccess 把 Kotlin 侧 DocumentProvider 适配为 saf.Access。
type documentAccess struct {
	p DocumentProvider
}

var _ saf.Access = (*documentAccess)(nil)

// ResolveDir 实现 saf.DirectoryAccess。
func (a *documentAccess) ResolveDir(handle string) (saf.Directory, error) {
	ok, err := a.p.IsDirectory(handle)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%q is not an accessible directory", handle)
	}
	return documentDir{p: a.p, uri: handle}, nil
}

// ResolveFile 实现 saf.FileAccess。单文档 URI 总能构造引用，是否存在由 Delete 决定。
func (a *documentAccess) ResolveFile(handle string) (saf.File, error) {
	if handle == "" {
		return nil, saf.ErrUnresolvableHandle
	}
	return documentFile{p: a.p, uri: handle}, nil
}

// OpenReader 实现 saf.FileAccess。
func (a *documentAccess) OpenReader(handle string) (io.ReadCloser, error) {
	in, err := a.p.OpenInputStream(handle)
	if err != nil {
		return nil, err
	}
	if in == nil {
		return nil, errNilStream
	}
	return adaptInputStream(in), nil
}

// OpenWriter 实现 saf.FileAccess。
func (a *documentAccess) OpenWriter(handle string) (io.WriteCloser, error) {
	out, err := a.p.OpenOutputStream(handle)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errNilStream
	}
	return adaptOutputStream(out), nil
}

// OpenDescriptor 实现 saf.FileAccess。
func (a *documentAccess) OpenDescriptor(handle, mode string) (saf.Descriptor, error) {
	fd, err := a.p.OpenFileDescriptor(handle, mode)
	if err != nil {
		return saf.InvalidDescriptor, err
	}
	return saf.Descriptor(fd), nil
}

type documentDir struct {
	p   DocumentProvider
	uri string
}

// FindFile 实现 saf.Directory。
func (d documentDir) FindFile(name string) (saf.Entry, bool, error) {
	uri, err := d.p.FindFile(d.uri, name)
	if err != nil || uri == "" {
		return saf.Entry{}, false, err
	}
	return saf.Entry{Name: name, Handle: uri}, true, nil
}

// CreateFile 实现 saf.Directory。
func (d documentDir) CreateFile(mimeType, name string) (saf.Entry, error) {
	uri, err := d.p.CreateFile(d.uri, mimeType, name)
	if err != nil {
		return saf.Entry{}, err
	}
	if uri == "" {
		return saf.Entry{}, fmt.Errorf("provider refused to create %q", name)
	}
	return saf.Entry{Name: name, Handle: uri}, nil
}

type documentFile struct {
	p   DocumentProvider
	uri string
}

// Delete 实现 saf.File。
func (f documentFile) Delete() error {
	ok, err := f.p.Delete(f.uri)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("provider did not delete %q", f.uri)
	}
	return nil
}
