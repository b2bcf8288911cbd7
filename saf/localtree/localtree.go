// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package localtree 在本地文件系统上实现 saf.Access。
// 句柄是 file:// URI，只有位于授权根目录之下且不经过符号链接的路径才能解析，
// 用于测试、命令行工具以及非 Android 平台。
package localtree

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hexonal/tailscale-android-saf/saf"
	"github.com/spf13/afero"
)

var _ saf.Access = (*Tree)(nil)

// maxCreateAttempts 限制 CreateFile 自动改名的次数。
const maxCreateAttempts = 64

// Tree 是一组授权根目录，所有句柄都在其下解析。
type Tree struct {
	fs    afero.Fs
	roots []string
}

// New 返回在 fsys 上授权 roots 的 Tree。roots 必须是绝对路径。
func New(fsys afero.Fs, roots ...string) *Tree {
	t := &Tree{fs: fsys}
	for _, r := range roots {
		t.roots = append(t.roots, filepath.Clean(r))
	}
	return t
}

// NewOS 返回基于真实文件系统的 Tree，支持 OpenDescriptor。
func NewOS(roots ...string) *Tree {
	return New(afero.NewOsFs(), roots...)
}

// Handle 返回 path 对应的 file:// 句柄。
func Handle(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Clean(path))}
	return u.String()
}

// path 把句柄还原为授权根目录下的路径。
func (t *Tree) path(handle string) (string, error) {
	u, err := url.Parse(handle)
	if err != nil {
		return "", fmt.Errorf("%w: %v", saf.ErrUnresolvableHandle, err)
	}
	if u.Scheme != "file" || u.Path == "" || (u.Host != "" && u.Host != "localhost") {
		return "", fmt.Errorf("%w: not a local file handle: %q", saf.ErrUnresolvableHandle, handle)
	}
	p := filepath.Clean(filepath.FromSlash(u.Path))
	if !filepath.IsAbs(p) {
		return "", fmt.Errorf("%w: relative path in %q", saf.ErrUnresolvableHandle, handle)
	}
	for _, root := range t.roots {
		if p == root || strings.HasPrefix(p, root+string(filepath.Separator)) {
			if err := t.checkLinks(root, p); err != nil {
				return "", err
			}
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q is outside the granted roots", saf.ErrUnresolvableHandle, p)
}

// checkLinks 拒绝 root 之下（不含 root 本身）经过符号链接的路径。
// 尚不存在的后缀不检查。
func (t *Tree) checkLinks(root, p string) error {
	l, ok := t.fs.(afero.Lstater)
	if !ok || p == root {
		return nil
	}
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return fmt.Errorf("%w: %v", saf.ErrUnresolvableHandle, err)
	}
	cur := root
	for _, elem := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, elem)
		fi, _, err := l.LstatIfPossible(cur)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", saf.ErrUnresolvableHandle, err)
		}
		if fi.Mode()&fs.ModeSymlink != 0 {
			return fmt.Errorf("%w: %q is a symbolic link", saf.ErrUnresolvableHandle, cur)
		}
	}
	return nil
}

// ResolveDir 实现 saf.DirectoryAccess。
func (t *Tree) ResolveDir(handle string) (saf.Directory, error) {
	p, err := t.path(handle)
	if err != nil {
		return nil, err
	}
	fi, err := t.fs.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", saf.ErrUnresolvableHandle, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %q is not a directory", saf.ErrUnresolvableHandle, p)
	}
	return &directory{t: t, path: p}, nil
}

// ResolveFile 实现 saf.FileAccess，只接受普通文件。
func (t *Tree) ResolveFile(handle string) (saf.File, error) {
	p, err := t.regular(handle)
	if err != nil {
		return nil, err
	}
	return &file{t: t, path: p}, nil
}

func (t *Tree) regular(handle string) (string, error) {
	p, err := t.path(handle)
	if err != nil {
		return "", err
	}
	fi, err := t.fs.Stat(p)
	if err != nil {
		return "", fmt.Errorf("%w: %w", saf.ErrUnresolvableHandle, err)
	}
	if !fi.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %q is not a regular file", saf.ErrUnresolvableHandle, p)
	}
	return p, nil
}

// OpenReader 实现 saf.FileAccess。
func (t *Tree) OpenReader(handle string) (io.ReadCloser, error) {
	p, err := t.regular(handle)
	if err != nil {
		return nil, err
	}
	return t.fs.Open(p)
}

// OpenWriter 打开已存在的条目并截断，与内容服务的 "w" 输出流一致。
func (t *Tree) OpenWriter(handle string) (io.WriteCloser, error) {
	p, err := t.regular(handle)
	if err != nil {
		return nil, err
	}
	return t.fs.OpenFile(p, os.O_WRONLY|os.O_TRUNC, 0)
}

// OpenDescriptor 实现 saf.FileAccess。只有底层文件系统返回 *os.File 时可用。
func (t *Tree) OpenDescriptor(handle, mode string) (saf.Descriptor, error) {
	flag, err := modeFlags(mode)
	if err != nil {
		return saf.InvalidDescriptor, err
	}
	p, err := t.regular(handle)
	if err != nil {
		return saf.InvalidDescriptor, err
	}
	f, err := t.fs.OpenFile(p, flag, 0)
	if err != nil {
		return saf.InvalidDescriptor, err
	}
	defer f.Close()
	fder, ok := f.(interface{ Fd() uintptr })
	if !ok {
		return saf.InvalidDescriptor, fmt.Errorf("%w: %T has no file descriptor", errNoDescriptor, t.fs)
	}
	return detach(fder.Fd())
}

var errNoDescriptor = errors.New("localtree: descriptors not supported")

// modeFlags 把内容服务的打开模式映射为 os.OpenFile 标志。
func modeFlags(mode string) (int, error) {
	switch mode {
	case "r":
		return os.O_RDONLY, nil
	case "w", "wt":
		return os.O_WRONLY | os.O_TRUNC, nil
	case "wa":
		return os.O_WRONLY | os.O_APPEND, nil
	case "rw":
		return os.O_RDWR, nil
	case "rwt":
		return os.O_RDWR | os.O_TRUNC, nil
	}
	return 0, fmt.Errorf("localtree: invalid mode %q", mode)
}

type directory struct {
	t    *Tree
	path string
}

func (d *directory) entry(name string) saf.Entry {
	return saf.Entry{Name: name, Handle: Handle(filepath.Join(d.path, name))}
}

// FindFile 实现 saf.Directory，任意类型的同名子条目都视为存在。
func (d *directory) FindFile(name string) (saf.Entry, bool, error) {
	if err := checkName(name); err != nil {
		return saf.Entry{}, false, err
	}
	_, err := d.t.fs.Stat(filepath.Join(d.path, name))
	if errors.Is(err, fs.ErrNotExist) {
		return saf.Entry{}, false, nil
	}
	if err != nil {
		return saf.Entry{}, false, err
	}
	return d.entry(name), true, nil
}

// CreateFile 实现 saf.Directory。mimeType 不落盘。
// 同名条目已存在时与 Android 文档提供方一致，改用 "name (N).ext"。
func (d *directory) CreateFile(mimeType, name string) (saf.Entry, error) {
	if err := checkName(name); err != nil {
		return saf.Entry{}, err
	}
	candidate := name
	for i := 1; i <= maxCreateAttempts; i++ {
		f, err := d.t.fs.OpenFile(filepath.Join(d.path, candidate), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			if err := f.Close(); err != nil {
				return saf.Entry{}, err
			}
			return d.entry(candidate), nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return saf.Entry{}, err
		}
		candidate = numbered(name, i)
	}
	return saf.Entry{}, fmt.Errorf("localtree: no free name for %q", name)
}

// numbered 返回 "base (n).ext"。
func numbered(name string, n int) string {
	ext := filepath.Ext(name)
	return fmt.Sprintf("%s (%d)%s", strings.TrimSuffix(name, ext), n, ext)
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`+"\x00") {
		return fmt.Errorf("localtree: invalid name %q", name)
	}
	return nil
}

type file struct {
	t    *Tree
	path string
}

// Delete 实现 saf.File。
func (f *file) Delete() error {
	return f.t.fs.Remove(f.path)
}
