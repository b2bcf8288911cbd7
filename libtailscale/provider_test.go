// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package libtailscale

import (
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/hexonal/tailscale-android-saf/saf/localtree"
)

// fakeAppCtx 模拟 Android 侧 AppContext，偏好设置保存在内存中。
type fakeAppCtx struct {
	mu    sync.Mutex
	logs  []string
	prefs map[string]string
}

func newFakeAppCtx() *fakeAppCtx {
	return &fakeAppCtx{prefs: make(map[string]string)}
}

func (c *fakeAppCtx) Log(tag, logLine string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, logLine)
}

func (c *fakeAppCtx) EncryptToPref(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefs[key] = value
	return nil
}

func (c *fakeAppCtx) DecryptFromPref(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefs[key], nil
}

// treeProvider 以 localtree 模拟 Kotlin 侧的 DocumentProvider。
type treeProvider struct {
	tree     *localtree.Tree
	chunk    int
	writeErr error
}

func (p *treeProvider) IsDirectory(dirUri string) (bool, error) {
	_, err := p.tree.ResolveDir(dirUri)
	return err == nil, nil
}

func (p *treeProvider) FindFile(dirUri, name string) (string, error) {
	d, err := p.tree.ResolveDir(dirUri)
	if err != nil {
		return "", err
	}
	e, ok, err := d.FindFile(name)
	if err != nil || !ok {
		return "", err
	}
	return e.Handle, nil
}

func (p *treeProvider) CreateFile(dirUri, mimeType, name string) (string, error) {
	d, err := p.tree.ResolveDir(dirUri)
	if err != nil {
		return "", err
	}
	e, err := d.CreateFile(mimeType, name)
	if err != nil {
		return "", err
	}
	return e.Handle, nil
}

func (p *treeProvider) OpenInputStream(uri string) (InputStream, error) {
	r, err := p.tree.OpenReader(uri)
	if err != nil {
		return nil, err
	}
	chunk := p.chunk
	if chunk == 0 {
		chunk = 7
	}
	return &chunkedInput{r: r, chunk: chunk}, nil
}

func (p *treeProvider) OpenOutputStream(uri string) (OutputStream, error) {
	if p.writeErr != nil {
		return nil, p.writeErr
	}
	return p.tree.OpenWriter(uri)
}

func (p *treeProvider) OpenFileDescriptor(uri, mode string) (int32, error) {
	fd, err := p.tree.OpenDescriptor(uri, mode)
	return int32(fd), err
}

func (p *treeProvider) Delete(uri string) (bool, error) {
	f, err := p.tree.ResolveFile(uri)
	if err != nil {
		return false, nil
	}
	return f.Delete() == nil, nil
}

// chunkedInput 模拟 Java InputStream，每次最多返回 chunk 字节，EOF 时返回 nil。
type chunkedInput struct {
	r     io.ReadCloser
	chunk int
	err   error // 非 nil 时在第一块之后返回
	reads int
}

func (in *chunkedInput) Read() ([]byte, error) {
	if in.err != nil && in.reads > 0 {
		return nil, in.err
	}
	in.reads++
	buf := make([]byte, in.chunk)
	n, err := io.ReadFull(in.r, buf)
	if n > 0 {
		return buf[:n], nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil
	}
	return nil, err
}

func (in *chunkedInput) Close() error { return in.r.Close() }

// stubShareFileHelper 返回固定结果。
type stubShareFileHelper struct {
	fd  int32
	uri string
}

func (s stubShareFileHelper) OpenFileForWriting(string) int32 { return s.fd }

func (s stubShareFileHelper) RenamePartialFile(string, string, string) string { return s.uri }

// captureLog 在测试结束后恢复标准日志输出。
func captureLog(t *testing.T) {
	t.Helper()
	w, flags := log.Writer(), log.Flags()
	t.Cleanup(func() {
		log.SetOutput(w)
		log.SetFlags(flags)
	})
}

func newStringInput(s string, chunk int) *chunkedInput {
	return &chunkedInput{r: io.NopCloser(strings.NewReader(s)), chunk: chunk}
}
