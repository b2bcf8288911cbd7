// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package libtailscale

import (
	"errors"
	"io"
)

var errNilStream = errors.New("nil stream")

// adaptInputStream 适配 Java InputStream 为 io.ReadCloser。
// in: InputStream。
// 返回 io.ReadCloser，in 为 nil 时返回 nil。
func adaptInputStream(in InputStream) io.ReadCloser {
	if in == nil {
		return nil
	}
	return &inputStreamReader{in: in}
}

// inputStreamReader 按需调用 InputStream.Read，把返回的块切分给调用方。
type inputStreamReader struct {
	in  InputStream
	buf []byte
	eof bool
}

// Read 实现 io.Reader，Java 侧返回 nil 块表示 EOF。
func (r *inputStreamReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.eof {
			return 0, io.EOF
		}
		b, err := r.in.Read()
		if err != nil {
			return 0, err
		}
		if b == nil {
			r.eof = true
		}
		r.buf = b
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// Close 关闭底层 Java 流。
func (r *inputStreamReader) Close() error {
	return r.in.Close()
}

// adaptOutputStream 适配 Java OutputStream 为 io.WriteCloser，
// 保证短写时返回 io.ErrShortWrite。
func adaptOutputStream(out OutputStream) io.WriteCloser {
	if out == nil {
		return nil
	}
	return &outputStreamWriter{out: out}
}

type outputStreamWriter struct {
	out OutputStream
}

func (w *outputStreamWriter) Write(p []byte) (int, error) {
	n, err := w.out.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

func (w *outputStreamWriter) Close() error {
	return w.out.Close()
}
