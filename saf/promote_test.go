// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package saf_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/hexonal/tailscale-android-saf/saf"
	"github.com/hexonal/tailscale-android-saf/saf/localtree"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tailscale.com/tstest"
)

const (
	downloadDir = "/storage/emulated/0/Download"
	partialDir  = "/data/user/0/files/partial"
)

var errDiskFull = errors.New("no space left on device")

// failWriteFs 让所有对已有文件的写入都失败。
type failWriteFs struct{ afero.Fs }

func (f failWriteFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	file, err := f.Fs.OpenFile(name, flag, perm)
	if err != nil || flag&os.O_CREATE != 0 || flag&(os.O_WRONLY|os.O_RDWR) == 0 {
		return file, err
	}
	return failWriteFile{file}, nil
}

type failWriteFile struct{ afero.File }

func (failWriteFile) Write([]byte) (int, error) { return 0, errDiskFull }

func newFs(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(downloadDir, 0o755))
	require.NoError(t, fsys.MkdirAll(partialDir, 0o755))
	return fsys
}

func writePartial(t *testing.T, fsys afero.Fs, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(partialDir, name)
	require.NoError(t, afero.WriteFile(fsys, p, data, 0o644))
	return localtree.Handle(p)
}

func newHelper(fsys afero.Fs, cfg saf.Config) *saf.Helper {
	tree := localtree.New(fsys, downloadDir, partialDir)
	cfg.DirHandle = localtree.Handle(downloadDir)
	cfg.Dirs, cfg.Files = tree, tree
	return saf.NewHelper(cfg)
}

func dirNames(t *testing.T, fsys afero.Fs, dir string) []string {
	t.Helper()
	infos, err := afero.ReadDir(fsys, dir)
	require.NoError(t, err)
	var names []string
	for _, fi := range infos {
		names = append(names, fi.Name())
	}
	return names
}

func TestPromoteNoCollision(t *testing.T) {
	fsys := newFs(t)
	src := writePartial(t, fsys, "report.csv.partial", []byte("a,b\n1,2\n"))

	uri, err := newHelper(fsys, saf.Config{}).Promote(src, localtree.Handle(downloadDir), "report.csv")
	require.NoError(t, err)
	assert.Equal(t, localtree.Handle(filepath.Join(downloadDir, "report.csv")), uri)

	got, err := afero.ReadFile(fsys, filepath.Join(downloadDir, "report.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(got))

	exists, err := afero.Exists(fsys, filepath.Join(partialDir, "report.csv.partial"))
	require.NoError(t, err)
	assert.False(t, exists, "source should be removed")
}

func TestPromoteCollision(t *testing.T) {
	fsys := newFs(t)
	existing := filepath.Join(downloadDir, "report.csv")
	require.NoError(t, afero.WriteFile(fsys, existing, []byte("old"), 0o644))
	src := writePartial(t, fsys, "p1", []byte("new"))

	uri, err := newHelper(fsys, saf.Config{}).Promote(src, localtree.Handle(downloadDir), "report.csv")
	require.NoError(t, err)

	m := regexp.MustCompile(`/report-(\d+)\.csv$`).FindStringSubmatch(uri)
	require.NotNil(t, m, "unexpected handle %q", uri)
	ms, err := strconv.ParseInt(m[1], 10, 64)
	require.NoError(t, err)
	assert.Greater(t, ms, int64(0))

	old, err := afero.ReadFile(fsys, existing)
	require.NoError(t, err)
	assert.Equal(t, "old", string(old))

	promoted, err := afero.ReadFile(fsys, filepath.Join(downloadDir, "report-"+m[1]+".csv"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(promoted))

	assert.Empty(t, dirNames(t, fsys, partialDir))
}

func TestPromoteCollisionDeterministicName(t *testing.T) {
	fsys := newFs(t)
	require.NoError(t, afero.WriteFile(fsys, filepath.Join(downloadDir, "archive.tar.gz"), nil, 0o644))
	src := writePartial(t, fsys, "p1", []byte("gz"))
	clock := tstest.NewClock(tstest.ClockOpts{Start: time.UnixMilli(1700000000000)})

	uri, err := newHelper(fsys, saf.Config{Clock: clock}).Promote(src, localtree.Handle(downloadDir), "archive.tar.gz")
	require.NoError(t, err)
	assert.Equal(t, localtree.Handle(filepath.Join(downloadDir, "archive.tar-1700000000000.gz")), uri)
	assert.ElementsMatch(t, []string{"archive.tar.gz", "archive.tar-1700000000000.gz"}, dirNames(t, fsys, downloadDir))
}

func TestPromoteContentFidelity(t *testing.T) {
	big := make([]byte, 3<<20)
	for i := range big {
		big[i] = byte(i * 31)
	}
	tests := map[string][]byte{
		"empty":  {},
		"single": {0},
		"binary": {0xff, 0x00, 0x7f, '\n', '\r'},
		"large":  big,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			fsys := newFs(t)
			src := writePartial(t, fsys, name+".partial", data)
			uri, err := newHelper(fsys, saf.Config{}).Promote(src, localtree.Handle(downloadDir), name+".bin")
			require.NoError(t, err)
			require.NotEmpty(t, uri)

			got, err := afero.ReadFile(fsys, filepath.Join(downloadDir, name+".bin"))
			require.NoError(t, err)
			assert.True(t, bytes.Equal(data, got), "content mismatch: got %d bytes, want %d", len(got), len(data))
		})
	}
}

func TestPromoteCopyFailureKeepsSource(t *testing.T) {
	for _, keep := range []bool{false, true} {
		t.Run("keep="+strconv.FormatBool(keep), func(t *testing.T) {
			base := newFs(t)
			fsys := failWriteFs{base}
			src := writePartial(t, base, "movie.mkv.partial", []byte("frames"))

			h := newHelper(fsys, saf.Config{KeepPartialDestination: keep})
			uri, err := h.Promote(src, localtree.Handle(downloadDir), "movie.mkv")
			assert.ErrorIs(t, err, saf.ErrCopyFailed)
			assert.ErrorIs(t, err, errDiskFull)
			assert.Empty(t, uri)

			got, err := afero.ReadFile(base, filepath.Join(partialDir, "movie.mkv.partial"))
			require.NoError(t, err)
			assert.Equal(t, "frames", string(got))
			require.NoError(t, base.Remove(filepath.Join(partialDir, "movie.mkv.partial")))

			if keep {
				assert.Equal(t, []string{"movie.mkv"}, dirNames(t, base, downloadDir))
			} else {
				assert.Empty(t, dirNames(t, base, downloadDir))
			}
		})
	}
}

func TestPromoteUnresolvableHandles(t *testing.T) {
	fsys := newFs(t)
	src := writePartial(t, fsys, "p", []byte("x"))
	h := newHelper(fsys, saf.Config{})

	_, err := h.Promote(src, "content://com.android.externalstorage.documents/tree/primary%3ADownload", "x")
	assert.ErrorIs(t, err, saf.ErrUnresolvableHandle)

	_, err = h.Promote(src, localtree.Handle("/etc"), "x")
	assert.ErrorIs(t, err, saf.ErrUnresolvableHandle)

	_, err = h.Promote(localtree.Handle(filepath.Join(partialDir, "missing")), localtree.Handle(downloadDir), "x")
	assert.ErrorIs(t, err, saf.ErrStreamOpenFailed)
	assert.Empty(t, dirNames(t, fsys, downloadDir))
}

func TestOpenForWritingWithoutDescriptorSupport(t *testing.T) {
	fsys := newFs(t)
	fd, err := newHelper(fsys, saf.Config{}).OpenForWriting("a.bin")
	assert.ErrorIs(t, err, saf.ErrStreamOpenFailed)
	assert.Equal(t, saf.InvalidDescriptor, fd)
	// 条目已创建，这是该操作的副作用。
	assert.Equal(t, []string{"a.bin"}, dirNames(t, fsys, downloadDir))
}

func TestRegistry(t *testing.T) {
	fsys := newFs(t)
	var reg saf.Registry

	fd, err := reg.OpenForWriting("a.bin")
	assert.ErrorIs(t, err, saf.ErrNotInitialized)
	assert.Equal(t, saf.InvalidDescriptor, fd)
	uri, err := reg.Promote("p", localtree.Handle(downloadDir), "a.bin")
	assert.ErrorIs(t, err, saf.ErrNotInitialized)
	assert.Empty(t, uri)
	assert.Empty(t, dirNames(t, fsys, downloadDir))

	tree := localtree.New(fsys, downloadDir, partialDir)
	reg.Register(tree, localtree.Handle(partialDir))
	reg.Register(tree, localtree.Handle(downloadDir))
	h, err := reg.Helper()
	require.NoError(t, err)
	assert.Equal(t, localtree.Handle(downloadDir), h.DirHandle())

	src := writePartial(t, fsys, "p", []byte("x"))
	uri, err = reg.Promote(src, h.DirHandle(), "x.txt")
	require.NoError(t, err)
	assert.Equal(t, localtree.Handle(filepath.Join(downloadDir, "x.txt")), uri)

	reg.Register(nil, localtree.Handle(downloadDir))
	_, err = reg.OpenForWriting("b.bin")
	assert.ErrorIs(t, err, saf.ErrNotInitialized)
}
