// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// Package appconfig 定义 sharefile 命令的配置，并据此构造 saf.Helper。
package appconfig

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hexonal/tailscale-android-saf/saf"
	"github.com/hexonal/tailscale-android-saf/saf/localtree"
	"tailscale.com/types/logger"
)

// Config 由 viper 从配置文件、环境变量与命令行参数解码得到。
type Config struct {
	// Roots 是允许访问的根目录，相当于用户在文档选择器中授权的目录树。
	Roots                  []string `mapstructure:"roots"`
	Dir                    string   `mapstructure:"dir"`
	MIMEType               string   `mapstructure:"mime_type"`
	KeepPartialDestination bool     `mapstructure:"keep_partial_destination"`
	Verbose                bool     `mapstructure:"verbose"`
}

// Validate 检查是否设置了目标目录以及至少一个根目录。
func (c *Config) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("no target directory configured")
	}
	if len(c.Roots) == 0 {
		return fmt.Errorf("no granted roots configured")
	}
	return nil
}

// Tree 返回基于授权根目录的本地访问层。
func (c *Config) Tree() (*localtree.Tree, error) {
	roots := make([]string, 0, len(c.Roots))
	for _, r := range c.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("root %q: %w", r, err)
		}
		roots = append(roots, abs)
	}
	return localtree.NewOS(roots...), nil
}

// DirHandle 返回目标目录的句柄。
func (c *Config) DirHandle() (string, error) {
	return HandleFor(c.Dir)
}

// Helper 为配置的目标目录构造 saf.Helper。
func (c *Config) Helper(logf logger.Logf) (*saf.Helper, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	tree, err := c.Tree()
	if err != nil {
		return nil, err
	}
	dir, err := c.DirHandle()
	if err != nil {
		return nil, err
	}
	return saf.NewHelper(saf.Config{
		DirHandle:              dir,
		Dirs:                   tree,
		Files:                  tree,
		Logf:                   logf,
		MIMEType:               c.MIMEType,
		KeepPartialDestination: c.KeepPartialDestination,
	}), nil
}

// HandleFor 接受 file:// 句柄或本地路径，统一返回句柄。
func HandleFor(pathOrHandle string) (string, error) {
	if strings.HasPrefix(pathOrHandle, "file://") {
		return pathOrHandle, nil
	}
	abs, err := filepath.Abs(pathOrHandle)
	if err != nil {
		return "", err
	}
	return localtree.Handle(abs), nil
}
