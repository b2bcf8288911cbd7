// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package saf

import (
	"strconv"
	"strings"
	"time"
)

// Disambiguate 为已存在的文件名生成替代名，基于当前时间。
func Disambiguate(name string) string {
	return DisambiguateAt(name, time.Now())
}

// DisambiguateAt 在最后一个 '.' 处拆分 name（扩展名包含该点），
// 返回 base + "-" + 毫秒时间戳 + ext。
// 生成的名称不会再次检查冲突，同一毫秒内对同一名称的两次调用结果相同。
func DisambiguateAt(name string, t time.Time) string {
	base, ext := name, ""
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		base, ext = name[:i], name[i:]
	}
	return base + "-" + strconv.FormatInt(t.UnixMilli(), 10) + ext
}

// validName 拒绝空名称以及会引入子目录的名称。
func validName(name string) bool {
	switch name {
	case "", ".", "..":
		return false
	}
	return !strings.ContainsAny(name, "/\x00")
}
