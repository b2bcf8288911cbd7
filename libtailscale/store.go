// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

// store.go 负责本地持久化存储，封装与 Android EncryptedSharedPreferences 的交互，
// 目前用于保存用户授权的 SAF 目录 URI。
package libtailscale

import (
	"encoding/base64" // 用于二进制数据与字符串互转，便于安全存储
)

// shareDirPrefKey 保存已注册 SAF 目录 URI 的持久化键。
const shareDirPrefKey = "sharefile-diruri"

// stateStore 封装 Android 侧加密持久化存储接口。
// 设计说明：通过 AppContext 间接调用 Android EncryptedSharedPreferences，保证数据加密与隔离。
type stateStore struct {
	// appCtx 是全局 Android 应用上下文，负责实际的存储操作。
	appCtx AppContext
}

// newStateStore 创建 stateStore 实例，注入平台上下文。
func newStateStore(appCtx AppContext) *stateStore {
	return &stateStore{
		appCtx: appCtx,
	}
}

// ReadString 读取字符串类型的持久化数据，若不存在返回默认值。
// key: 存储键。
// def: 默认值。
// 返回：实际读取到的字符串和错误。
func (s *stateStore) ReadString(key string, def string) (string, error) {
	// 读取原始数据，可能为 nil
	data, err := s.read(key)
	if err != nil {
		return def, err
	}
	if data == nil {
		return def, nil
	}
	return string(data), nil
}

// WriteString 写入字符串类型的持久化数据。
// key: 存储键。
// val: 待写入字符串。
func (s *stateStore) WriteString(key string, val string) error {
	return s.write(key, []byte(val))
}

// read 从加密存储读取数据，自动解码 base64。
func (s *stateStore) read(key string) ([]byte, error) {
	// 调用 Android 侧解密接口，返回 base64 字符串
	b64, err := s.appCtx.DecryptFromPref(key)
	if err != nil {
		return nil, err
	}
	if b64 == "" {
		return nil, nil
	}
	return base64.RawStdEncoding.DecodeString(b64)
}

// write 写入加密存储，自动编码为 base64。
func (s *stateStore) write(key string, value []byte) error {
	bs64 := base64.RawStdEncoding.EncodeToString(value)
	return s.appCtx.EncryptToPref(key, bs64)
}
