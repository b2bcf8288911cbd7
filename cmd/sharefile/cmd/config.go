// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"

	"github.com/hexonal/tailscale-android-saf/internal/appconfig"
	"github.com/hexonal/tailscale-android-saf/saf"
	"github.com/spf13/viper"
	"tailscale.com/types/logger"
)

var flagConfigFile string

// TheAppConfig 是 initConfig 合并配置文件、环境变量与命令行参数后的结果。
var TheAppConfig appconfig.Config

// initConfig 读取配置文件（不存在时忽略）并解码到 TheAppConfig。
func initConfig() error {
	if flagConfigFile != "" {
		viper.SetConfigFile(flagConfigFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(path.Join(home, ".sharefile"))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("sharefile")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("SHAREFILE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading viper config '%v': %w", viper.ConfigFileUsed(), err)
		}
	}
	if err := viper.Unmarshal(&TheAppConfig); err != nil {
		return fmt.Errorf("error unmarshalling viper config '%v': %w", viper.ConfigFileUsed(), err)
	}
	return nil
}

func logf() logger.Logf {
	if TheAppConfig.Verbose {
		return log.Printf
	}
	return logger.Discard
}

func newHelper() (*saf.Helper, error) {
	return TheAppConfig.Helper(logf())
}
