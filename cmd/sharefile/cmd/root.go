// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/hexonal/tailscale-android-saf/saf"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// InitializeCommands 构建根命令并注册全部子命令。
// 持久化参数绑定到 viper，优先级高于配置文件与 SHAREFILE_* 环境变量。
func InitializeCommands() *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "sharefile",
		Short: "sharefile writes files into granted directories through opaque handles.",
		Long: `sharefile drives the same create, collision-rename and promote logic the
Android client uses for Storage Access Framework directories, against local
directories addressed by file:// handles. It is meant for debugging transfers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfigFile, "config", "", "config file (default is $HOME/.sharefile/sharefile.yaml)")
	flags.StringSlice("root", nil, "granted root directory (repeatable)")
	flags.String("dir", "", "target directory, as a path or file:// handle")
	flags.Bool("keep-partial", false, "keep a partially written destination when a copy fails")
	flags.String("mime-type", saf.MIMEOctetStream, "MIME type recorded for created files")
	flags.BoolP("verbose", "v", false, "log helper activity to stderr")
	viper.BindPFlag("roots", flags.Lookup("root"))
	viper.BindPFlag("dir", flags.Lookup("dir"))
	viper.BindPFlag("keep_partial_destination", flags.Lookup("keep-partial"))
	viper.BindPFlag("mime_type", flags.Lookup("mime-type"))
	viper.BindPFlag("verbose", flags.Lookup("verbose"))

	rootCmd.AddCommand(
		NewCmdWrite(),
		NewCmdPromote(),
		NewCmdName(),
	)

	return rootCmd
}

// Execute 在可被中断的 context 中执行 rootCmd，出错时以状态码 1 退出。
func Execute(rootCmd *cobra.Command) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
