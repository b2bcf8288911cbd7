// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"fmt"

	"github.com/hexonal/tailscale-android-saf/saf"
	"github.com/spf13/cobra"
)

// NewCmdName 返回 name 子命令，打印冲突时使用的替代名。
func NewCmdName() *cobra.Command {
	return &cobra.Command{
		Use:   "name [file name]",
		Short: "Print the name a colliding file would be renamed to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), saf.Disambiguate(args[0]))
			return nil
		},
	}
}
