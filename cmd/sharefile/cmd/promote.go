// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"fmt"

	"github.com/hexonal/tailscale-android-saf/internal/appconfig"
	"github.com/spf13/cobra"
)

// NewCmdPromote 返回 promote 子命令：把部分文件提升为目标目录中的正式文件。
func NewCmdPromote() *cobra.Command {
	var promoteCommand = &cobra.Command{
		Use:   "promote [partial file] [target name]",
		Short: "Move a partial file into the target directory under its final name",
		Long: `Copies the partial file into the target directory and removes it. If the
target name is taken, a millisecond timestamp is inserted before the extension.
Prints the handle of the new file.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHelper()
			if err != nil {
				return err
			}
			src, err := appconfig.HandleFor(args[0])
			if err != nil {
				return err
			}
			uri, err := h.Promote(src, h.DirHandle(), args[1])
			if err != nil {
				return fmt.Errorf("unable to promote %q: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), uri)
			return nil
		},
	}
	return promoteCommand
}
