// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewCmdWrite 返回 write 子命令：在目标目录新建文件，并通过描述符写入标准输入。
func NewCmdWrite() *cobra.Command {
	var writeCommand = &cobra.Command{
		Use:   "write [file name]",
		Short: "Create a new file in the target directory and fill it from stdin",
		Long: `Creates the named file in the target directory, opens it through a raw
file descriptor the same way the Android client hands one to Taildrop, and
copies stdin into it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := newHelper()
			if err != nil {
				return err
			}
			fd, err := h.OpenForWriting(args[0])
			if err != nil {
				return fmt.Errorf("unable to open %q: %w", args[0], err)
			}
			f := os.NewFile(uintptr(fd), args[0])
			n, err := io.Copy(f, cmd.InOrStdin())
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return fmt.Errorf("writing %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", n, args[0])
			return nil
		},
	}
	return writeCommand
}
