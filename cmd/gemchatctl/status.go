package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, cancel := opts.context(cmd)
			defer cancel()

			resp, err := c.GetStatus(ctx)
			if err != nil {
				return describe(err)
			}
			out := cmd.OutOrStdout()
			if opts.JSON {
				return printJSON(out, resp)
			}
			fmt.Fprintf(out, "Profile:  %s\n", resp.Profile)
			fmt.Fprintf(out, "Status:   %s\n", resp.Status)
			fmt.Fprintf(out, "Uptime:   %s\n", (time.Duration(resp.UptimeMs) * time.Millisecond).String())
			fmt.Fprintf(out, "Rooms:    %d\n", resp.RoomCount)
			fmt.Fprintf(out, "Messages: %d\n", resp.MessageCount)
			return nil
		},
	}
}
