package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc/codes"
	grpcstatus "google.golang.org/grpc/status"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [namespace]",
		Short: "Stream store events until interrupted",
		Long: "Stream store events until interrupted. The optional namespace filters by\n" +
			"event kind prefix, e.g. \"room.\" or \"message.\".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			namespace := ""
			if len(args) == 1 {
				namespace = args[0]
			}

			c, err := opts.connect()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			events, err := c.WatchEvents(ctx, namespace)
			if err != nil {
				return describe(err)
			}

			out := cmd.OutOrStdout()
			for {
				env, err := events.Recv()
				switch {
				case errors.Is(err, io.EOF), grpcstatus.Code(err) == codes.Canceled, errors.Is(ctx.Err(), context.Canceled):
					return nil
				case err != nil:
					return describe(err)
				}
				if opts.JSON {
					if err := printJSON(out, env); err != nil {
						return err
					}
					continue
				}
				at := time.UnixMilli(env.OccurredAtUnixMs).Format(time.TimeOnly)
				fmt.Fprintf(out, "%s  %-22s %s\n", at, env.Kind, env.Payload)
			}
		},
	}
}
