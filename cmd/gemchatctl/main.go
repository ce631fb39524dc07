package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/matheus3301/gemchat/internal/api"
	"github.com/matheus3301/gemchat/internal/config"
	"github.com/matheus3301/gemchat/internal/profile"
	"github.com/spf13/cobra"
	grpcstatus "google.golang.org/grpc/status"
)

type rootOptions struct {
	Profile string
	JSON    bool
	Timeout time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "gemchatctl",
		Short:         "Control a running gemchatd",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Profile, "profile", "", "profile name (overrides config default)")
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "output in JSON format")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 10*time.Second, "request timeout")

	cmd.AddCommand(
		newStatusCmd(opts),
		newRoomsCmd(opts),
		newMessagesCmd(opts),
		newWatchCmd(opts),
	)
	return cmd
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()
	cobra.CheckErr(newRootCmd().Execute())
}

// connect resolves the profile and dials its daemon socket.
func (o *rootOptions) connect() (*api.Client, error) {
	cfg, err := config.Read(profile.ConfigPath())
	if err != nil {
		return nil, err
	}
	name := profile.Resolve(o.Profile, cfg.DefaultProfile)
	if err := profile.ValidateName(name); err != nil {
		return nil, err
	}

	socketPath := profile.SocketPath(name)
	if _, err := os.Stat(socketPath); err != nil {
		return nil, fmt.Errorf("daemon for profile %q is not running (%s)", name, socketPath)
	}
	return api.Dial(socketPath)
}

func (o *rootOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.Timeout)
}

// describe strips the gRPC envelope from server errors.
func describe(err error) error {
	if err == nil {
		return nil
	}
	if s, ok := grpcstatus.FromError(err); ok {
		return fmt.Errorf("%s: %s", s.Code(), s.Message())
	}
	return err
}
