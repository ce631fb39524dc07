package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/matheus3301/gemchat/internal/config"
	"github.com/matheus3301/gemchat/internal/daemon"
	"github.com/matheus3301/gemchat/internal/profile"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	ephemeral := flag.Bool("ephemeral", false, "keep chat state in memory only")
	flag.Parse()

	// A missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Read(profile.ConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	profileName := profile.Resolve(*profileFlag, cfg.DefaultProfile)
	if err := profile.ValidateName(profileName); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := fx.New(
		daemon.Module(daemon.Params{
			Profile:   profileName,
			Config:    cfg,
			Ephemeral: *ephemeral,
		}),
	)

	app.Run()
}
