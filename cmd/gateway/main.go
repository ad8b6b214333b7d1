package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/router-for-me/MailRelayGateway/internal/config"
	"github.com/router-for-me/MailRelayGateway/internal/http/api"
	"github.com/router-for-me/MailRelayGateway/internal/mail"
	"github.com/router-for-me/MailRelayGateway/internal/store"
	"github.com/router-for-me/MailRelayGateway/internal/token"

	log "github.com/sirupsen/logrus"
)

// main runs the gateway and exits on unrecoverable errors.
func main() {
	if errRun := run(os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("gateway failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and serves until the listener stops.
func run(args []string) error {
	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	port := fs.Int("port", 0, "listen port (overrides config)")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	// Local development convenience; a missing .env is fine.
	if errEnv := godotenv.Load(); errEnv == nil {
		log.Debug("loaded environment from .env")
	}

	cfg, errLoad := config.Load(config.ResolveConfigPath(*cfgPath))
	if errLoad != nil {
		return errLoad
	}
	if *port > 0 {
		if errValidate := validatePort(*port); errValidate != nil {
			return errValidate
		}
		cfg.Port = *port
	}
	if errValidate := cfg.Validate(); errValidate != nil {
		return errValidate
	}

	st, errStore := store.New(cfg)
	if errStore != nil {
		return errStore
	}

	router := api.NewRouter(api.Dependencies{
		Store:    st,
		Codec:    token.NewCodec(cfg.Auth.Secret, nil),
		Sender:   mail.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port),
		TokenTTL: cfg.Auth.Expiry,
		MailTo:   cfg.Mail.To,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.WithFields(log.Fields{"addr": addr, "backend": cfg.Store.Backend}).Info("gateway listening")
	return router.Run(addr)
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
