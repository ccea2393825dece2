package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rangefence/rangefence/lib/api"
	"github.com/rangefence/rangefence/lib/log"
)

func CreateServerCommand() *ServerCommand {
	cmd := &ServerCommand{
		fs: flag.NewFlagSet("server", flag.ExitOnError),
	}

	cmd.fs.StringVar(&cmd.bindAddr, "bind", "", "Bind address for API server (default from config api_bind, else 127.0.0.1:8080)")

	return cmd
}

type ServerCommand struct {
	fs       *flag.FlagSet
	ctx      *AppContext
	bindAddr string
}

func (c *ServerCommand) Name() string {
	return c.fs.Name()
}

func (c *ServerCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	if err := c.fs.Parse(args); err != nil {
		return err
	}

	if c.bindAddr == "" {
		if cfg, err := loadAndValidateConfigOrFail(ctx.ConfigPath); err != nil {
			return err
		} else if cfg.General.APIBind != "" {
			c.bindAddr = cfg.General.APIBind
		} else {
			c.bindAddr = "127.0.0.1:8080"
		}
	}

	return nil
}

func (c *ServerCommand) Run() error {
	log.Infof("Starting rangefence API server")
	log.Infof("Config file: %s", c.ctx.ConfigPath)
	log.Infof("Bind address: %s", c.bindAddr)
	log.Infof("Example: curl http://%s/api/v1/status", c.bindAddr)

	server := api.NewServer(c.ctx.ConfigPath, c.bindAddr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-sigChan:
		log.Infof("Received signal: %v", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("error during shutdown: %w", err)
		}

		log.Infof("Server stopped")
		return nil
	}
}
