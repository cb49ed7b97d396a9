package system

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/habitual/internal/api"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/logger"
)

type ServeCmd struct {
	Addr           string   `help:"Address to listen on." default:"${listen_addr}" env:"HABITUAL_ADDR"`
	AllowedOrigins []string `help:"Origins allowed by CORS (default: any)." env:"HABITUAL_ALLOWED_ORIGINS"`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	secret, err := ctx.Secret()
	if err != nil {
		return err
	}

	router := api.NewRouter(ctx.Tracker, api.Config{
		Addr:           c.Addr,
		AuthSecret:     secret,
		AllowedOrigins: c.AllowedOrigins,
		Timezone:       ctx.Timezone,
	})

	sigCtx, stop := signal.NotifyContext(ctx.Ctx(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting server", "addr", c.Addr, "store", ctx.Store.GetConfigPath(), "timezone", ctx.Timezone)
	ctx.Printf("Listening on %s\n", c.Addr)
	if err := api.Serve(sigCtx, c.Addr, router); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
