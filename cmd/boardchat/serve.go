package main

import (
	"github.com/spf13/cobra"

	httpserver "github.com/0xcro3dile/boardchat/internal/infrastructure/http"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.HTTP.Addr = addr
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			cal, err := newCalendar(a.cfg)
			if err != nil {
				return err
			}
			source, closeSource, err := openSource(a.cfg, cal)
			if err != nil {
				return err
			}
			defer closeSource()

			llmSvc, err := newLLM(a.cfg)
			if err != nil {
				return err
			}

			a.log.Info().
				Str("corpus", a.cfg.Corpus.Source).
				Str("provider", a.cfg.LLM.Provider).
				Str("model", a.cfg.LLM.Model).
				Str("timezone", a.cfg.Timezone).
				Msg("configuration loaded")

			server := httpserver.NewServer(newChatUseCase(a.cfg, source, llmSvc, cal), httpserver.Options{
				Addr:           a.cfg.HTTP.Addr,
				CORSOrigins:    a.cfg.HTTP.CORSOrigins,
				RateLimitRPS:   a.cfg.HTTP.RateLimitRPS,
				RateLimitBurst: a.cfg.HTTP.RateLimitBurst,
			})
			return server.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}
