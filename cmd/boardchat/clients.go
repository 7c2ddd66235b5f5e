package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClientsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List the client names known to the corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cal, err := newCalendar(a.cfg)
			if err != nil {
				return err
			}
			source, closeSource, err := openSource(a.cfg, cal)
			if err != nil {
				return err
			}
			defer closeSource()

			for _, name := range newChatUseCase(a.cfg, source, nil, cal).ClientNames(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
