package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/boardchat/internal/domain/entities"
	"github.com/0xcro3dile/boardchat/internal/domain/prompt"
)

func newAskCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer one question from the command line",
		Long: `Run one question through the same pipeline the API uses and print the answer.

Examples:
  boardchat ask "한빛상사 담당자 누구야?"
  boardchat ask --dry-run "지난주 이슈 있었나요?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !dryRun {
				if err := a.cfg.Validate(); err != nil {
					return err
				}
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

			req := &entities.ChatRequest{Message: strings.Join(args, " ")}
			out := cmd.OutOrStdout()

			if dryRun {
				prep, err := newChatUseCase(a.cfg, source, nil, cal).Prepare(cmd.Context(), req)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, "[system]")
				fmt.Fprintln(out, prompt.SystemMessage(prep.Prompt))
				fmt.Fprintln(out)
				fmt.Fprintln(out, "[user]")
				fmt.Fprintln(out, prep.Prompt.UserMessage)
				return nil
			}

			llmSvc, err := newLLM(a.cfg)
			if err != nil {
				return err
			}
			resp, err := newChatUseCase(a.cfg, source, llmSvc, cal).Chat(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, resp.Answer)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the assembled prompt without calling the model")
	return cmd
}
