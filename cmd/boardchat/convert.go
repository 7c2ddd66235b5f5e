package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/boardchat/internal/adapters/corpus"
	"github.com/0xcro3dile/boardchat/internal/adapters/csvexport"
	"github.com/0xcro3dile/boardchat/internal/domain/ports"
	"github.com/0xcro3dile/boardchat/internal/domain/usecases"
	"github.com/0xcro3dile/boardchat/internal/infrastructure/config"
)

type convertOptions struct {
	posts    string
	comments string
	out      string
	sqlite   string
}

func newConvertCmd(a *app) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert the board's CSV exports into corpus files",
		Long: `Read the posts and comments CSV exports, clean their HTML, and write
posts.json, comments.json and indexed.json. With --sqlite the same corpus is
also written into a SQLite database.

Examples:
  boardchat convert --posts export/posts.csv --comments export/comments.csv
  boardchat convert --posts p.csv --comments c.csv --out ./data --sqlite ./data/board.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.out == "" {
				opts.out = a.cfg.Corpus.Dir
			}
			res, err := runConvert(cmd.Context(), a.cfg, opts)
			if err != nil {
				return err
			}
			printConvertResult(cmd.OutOrStdout(), opts, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.posts, "posts", "", "posts CSV export")
	cmd.Flags().StringVar(&opts.comments, "comments", "", "comments CSV export")
	cmd.Flags().StringVar(&opts.out, "out", "", "output directory (defaults to CORPUS_DIR)")
	cmd.Flags().StringVar(&opts.sqlite, "sqlite", "", "also write the corpus into this SQLite database")
	_ = cmd.MarkFlagRequired("posts")
	_ = cmd.MarkFlagRequired("comments")
	return cmd
}

// convertSummary is a conversion result plus what the SQLite store holds afterwards.
type convertSummary struct {
	*usecases.ConvertResult
	SQLitePosts int
}

// runConvert is shared by convert and watch.
func runConvert(ctx context.Context, cfg *config.Config, opts convertOptions) (*convertSummary, error) {
	cal, err := newCalendar(cfg)
	if err != nil {
		return nil, err
	}
	codec := corpus.NewCodec(cal)

	writers := []ports.CorpusWriter{corpus.NewFileStore(opts.out, codec)}
	var store *corpus.SQLiteStore
	if opts.sqlite != "" {
		store, err = corpus.NewSQLiteStore(opts.sqlite, codec)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		writers = append(writers, store)
	}

	uc := usecases.NewConvertUseCase(csvexport.NewReader(), cal, writers...)
	res, err := uc.Convert(ctx, opts.posts, opts.comments)
	if err != nil {
		return nil, err
	}

	summary := &convertSummary{ConvertResult: res}
	if store != nil {
		if summary.SQLitePosts, err = store.PostCount(ctx); err != nil {
			return nil, fmt.Errorf("counting stored posts: %w", err)
		}
	}
	return summary, nil
}

func printConvertResult(w io.Writer, opts convertOptions, res *convertSummary) {
	fmt.Fprintf(w, "posts: %d, comments: %d, clients: %d\n", res.Posts, res.Comments, res.Clients)
	fmt.Fprintf(w, "written to %s\n", opts.out)
	if opts.sqlite != "" {
		fmt.Fprintf(w, "written to %s (%d posts stored)\n", opts.sqlite, res.SQLitePosts)
	}
}
