package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/0xcro3dile/boardchat/internal/adapters/filewatcher"
	"github.com/0xcro3dile/boardchat/internal/domain/ports"
	"github.com/0xcro3dile/boardchat/internal/infrastructure/logger"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		postsName    string
		commentsName string
		settle       time.Duration
		opts         convertOptions
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-convert the CSV exports whenever they change in IMPORT_DIR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := a.cfg.Import.Dir
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
			if opts.out == "" {
				opts.out = a.cfg.Corpus.Dir
			}
			opts.posts = filepath.Join(dir, postsName)
			opts.comments = filepath.Join(dir, commentsName)

			watcher, err := filewatcher.NewExportWatcher(settle, postsName, commentsName)
			if err != nil {
				return err
			}
			defer watcher.Stop()

			return runWatch(cmd.Context(), watcher, dir, func(ctx context.Context) {
				reconvert(ctx, a, opts)
			})
		},
	}

	cmd.Flags().StringVar(&postsName, "posts-name", "posts.csv", "posts export file name inside IMPORT_DIR")
	cmd.Flags().StringVar(&commentsName, "comments-name", "comments.csv", "comments export file name inside IMPORT_DIR")
	cmd.Flags().DurationVar(&settle, "settle", filewatcher.DefaultSettle, "how long the exports must stay unchanged before converting")
	cmd.Flags().StringVar(&opts.out, "out", "", "output directory (defaults to CORPUS_DIR)")
	cmd.Flags().StringVar(&opts.sqlite, "sqlite", "", "also write the corpus into this SQLite database")
	return cmd
}

// runWatch converts once at startup and again for every settled export change.
// It returns when the watcher's channel closes or ctx is done.
func runWatch(ctx context.Context, watcher ports.FileWatcher, dir string, convert func(context.Context)) error {
	ctx = logger.Named("watch").WithContext(ctx)

	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("dir", dir).Msg("watching for CSV exports")
	convert(ctx)
	watchLoop(ctx, events, func() { convert(ctx) })
	return nil
}

// watchLoop calls fn for every settled change. Removals are logged and skipped.
func watchLoop(ctx context.Context, events <-chan ports.FileEvent, fn func()) {
	log := zerolog.Ctx(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Operation == ports.FileDeleted {
				log.Warn().Str("path", ev.Path).Msg("export removed, keeping the current corpus")
				continue
			}
			log.Debug().Str("path", ev.Path).Stringer("op", ev.Operation).Msg("exports changed")
			fn()
		}
	}
}

// reconvert runs a conversion when both exports are present, logging the outcome.
func reconvert(ctx context.Context, a *app, opts convertOptions) {
	log := zerolog.Ctx(ctx)
	for _, p := range []string{opts.posts, opts.comments} {
		if _, err := os.Stat(p); err != nil {
			log.Debug().Str("path", p).Msg("export not present yet, skipping conversion")
			return
		}
	}

	res, err := runConvert(ctx, a.cfg, opts)
	if err != nil {
		log.Error().Err(err).Msg("conversion failed")
		return
	}
	ev := log.Info().
		Int("posts", res.Posts).
		Int("comments", res.Comments).
		Int("clients", res.Clients).
		Str("out", opts.out)
	if opts.sqlite != "" {
		ev = ev.Int("sqlite_posts", res.SQLitePosts)
	}
	ev.Msg("corpus converted")
}
