// Package usecases - chat.go answers a question from the board corpus.
package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/0xcro3dile/boardchat/internal/domain/calendar"
	"github.com/0xcro3dile/boardchat/internal/domain/corpus"
	"github.com/0xcro3dile/boardchat/internal/domain/entities"
	"github.com/0xcro3dile/boardchat/internal/domain/intent"
	"github.com/0xcro3dile/boardchat/internal/domain/ports"
	"github.com/0xcro3dile/boardchat/internal/domain/prompt"
	"github.com/0xcro3dile/boardchat/internal/domain/ranking"
)

// ErrMessageRequired is returned for an empty question. Nothing downstream is called.
var ErrMessageRequired = errors.New("메시지가 필요합니다.")

// FallbackAnswer replaces an answer the model returned without any text.
const FallbackAnswer = "응답을 생성할 수 없습니다."

// ChatConfig tunes the pipeline. Zero limits fall back to package defaults;
// Params.Temperature is passed through as given.
type ChatConfig struct {
	Calendar        calendar.Calendar
	Clock           calendar.Clock
	MaxPosts        int
	MaxContextChars int
	Params          ports.GenerationParams
}

// ChatUseCase runs one question through extraction, ranking, assembly and generation.
// It holds no per-request state; every call builds its own corpus index.
type ChatUseCase struct {
	source    ports.CorpusSource
	llm       ports.LLMService
	extractor *intent.Extractor
	ranker    *ranking.Ranker
	assembler *prompt.Assembler
	clock     calendar.Clock
	params    ports.GenerationParams
}

// NewChatUseCase creates a ChatUseCase with injected dependencies.
func NewChatUseCase(source ports.CorpusSource, llm ports.LLMService, cfg ChatConfig) *ChatUseCase {
	if cfg.Clock == nil {
		cfg.Clock = calendar.SystemClock{}
	}
	if cfg.Calendar.Location() == nil {
		cfg.Calendar = calendar.New(nil)
	}
	if cfg.Params.MaxTokens <= 0 {
		cfg.Params.MaxTokens = 1000
	}
	return &ChatUseCase{
		source:    source,
		llm:       llm,
		extractor: intent.New(),
		ranker:    ranking.NewRanker(cfg.Calendar, cfg.MaxPosts),
		assembler: prompt.NewAssembler(cfg.MaxContextChars),
		clock:     cfg.Clock,
		params:    cfg.Params,
	}
}

// Prepared is everything decided before the model is called.
type Prepared struct {
	Query     entities.Query
	Selection entities.Selection
	Prompt    entities.Prompt
}

// Chat answers the request. Only the corpus load and the model call do I/O; a failed corpus
// source degrades to empty data, a failed model call fails the request.
func (uc *ChatUseCase) Chat(ctx context.Context, req *entities.ChatRequest) (*entities.ChatResponse, error) {
	prep, err := uc.Prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	answer, err := uc.llm.Generate(ctx, prep.Prompt, uc.params)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("answer generation failed")
		return nil, fmt.Errorf("generating response: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		zerolog.Ctx(ctx).Warn().Msg("model returned no text, using fallback answer")
		answer = FallbackAnswer
	}

	return &entities.ChatResponse{
		Answer:    answer,
		Query:     prep.Query,
		Selection: prep.Selection,
	}, nil
}

// Prepare builds the prompt for a request without calling the model.
func (uc *ChatUseCase) Prepare(ctx context.Context, req *entities.ChatRequest) (*Prepared, error) {
	if req == nil || req.Message == "" {
		return nil, ErrMessageRequired
	}
	log := zerolog.Ctx(ctx)

	idx := uc.LoadIndex(ctx)

	q := uc.extractor.Extract(req.Message, idx.KnownClientNames())
	log.Info().
		Str("client", q.ClientName).
		Str("date_range", string(q.DateRange)).
		Str("date_keyword", uc.extractor.DateKeyword(req.Message)).
		Bool("problem", q.IsProblemQuery).
		Bool("responsible", q.WantsResponsiblePerson).
		Msg("query interpreted")

	sel := uc.ranker.Select(q, idx, uc.clock.Now())
	ev := log.Debug().Int("ranked", len(sel.Posts))
	if sel.Responsible != nil {
		ev = ev.Str("responsible", sel.Responsible.Name).Str("last_activity", sel.Responsible.LastActivity)
	}
	ev.Msg("context selected")
	if len(sel.Posts) == 0 {
		log.Warn().Msg("board context is empty")
	}

	return &Prepared{
		Query:     q,
		Selection: sel,
		Prompt:    uc.assembler.Assemble(*req, q, sel),
	}, nil
}

// ClientNames returns the known client names of a freshly loaded corpus.
func (uc *ChatUseCase) ClientNames(ctx context.Context) []string {
	return uc.LoadIndex(ctx).KnownClientNames()
}

// LoadIndex fetches the three corpus documents concurrently and builds the index.
// Each failed source is logged and replaced by its empty default.
func (uc *ChatUseCase) LoadIndex(ctx context.Context) *corpus.Index {
	log := zerolog.Ctx(ctx)

	var (
		posts    []entities.Post
		comments []entities.Comment
		pre      *entities.PrecomputedIndex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := uc.source.LoadPosts(gctx)
		if err != nil {
			log.Warn().Err(err).Str("source", "posts").Msg("corpus source unavailable, using empty default")
			return nil
		}
		posts = p
		return nil
	})
	g.Go(func() error {
		c, err := uc.source.LoadComments(gctx)
		if err != nil {
			log.Warn().Err(err).Str("source", "comments").Msg("corpus source unavailable, using empty default")
			return nil
		}
		comments = c
		return nil
	})
	g.Go(func() error {
		ix, err := uc.source.LoadIndex(gctx)
		if err != nil {
			log.Warn().Err(err).Str("source", "index").Msg("corpus source unavailable, using empty default")
			return nil
		}
		pre = ix
		return nil
	})
	_ = g.Wait()

	log.Debug().
		Int("posts", len(posts)).
		Int("comments", len(comments)).
		Bool("precomputed_index", pre != nil).
		Msg("corpus loaded")

	return corpus.Build(posts, comments, pre)
}
