package main

import (
	"fmt"

	"github.com/0xcro3dile/boardchat/internal/adapters/corpus"
	"github.com/0xcro3dile/boardchat/internal/adapters/llm"
	"github.com/0xcro3dile/boardchat/internal/domain/calendar"
	"github.com/0xcro3dile/boardchat/internal/domain/ports"
	"github.com/0xcro3dile/boardchat/internal/domain/usecases"
	"github.com/0xcro3dile/boardchat/internal/infrastructure/config"
)

func newCalendar(cfg *config.Config) (calendar.Calendar, error) {
	loc, err := cfg.Location()
	if err != nil {
		return calendar.Calendar{}, err
	}
	return calendar.New(loc), nil
}

// openSource builds the configured corpus source. The returned func releases it.
func openSource(cfg *config.Config, cal calendar.Calendar) (ports.CorpusSource, func() error, error) {
	codec := corpus.NewCodec(cal)
	noop := func() error { return nil }

	switch cfg.Corpus.Source {
	case config.SourceFile:
		return corpus.NewFileStore(cfg.Corpus.Dir, codec), noop, nil
	case config.SourceHTTP:
		return corpus.NewHTTPSource(cfg.Corpus.URL, codec), noop, nil
	case config.SourceSQLite:
		store, err := corpus.NewSQLiteStore(cfg.Corpus.SQLitePath, codec)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown corpus source %q", cfg.Corpus.Source)
	}
}

func newLLM(cfg *config.Config) (ports.LLMService, error) {
	switch cfg.LLM.Provider {
	case config.ProviderOpenAI:
		return llm.NewOpenAIAdapter(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model), nil
	case config.ProviderOllama:
		return llm.NewOllamaLLMAdapter(cfg.LLM.BaseURL, cfg.LLM.Model), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

// newChatUseCase wires the chat pipeline. llmSvc may be nil when only Prepare is used.
func newChatUseCase(cfg *config.Config, source ports.CorpusSource, llmSvc ports.LLMService, cal calendar.Calendar) *usecases.ChatUseCase {
	return usecases.NewChatUseCase(source, llmSvc, usecases.ChatConfig{
		Calendar:        cal,
		Clock:           calendar.SystemClock{},
		MaxPosts:        cfg.Pipeline.MaxPosts,
		MaxContextChars: cfg.Pipeline.MaxContextChars,
		Params: ports.GenerationParams{
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
		},
	})
}
