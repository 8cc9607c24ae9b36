package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"autoapply-agent/internal/application/port/output"
	"autoapply-agent/internal/application/service"
	"autoapply-agent/internal/infrastructure/browser/rod"
	"autoapply-agent/internal/infrastructure/htmlclean"
	"autoapply-agent/internal/infrastructure/llm/gemini"
	"autoapply-agent/internal/infrastructure/llm/openrouter"
	"autoapply-agent/internal/infrastructure/logger"
	"autoapply-agent/internal/infrastructure/userinteraction"
	"autoapply-agent/internal/usecase/autoapply"
	"autoapply-agent/internal/usecase/describer"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

var ErrUnknownProvider = errors.New("unknown llm provider")

type Container struct {
	Logger    output.LoggerPort
	LLM       output.LLMPort
	Describer output.PageDescriber
	Browser   output.BrowserLauncher
	Console   *userinteraction.ConsoleUserInteraction
	Agent     *autoapply.Agent
	Queue     *service.RunQueue
}

type Config struct {
	LLMProvider      string
	OpenRouterAPIKey string
	OpenRouterModel  string
	GeminiAPIKey     string
	GeminiModel      string

	Browser     rod.BrowserConfig
	// Headless applies to runs that do not choose a browser mode themselves.
	Headless    bool
	Agent       autoapply.Config
	CleanMarkup bool
	Workers     int
	Log         logger.Config

	// ConsoleIn and ConsoleOut default to the process stdin and stdout.
	ConsoleIn  io.Reader
	ConsoleOut io.Writer
}

func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	llm, err := newLLM(ctx, cfg, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	pageDescriber, err := describer.New(llm, log)
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to create page describer: %w", err)
	}

	in, out := cfg.ConsoleIn, cfg.ConsoleOut
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	console := userinteraction.NewConsoleUserInteraction(in, out)

	browser := rod.NewLauncher(cfg.Browser, log.WithField("component", "browser"))

	opts := []autoapply.Option{autoapply.WithOperator(console)}
	if cfg.CleanMarkup {
		opts = append(opts, autoapply.WithMarkupFilter(func(markup string) string {
			return htmlclean.Clean(markup, nil)
		}))
	}
	agent := autoapply.New(browser, pageDescriber, log, cfg.Agent, opts...)

	log.Info("Container initialized",
		"provider", providerName(cfg.LLMProvider),
		"workers", cfg.Workers,
		"cleanMarkup", cfg.CleanMarkup,
	)

	return &Container{
		Logger:    log,
		LLM:       llm,
		Describer: pageDescriber,
		Browser:   browser,
		Console:   console,
		Agent:     agent,
		Queue:     service.NewRunQueue(agent, log.WithField("component", "queue"), cfg.Workers),
	}, nil
}

func providerName(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if p == "" {
		return ProviderOpenRouter
	}
	return p
}

func newLLM(ctx context.Context, cfg Config, log output.LoggerPort) (output.LLMPort, error) {
	switch provider := providerName(cfg.LLMProvider); provider {
	case ProviderOpenRouter:
		if cfg.OpenRouterAPIKey == "" {
			return nil, errors.New("OPENROUTER_API_KEY is required for the openrouter provider")
		}
		llmCfg := openrouter.DefaultConfig(cfg.OpenRouterAPIKey, cfg.OpenRouterModel)
		llmCfg.Logger = log.WithField("component", "openrouter")
		return openrouter.NewOpenRouterAdapter(llmCfg), nil
	case ProviderGemini:
		llmCfg := gemini.DefaultConfig(cfg.GeminiAPIKey)
		if cfg.GeminiModel != "" {
			llmCfg.Model = cfg.GeminiModel
		}
		llmCfg.Logger = log.WithField("component", "gemini")
		adapter, err := gemini.NewGeminiAdapter(ctx, llmCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return adapter, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
}

// Close drains the run queue, then flushes the logger.
func (c *Container) Close(ctx context.Context) error {
	var err error
	if c.Queue != nil {
		err = c.Queue.Close(ctx)
	}
	if c.Logger != nil {
		c.Logger.Close()
	}
	return err
}
