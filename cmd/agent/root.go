package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"autoapply-agent/internal/di"
	"autoapply-agent/internal/domain/entity"
	"autoapply-agent/internal/infrastructure/browser/rod"
	"autoapply-agent/internal/infrastructure/env"
	"autoapply-agent/internal/infrastructure/logger"
	"autoapply-agent/internal/usecase/autoapply"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agent",
		Short:         "Fills job applications in a real browser and leaves the final submit to you.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newServeCmd())
	return root
}

// loadConfig reads the container configuration from the environment.
func loadConfig(envs *env.EnvService) di.Config {
	browserCfg := rod.DefaultConfig()
	browserCfg.NavTimeout = envs.GetDuration("BROWSER_NAV_TIMEOUT", 30*time.Second)
	browserCfg.Bin = envs.Get("BROWSER_BIN")

	agentCfg := autoapply.DefaultConfig()
	agentCfg.SettleDelay = envs.GetDuration("SETTLE_DELAY", agentCfg.SettleDelay)
	agentCfg.CaptchaGrace = envs.GetDuration("CAPTCHA_GRACE", agentCfg.CaptchaGrace)
	agentCfg.OutputDir = envs.GetWithDefault("OUTPUT_DIR", agentCfg.OutputDir)

	logCfg := logger.DefaultConfig()
	logCfg.Level = envs.GetWithDefault("LOG_LEVEL", logCfg.Level)
	logCfg.LogFile = envs.Get("LOG_FILE")

	return di.Config{
		LLMProvider:      envs.GetWithDefault("LLM_PROVIDER", di.ProviderOpenRouter),
		OpenRouterAPIKey: envs.Get("OPENROUTER_API_KEY"),
		OpenRouterModel:  envs.GetWithDefault("OPENROUTER_MODEL_NAME", "openai/gpt-4o-mini"),
		GeminiAPIKey:     envs.Get("GEMINI_API_KEY"),
		GeminiModel:      envs.Get("GEMINI_MODEL_NAME"),
		Browser:          browserCfg,
		Headless:         envs.GetBool("BROWSER_HEADLESS", false),
		Agent:            agentCfg,
		CleanMarkup:      envs.GetBool("CLEAN_MARKUP", false),
		Workers:          envs.GetInt("WORKERS", 2),
		Log:              logCfg,
	}
}

func loadProfile(path string) (entity.UserProfile, error) {
	var profile entity.UserProfile
	data, err := os.ReadFile(path)
	if err != nil {
		return profile, fmt.Errorf("read profile: %w", err)
	}
	if err := json.Unmarshal(data, &profile); err != nil {
		return profile, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return profile, nil
}
