package main

import (
	"encoding/json"
	"fmt"
	"os"

	"autoapply-agent/internal/di"
	"autoapply-agent/internal/domain/entity"
	"autoapply-agent/internal/infrastructure/env"

	"github.com/spf13/cobra"
)

type runFlags struct {
	url      string
	profile  string
	resume   string
	headless bool
	jsonOnly bool
}

func newRunCmd() *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one application attempt and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			envs := env.NewEnvService()
			cfg := loadConfig(envs)
			if !cmd.Flags().Changed("headless") {
				f.headless = cfg.Headless
			}
			return runOnce(cmd, cfg, f)
		},
	}

	cmd.Flags().StringVar(&f.url, "url", "", "job posting URL")
	cmd.Flags().StringVar(&f.profile, "profile", "", "path to the profile JSON file")
	cmd.Flags().StringVar(&f.resume, "resume", "", "path to the resume file to attach")
	cmd.Flags().BoolVar(&f.headless, "headless", false, "run the browser without a window")
	cmd.Flags().BoolVar(&f.jsonOnly, "json", false, "print only the JSON result")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("resume")

	return cmd
}

func runOnce(cmd *cobra.Command, cfg di.Config, f runFlags) error {
	var profile entity.UserProfile
	if f.profile != "" {
		p, err := loadProfile(f.profile)
		if err != nil {
			return err
		}
		profile = p
	}
	if _, err := os.Stat(f.resume); err != nil {
		return fmt.Errorf("resume not found: %w", err)
	}

	ctx := cmd.Context()
	container, err := di.NewContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer container.Close(ctx)

	result := container.Agent.Run(ctx, entity.RunRequest{
		JobURL:     f.url,
		Profile:    profile,
		ResumePath: f.resume,
		Headless:   f.headless,
	})

	if !f.jsonOnly {
		container.Console.ShowResult(result)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("run finished with status %s", result.Status)
	}
	return nil
}
