package main

import (
	"log/slog"

	"llmdeploy/internal/config"
	"llmdeploy/internal/generator"
	"llmdeploy/internal/github"
	"llmdeploy/internal/gitops"
	"llmdeploy/internal/notify"
)

func newPublisher(cfg *config.Config, logger *slog.Logger) (*github.Client, error) {
	gh := cfg.GitHub
	workspace := gitops.NewWorkspace(gh.Workdir, gitops.Author{
		Name:  gh.AuthorName,
		Email: gh.AuthorEmail,
	}, logger)

	return github.New(github.Options{
		Owner:         gh.Owner,
		OwnerIsOrg:    gh.OwnerIsOrg,
		Token:         gh.Token,
		APIURL:        gh.APIURL,
		Branch:        gh.Branch,
		PollInterval:  gh.PollInterval.Duration,
		MaxChecks:     gh.MaxChecks,
		BuiltSettle:   gh.BuiltSettle.Duration,
		TimeoutSettle: gh.TimeoutSettle.Duration,
		PushAttempts:  gh.PushAttempts,
		PushBackoff:   gh.PushBackoff.Duration,
	}, workspace, logger)
}

func newGenerator(cfg *config.Config, logger *slog.Logger) (*generator.Generator, error) {
	llm, err := generator.NewLLMClient(generator.LLMOptions{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
		Timeout: cfg.LLM.Timeout.Duration,
	})
	if err != nil {
		return nil, err
	}
	return generator.New(llm, cfg.GitHub.Owner, logger)
}

func newNotifier(cfg *config.Config, logger *slog.Logger) *notify.Notifier {
	return notify.New(notify.Options{
		Timeout:      cfg.Notify.Timeout.Duration,
		Attempts:     cfg.Notify.Attempts,
		InitialDelay: cfg.Notify.InitialDelay.Duration,
	}, logger)
}
