package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/policyshield/internal/adapters/driven/ai"
	"github.com/custodia-labs/policyshield/internal/adapters/driven/config/file"
	"github.com/custodia-labs/policyshield/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/policyshield/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/policyshield/internal/adapters/driving/cli"
	"github.com/custodia-labs/policyshield/internal/core/domain"
	"github.com/custodia-labs/policyshield/internal/core/ports/driven"
	"github.com/custodia-labs/policyshield/internal/core/ports/driving"
	"github.com/custodia-labs/policyshield/internal/core/services"
	"github.com/custodia-labs/policyshield/internal/logger"
)

// openSettings opens config.toml in configDir.
func openSettings(configDir string) (driving.SettingsService, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config store: %w", err)
	}
	return services.NewSettingsService(store), nil
}

// validateLLM builds the configured LLM client and pings it.
func validateLLM(ctx context.Context, settings *domain.LLMSettings) error {
	llm, err := ai.CreateAndValidateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	return llm.Close()
}

// buildServices wires the shield, its history and the config watcher from settings.
func buildServices(ctx context.Context, settings *domain.AppSettings, configDir string) (*cli.Services, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config directory: %w", err)
		}
		configDir = dir
	}

	var closers []func() error
	closeAll := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (*cli.Services, error) {
		if cerr := closeAll(); cerr != nil {
			logger.Warn("cleanup after failed startup: %v", cerr)
		}
		return nil, err
	}

	llm, err := ai.CreateAndValidateLLMService(ctx, &settings.LLM)
	if err != nil {
		return nil, err
	}
	closers = append(closers, llm.Close)
	logger.Debug("llm: %s (%s)", settings.LLM.Provider, llm.ModelName())

	store, closeStore, err := openEvaluationStore(settings.History, configDir)
	if err != nil {
		return fail(err)
	}
	if closeStore != nil {
		closers = append(closers, closeStore)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return fail(err)
	}

	guardrails := settings.Shield.Guardrails
	var rules *file.GuardrailFile
	if settings.Shield.RulesFile != "" {
		rules, err = file.NewGuardrailFile(settings.Shield.RulesFile, settings.Shield.Guardrails)
		if err != nil {
			return fail(err)
		}
		if guardrails, err = rules.Load(); err != nil {
			return fail(fmt.Errorf("load guardrails: %w", err))
		}
		logger.Debug("guardrails loaded from %s", rules.Path())
	}

	shield, err := services.NewShieldService(services.ShieldConfig{
		AuthPhrase: settings.Shield.AuthPhrase,
		Guardrails: guardrails,
		LLM:        llm,
		Store:      store,
		Prompts:    prompts,
	})
	if err != nil {
		return fail(err)
	}

	return &cli.Services{
		Shield:  shield,
		History: services.NewHistoryService(store),
		Watch:   watchConfig(shield, rules, prompts),
		Close:   closeAll,
	}, nil
}

// openEvaluationStore opens the configured history backend.
// The returned close func is nil for backends without resources.
func openEvaluationStore(h domain.HistorySettings, configDir string) (driven.EvaluationStore, func() error, error) {
	switch h.Backend {
	case domain.HistoryBackendMemory:
		return memory.NewEvaluationStore(), nil, nil
	case domain.HistoryBackendSQLite:
		dataDir := h.DataDir
		if dataDir == "" {
			dataDir = filepath.Join(configDir, "data")
		}
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open history: %w", err)
		}
		logger.Debug("history: %s", store.Path())
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown history backend %q", domain.ErrInvalidInput, h.Backend)
	}
}

// watchConfig reloads the rules file and prompt templates on change.
// A rules file that fails to parse keeps the previous guardrails.
func watchConfig(shield *services.ShieldService, rules *file.GuardrailFile, prompts *file.PromptStore) func(context.Context) error {
	return func(ctx context.Context) error {
		w, err := file.NewWatcher(file.DefaultDebounce)
		if err != nil {
			return err
		}
		defer w.Close()

		if rules != nil {
			err := w.Watch(rules.Path(), func() {
				g, err := rules.Load()
				if err != nil {
					logger.Warn("keeping previous guardrails: %v", err)
					return
				}
				if err := shield.SetGuardrails(g); err != nil {
					logger.Warn("keeping previous guardrails: %v", err)
				}
			})
			if err != nil {
				return err
			}
		}

		if err := os.MkdirAll(prompts.Dir(), 0700); err != nil {
			return fmt.Errorf("create prompt directory: %w", err)
		}
		if err := w.Watch(prompts.Dir(), func() {
			logger.Info("prompt templates changed, reloading")
			prompts.Reload()
		}); err != nil {
			return err
		}

		return w.Run(ctx)
	}
}
