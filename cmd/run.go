package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutoria/internal/app"
	"github.com/abhisek/tutoria/internal/assess"
	"github.com/abhisek/tutoria/internal/config"
	"github.com/abhisek/tutoria/internal/explain"
	"github.com/abhisek/tutoria/internal/llm"
	"github.com/abhisek/tutoria/internal/screens/home"
	"github.com/abhisek/tutoria/internal/store"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command, startInSession bool) error {
	st, cfg, dbPath, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	eventRepo := st.EventRepo()
	svc, err := newService(cfg, eventRepo)
	if err != nil {
		return err
	}

	opts := app.Options{
		Deps: home.Deps{
			Service: svc,
			Events:  eventRepo,
			History: st.HistoryRepo(),
			APIURL:  cfg.APIURL,
		},
		StartInSession: startInSession,
	}
	if explainer, name := newExplainer(cmd.Context(), cfg, eventRepo); explainer != nil {
		opts.Explainer = explainer
		opts.ExplainerName = name
	}
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		opts.DebugLog = filepath.Join(filepath.Dir(dbPath), "debug.log")
	}

	return app.Run(opts)
}

// newService builds the assessment client. Calls are recorded in repo when
// it is non-nil.
func newService(cfg config.Config, repo store.EventRepo) (assess.Service, error) {
	httpSvc, err := assess.NewHTTPService(cfg.Service())
	if err != nil {
		return nil, fmt.Errorf("assessment service: %w", err)
	}
	if repo == nil {
		return httpSvc, nil
	}
	return assess.WithLogging(httpSvc, repo, httpSvc.BaseURL()), nil
}

// llmConfig selects the explanation provider. The second result is false
// when explanations are disabled or no provider can be found.
func llmConfig(cfg config.Config) (llm.Config, bool) {
	switch cfg.LLMProvider {
	case config.ProviderNone:
		return llm.Config{}, false
	case "":
		return llm.EnvConfig()
	}
	c := llm.ConfigFromEnv()
	c.Provider = cfg.LLMProvider
	return c, true
}

// newExplainer builds the explanation service. Explanations are optional:
// configuration problems are reported on stderr and yield nil.
func newExplainer(ctx context.Context, cfg config.Config, repo store.EventRepo) (*explain.Service, string) {
	llmCfg, ok := llmConfig(cfg)
	if !ok {
		if !cfg.ExplanationsDisabled() {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", llm.ErrNotConfigured)
			fmt.Fprintln(os.Stderr, "Explanations will be unavailable.")
		}
		return nil, ""
	}

	provider, err := llm.NewProvider(ctx, llmCfg, repo)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Explanations will be unavailable.")
		return nil, ""
	}
	return explain.NewService(provider, explain.DefaultConfig()), llmCfg.Provider + "/" + provider.ModelID()
}
