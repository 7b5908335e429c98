package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/petasbytes/mlbchat/internal/agent"
	"github.com/petasbytes/mlbchat/internal/config"
	"github.com/petasbytes/mlbchat/internal/prompt"
	"github.com/petasbytes/mlbchat/internal/provider"
	"github.com/petasbytes/mlbchat/internal/runner"
	"github.com/petasbytes/mlbchat/internal/statsmcp"
	"github.com/petasbytes/mlbchat/internal/transcript"
)

var (
	cfgFile  string
	teamName string
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mlbchat",
	Short: "Trade recommendations for an MLB team via escalating prompting strategies",
	Long: `mlbchat asks Claude what trades an MLB team should make before the deadline,
escalating from a bare prompt, to a general-manager persona, to a tool-using
conversation backed by a remote baseball statistics server.`,
	SilenceUsage: true,
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify connectivity to the Claude API and the stats server",
	RunE:  runTest,
}

var tradesCmd = &cobra.Command{
	Use:   "trades",
	Short: "Run the three trade-recommendation strategies for a team",
	RunE:  runTrades,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the JSON settings file")
	_ = rootCmd.MarkPersistentFlagRequired("config")

	tradesCmd.Flags().StringVar(&teamName, "team", "", "an MLB team, for example: Washington Nationals")
	_ = tradesCmd.MarkFlagRequired("team")

	rootCmd.AddCommand(testCmd, tradesCmd)

	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runTest exercises both external collaborators once: a single Messages call
// and a tool-catalog listing.
func runTest(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	r := runner.New(provider.NewClient(cfg.Claude.APIKey), nil)
	msg, err := r.RunTurn(ctx, runner.TurnRequest{
		Model:       anthropic.Model(cfg.Claude.Model),
		MaxTokens:   cfg.Claude.MaxTokens,
		Temperature: cfg.Claude.Temperature,
		System:      "You are a motivational speaker. You travel the country telling audiences how they should live their lives.",
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("How can a person live a good life?")),
		},
	})
	if err != nil {
		return fmt.Errorf("claude connectivity: %w", err)
	}
	logger.Info("claude reachable", "model", cfg.Claude.Model)
	fmt.Println(runner.AssistantText(msg))

	stats := statsmcp.New(cfg.MLBStats.Server)
	defer stats.Close()
	catalog, err := stats.FetchCatalog(ctx)
	if err != nil {
		return fmt.Errorf("stats server connectivity: %w", err)
	}
	names := make([]string, 0, len(catalog))
	for _, d := range catalog {
		names = append(names, d.Name)
	}
	logger.Info("stats server reachable", "server", cfg.MLBStats.Server, "tools", names)
	return nil
}

func runTrades(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	stats := statsmcp.New(cfg.MLBStats.Server)
	defer stats.Close()
	r := runner.New(provider.NewClient(cfg.Claude.APIKey), stats)
	orch := agent.New(cfg, r, r, stats, logger)

	for _, res := range orch.RunAll(ctx, teamName) {
		fmt.Printf("================ %s ==================\n", strategyHeading(res.Strategy))
		if res.Err != nil {
			logger.Error("strategy did not complete", "strategy", res.Strategy, "error", res.Err)
		}
		if res.Strategy == prompt.ToolUsing && len(res.Transcript) > 0 {
			rendered, err := transcript.Render(res.Transcript)
			if err != nil {
				logger.Error("render transcript", "error", err)
			} else {
				fmt.Println(rendered)
			}
		}
		if res.Recommendation != "" {
			fmt.Println(res.Recommendation)
		}
	}
	return nil
}

func strategyHeading(s prompt.Strategy) string {
	switch s {
	case prompt.Simpleton:
		return "Simpleton"
	case prompt.RoleBased:
		return "Role-based"
	case prompt.ToolUsing:
		return "Tool-use"
	}
	return string(s)
}
