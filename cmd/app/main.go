package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"taicc-readiness/internal/config"
	"taicc-readiness/internal/questions"
	"taicc-readiness/utilities"
)

const (
	version         = "1.0.0"
	shutdownTimeout = 15 * time.Second
)

var (
	configPath string
	debug      bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "taicc",
		Short:        "TAICC AI Readiness Assessment service",
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.xml", "path to the XML configuration file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE:  runServe,
	})
	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Validate the configuration and question bank and report degraded features",
		RunE:  runCheck,
	})
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		printStartUpBanner()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := utilities.SetupLogging(cfg.Context.LogDir, debug); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer utilities.Sync()
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, cfg)
	if err != nil {
		utilities.Error("Startup aborted: %v", err)
		return err
	}
	defer app.close()

	r, err := app.router()
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", cfg.Context.Host, cfg.Context.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		utilities.Info("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	utilities.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	out := cmd.OutOrStdout()

	bank, err := questions.LoadFile(cfg.THIRD_PARTY.QuestionBank)
	if err != nil {
		fmt.Fprintf(out, "question bank: FAILED (%v)\n", err)
		return err
	}
	fmt.Fprintf(out, "question bank: ok (%d domains, %d tiers)\n", len(bank.Domains()), len(bank.Tiers()))

	ok := printFeatures(out, cfg.Features())
	if !ok {
		return errors.New("text generation is not configured: set GEMINI_API_KEY")
	}
	return nil
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("TAICC", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("TAICC AI Readiness API (v%s)\n\n", version)
}
