package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"colorplane/api"
	"colorplane/config"
	"colorplane/logging"
	"colorplane/storage"
	"colorplane/theme"
	"colorplane/web"
)

var (
	dataDir    string
	listen     string
	listenPort int
	logLevel   string
	appVersion = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "colorplane",
	Short: "colorplane – agent color styles service",
	Long:  "Colorplane stores agent profiles and serves the UI style classes derived from each agent's color.",
	RunE:  run,
}

var classesCmd = &cobra.Command{
	Use:   "classes <color>...",
	Short: "Print the style classes for one or more colors",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := make([]theme.ClassSet, 0, len(args))
		for _, c := range args {
			out = append(out, theme.Resolve(c))
		}
		return printJSON(cmd.OutOrStdout(), out)
	},
}

var colorsCmd = &cobra.Command{
	Use:   "colors",
	Short: "Print the recognized colors and their border classes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		m := theme.ColorMap()
		for _, c := range theme.Colors() {
			if _, err := fmt.Fprintf(w, "%-8s %s\n", c, m[c]); err != nil {
				return err
			}
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  "Manage colorplane configuration files.",
}

var configGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a default configuration file",
	Long:  "Generate a default colorplane.config file in the specified data directory (or current directory if not specified).",
	RunE:  runConfigGenerate,
}

func init() {
	wd, _ := os.Getwd()
	rootCmd.Version = appVersion
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	rootCmd.Flags().StringVar(&dataDir, "data-dir", wd, "Data directory (default: current directory)")
	rootCmd.Flags().StringVar(&listen, "listen", "all", "IP address to listen on (default: all)")
	rootCmd.Flags().IntVar(&listenPort, "listen-port", 8080, "Port to listen on (default: 8080)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	configGenerateCmd.Flags().StringVar(&dataDir, "data-dir", wd, "Data directory where config file will be created (default: current directory)")
	configCmd.AddCommand(configGenerateCmd)
	rootCmd.AddCommand(configCmd, classesCmd, colorsCmd)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(dataDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override config with CLI flags only if they were explicitly provided
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	} else if cfg.DataDir == "" || cfg.DataDir == "." {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("listen") || cmd.Flags().Changed("listen-port") {
		cfg.ListenAddr = listenAddr(listen, listenPort)
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	logging.Init(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	logger := logging.Component("main")

	dataDirAbs, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.DataDir = dataDirAbs

	store := storage.New(cfg.DataDir)
	if err := store.EnsureDirs(); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	layout, err := web.NewLayout(web.Meta{
		Title:                 cfg.SiteTitle,
		Description:           cfg.SiteDescription,
		ContentSecurityPolicy: cfg.ContentSecurityPolicy,
	}, store, logging.Component("web"))
	if err != nil {
		return fmt.Errorf("initialize layout: %w", err)
	}

	mux := http.NewServeMux()
	api.NewServer(store, logging.Component("api")).Register(mux)
	theme.NewHandler(logging.Component("theme")).Register(mux)
	mux.Handle("/", layout)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           layout.Wrap(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printListeningAddresses(logger, cfg.ListenAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}
	logger.Info().Msg("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("server shutdown")
	}
	return nil
}

func runConfigGenerate(cmd *cobra.Command, args []string) error {
	dataDirAbs, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := config.Default()
	cfg.DataDir = dataDirAbs

	cfgPath := filepath.Join(dataDirAbs, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("config file already exists: %s", cfgPath)
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Generated default config file: %s\n", cfgPath)
	return nil
}

func listenAddr(host string, port int) string {
	if host != "" && host != "all" {
		return net.JoinHostPort(host, fmt.Sprint(port))
	}
	return fmt.Sprintf(":%d", port)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printListeningAddresses(logger zerolog.Logger, addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		logger.Info().Msgf("listening on http://%s", addr)
		return
	}

	if host != "" && host != "0.0.0.0" && host != "::" {
		logger.Info().Msgf("listening on http://%s", net.JoinHostPort(host, port))
		return
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		logger.Info().Msgf("listening on http://0.0.0.0:%s", port)
		return
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			logger.Info().Msgf("listening on http://%s:%s", ipnet.IP.String(), port)
		}
	}
	logger.Info().Msgf("listening on http://localhost:%s", port)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
