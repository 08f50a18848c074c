// Package main provides the arclip CLI application entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"arclip/internal/capture"
	"arclip/internal/core"
	httpserver "arclip/internal/http"
	"arclip/internal/library"
	"arclip/internal/notes"
	"arclip/internal/player"
	"arclip/internal/store"
	"arclip/internal/vault"
	"arclip/pkg/archive"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "arclip",
	Short: "arclip - archive.org media resolver and clip capture",
	Long: `arclip resolves archive.org items into playable media, captures audio
clips from them with a guaranteed raw fallback, and files the results into a
local vault with a searchable clip catalog.`,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <item>",
	Short: "Resolve an archive.org identifier or URL into playable media",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

var clipCmd = &cobra.Command{
	Use:   "clip <item>",
	Short: "Capture an audio clip from an archive.org item",
	Args:  cobra.ExactArgs(1),
	RunE:  runClip,
}

var listCmd = &cobra.Command{
	Use:   "list <item>",
	Short: "List captured clips of an archive.org item",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("vault-root", "./vault", "directory clips and notes are stored under")
	rootCmd.PersistentFlags().String("library-path", "./clips.db", "sqlite clip catalog path")
	rootCmd.PersistentFlags().String("ffmpeg-path", "ffmpeg", "ffmpeg binary")
	rootCmd.PersistentFlags().String("clip-format", "ogg", "compressed clip container format")
	rootCmd.PersistentFlags().Float64("max-clip-seconds", 60, "maximum clip span in seconds")
	rootCmd.PersistentFlags().String("server-host", "0.0.0.0", "HTTP server host")
	rootCmd.PersistentFlags().Int("server-port", 8080, "HTTP server port")
	rootCmd.PersistentFlags().Int("api-rate-limit", 60, "API requests per minute per client (0 disables)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}

	resolveCmd.Flags().String("start", "", "playback start position (h:mm:ss)")
	resolveCmd.Flags().Bool("note", false, "write a markdown note into the vault")

	clipCmd.Flags().String("start", "0:00", "clip start position (h:mm:ss)")
	clipCmd.Flags().String("end", "", "clip end position (h:mm:ss)")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(clipCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("ARCLIP")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	if v := viper.GetString("archive-metadata-url"); v != "" {
		cfg.Archive.MetadataBaseURL = v
	}
	if v := viper.GetString("archive-download-url"); v != "" {
		cfg.Archive.DownloadBaseURL = v
	}
	if v := viper.GetDuration("archive-timeout"); v > 0 {
		cfg.Archive.RequestTimeout = v
	}

	if v := viper.GetFloat64("max-clip-seconds"); v > 0 {
		cfg.Capture.MaxClipSeconds = v
	}
	if v := viper.GetString("ffmpeg-path"); v != "" {
		cfg.Capture.FFmpegPath = v
	}
	if v := viper.GetString("clip-format"); v != "" {
		cfg.Capture.CompressedFormat = v
	}
	cfg.Capture.TempDir = viper.GetString("temp-dir")

	if v := viper.GetString("vault-root"); v != "" {
		cfg.Vault.Root = v
	}
	if v := viper.GetString("library-path"); v != "" {
		cfg.Library.Path = v
	}

	if v := viper.GetString("server-host"); v != "" {
		cfg.Server.Host = v
	}
	if v := viper.GetInt("server-port"); v > 0 {
		cfg.Server.Port = v
	}
	cfg.Server.APIRequestsPerMinute = viper.GetInt("api-rate-limit")

	cfg.Log.Level = viper.GetString("log-level")

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func archiveClient() *archive.Client {
	return archive.NewClient(archive.Config{
		MetadataBaseURL: config.Archive.MetadataBaseURL,
		DownloadBaseURL: config.Archive.DownloadBaseURL,
		EmbedBaseURL:    config.Archive.EmbedBaseURL,
		RequestTimeout:  config.Archive.RequestTimeout,
	}, logger.Named("archive"))
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startRaw, _ := cmd.Flags().GetString("start")
	writeNote, _ := cmd.Flags().GetBool("note")

	var opts archive.ResolveOptions
	if startRaw != "" {
		opts.StartSeconds = float64(archive.ParseHMS(startRaw))
	}

	res, err := archiveClient().Resolve(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	if writeNote {
		v := vault.New(config.Vault.Root, logger.Named("vault"))
		path, err := v.SaveNote(notes.NoteFileName(res.Info.Title, res.Identifier), notes.Document(res))
		if err != nil {
			return fmt.Errorf("write note: %w", err)
		}
		fmt.Println(path)
		return nil
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(res)
}

func runClip(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startRaw, _ := cmd.Flags().GetString("start")
	endRaw, _ := cmd.Flags().GetString("end")
	if endRaw == "" {
		return fmt.Errorf("--end is required")
	}
	start := archive.ParseHMS(startRaw)
	end := archive.ParseHMS(endRaw)

	client := archiveClient()
	res, err := client.Resolve(ctx, args[0], archive.ResolveOptions{StartSeconds: float64(start)})
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}
	if res.BestFileURL == "" {
		return fmt.Errorf("item %s has no playable file", res.Identifier)
	}

	catalog, err := library.Open(config.Library.Path, logger.Named("library"))
	if err != nil {
		return fmt.Errorf("open clip catalog: %w", err)
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			logger.Warn("Failed to close clip catalog", zap.Error(err))
		}
	}()

	dedup := store.NewDedupStore(10000, 0.001)
	if keys, err := catalog.Keys(ctx); err != nil {
		logger.Warn("Failed to load clip keys", zap.Error(err))
	} else {
		dedup.Load(keys)
	}

	// The catalog stores the effective range the engine records, so the
	// duplicate check must key on the same normalized values.
	effStart, effEnd := capture.NormalizeRange(float64(start), float64(end), config.Capture.MaxClipSeconds)
	key := store.ClipKey(res.Identifier, int(effStart), int(effEnd))
	if dedup.Has(key) {
		return fmt.Errorf("clip %s already captured", key)
	}

	engine := capture.NewEngine(config.Capture, logger.Named("capture"))
	result, err := engine.Capture(ctx, player.NewNative(res.BestFileURL), capture.Request{
		Start: float64(start),
		End:   float64(end),
	})
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	v := vault.New(config.Vault.Root, logger.Named("vault"))
	name := notes.ClipFileName(time.Now(), int(result.Start), int(result.End), result.Format)
	path, err := v.SaveClip(name, result.Data)
	if err != nil {
		return fmt.Errorf("persist clip: %w", err)
	}

	clip := library.Clip{
		ID:         uuid.NewString(),
		Identifier: res.Identifier,
		Start:      int(result.Start),
		End:        int(result.End),
		Format:     result.Format,
		Path:       path,
		CreatedAt:  time.Now().UTC(),
	}
	if err := catalog.Add(ctx, clip); err != nil {
		logger.Warn("Failed to catalog clip", zap.Error(err))
	}

	fmt.Println(path)
	fmt.Println(notes.ClipEmbedLink(name, int(result.Start), int(result.End)))
	return nil
}

func runList(_ *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	catalog, err := library.Open(config.Library.Path, logger.Named("library"))
	if err != nil {
		return fmt.Errorf("open clip catalog: %w", err)
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			logger.Warn("Failed to close clip catalog", zap.Error(err))
		}
	}()

	identifier := archive.ExtractIdentifier(args[0])
	clips, err := catalog.List(ctx, identifier)
	if err != nil {
		return fmt.Errorf("list clips: %w", err)
	}
	if len(clips) == 0 {
		fmt.Printf("no clips captured for %s\n", identifier)
		return nil
	}

	for _, clip := range clips {
		fmt.Printf("%s  %s-%s  %-4s  %s\n",
			clip.CreatedAt.Format("2006-01-02 15:04"),
			archive.FormatHMS(clip.Start), archive.FormatHMS(clip.End),
			clip.Format, clip.Path)
	}
	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("Starting arclip",
		zap.String("vault", config.Vault.Root),
		zap.String("library", config.Library.Path))

	catalog, err := library.Open(config.Library.Path, logger.Named("library"))
	if err != nil {
		return fmt.Errorf("open clip catalog: %w", err)
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			logger.Warn("Failed to close clip catalog", zap.Error(err))
		}
	}()

	dedup := store.NewDedupStore(10000, 0.001)
	if keys, err := catalog.Keys(ctx); err != nil {
		logger.Warn("Failed to load clip keys", zap.Error(err))
	} else {
		dedup.Load(keys)
	}

	server := httpserver.NewServer(&config.Server, httpserver.Deps{
		Resolver:       archiveClient(),
		Capturer:       capture.NewEngine(config.Capture, logger.Named("capture")),
		Vault:          vault.New(config.Vault.Root, logger.Named("vault")),
		Catalog:        catalog,
		Dedup:          dedup,
		MaxClipSeconds: config.Capture.MaxClipSeconds,
	}, logger.Named("http"))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(gCtx)
	})

	logger.Info("arclip started",
		zap.String("http_addr", fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)))

	if err := g.Wait(); err != nil {
		logger.Error("arclip stopped with error", zap.Error(err))
		return err
	}

	logger.Info("arclip stopped gracefully")
	return nil
}
