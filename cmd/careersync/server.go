package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"golang.org/x/net/netutil"
	"golang.org/x/sync/errgroup"

	"github.com/kalambet/careersync/internal/api"
	"github.com/kalambet/careersync/internal/config"
	"github.com/kalambet/careersync/internal/extract"
	"github.com/kalambet/careersync/internal/match"
	"github.com/kalambet/careersync/internal/profile"
	"github.com/kalambet/careersync/internal/recommend"
	"github.com/kalambet/careersync/internal/storage"
	"github.com/kalambet/careersync/internal/taxonomy"
)

var startCmd = &cobra.Command{
	Use:     "start",
	Aliases: []string{"serve"},
	Short:   "Start the careersync server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running careersync server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show careersync system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the MCP surface over stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPStdio()
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "careersync.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

// buildDeps assembles the engine over an opened store. The caller owns
// the store and must close it.
func buildDeps(cfg config.Config, store *storage.Store, token string) (api.AppDeps, error) {
	tax, err := taxonomy.Default()
	if err != nil {
		return api.AppDeps{}, fmt.Errorf("loading skill taxonomy: %w", err)
	}
	matcher, err := match.Default()
	if err != nil {
		return api.AppDeps{}, fmt.Errorf("loading occupation catalog: %w", err)
	}
	courses, err := recommend.Default()
	if err != nil {
		return api.AppDeps{}, fmt.Errorf("loading course catalog: %w", err)
	}

	return api.AppDeps{
		Store:          store,
		Profile:        profile.NewManager(store),
		Extractor:      extract.New(tax),
		Matcher:        matcher,
		Courses:        courses,
		Taxonomy:       tax,
		Token:          token,
		MaxUploadBytes: cfg.Upload.MaxBytes,
		HistoryLimit:   cfg.Sessions.HistoryLimit,
	}, nil
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "careersync version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Ensure API token exists in platform secret store.
	apiToken, err := config.GetAPIToken(config.NewKeychain())
	if err != nil {
		return fmt.Errorf("initializing API token: %w", err)
	}
	slog.Info("API bearer token available")

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("careersync is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("careersync is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("closing storage", "error", err)
		}
	}()

	deps, err := buildDeps(cfg, store, apiToken)
	if err != nil {
		return err
	}

	// Public matching surface at the root, management surface under /app.
	topRouter := chi.NewRouter()
	topRouter.Mount("/", api.NewEngineHandler(deps))
	topRouter.Mount("/app", api.NewAppHandler(deps))

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{Handler: topRouter}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	if cfg.Server.MaxConns > 0 {
		ln = netutil.LimitListener(ln, cfg.Server.MaxConns)
	}

	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Profile:   deps.Profile,
		Extractor: deps.Extractor,
		Matcher:   deps.Matcher,
		Courses:   deps.Courses,
		Taxonomy:  deps.Taxonomy,
	})
	mcpHTTP := server.NewStreamableHTTPServer(mcpSrv)
	mcpAddr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.MCPPort)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("careersync listening", "addr", addr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("MCP server listening", "addr", mcpAddr)
		if err := mcpHTTP.Start(mcpAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mcpHTTP.Shutdown(shutdownCtx); err != nil {
			slog.Warn("mcp shutdown", "error", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// runMCPStdio serves tools and resources over stdio for MCP clients
// that spawn the binary directly.
func runMCPStdio() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Keep logs off stdout, which carries the MCP transport.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	deps, err := buildDeps(cfg, store, "")
	if err != nil {
		return err
	}

	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Profile:   deps.Profile,
		Extractor: deps.Extractor,
		Matcher:   deps.Matcher,
		Courses:   deps.Courses,
		Taxonomy:  deps.Taxonomy,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stdioSrv := server.NewStdioServer(mcpSrv)
	if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("careersync is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop careersync (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to careersync (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}
	printStatus("MCP port", "%d", cfg.Server.MCPPort)

	// Show profile and session counts if the server is running.
	apiToken, tokenErr := config.GetAPIToken(config.NewKeychain())
	if tokenErr == nil && resp != nil && resp.StatusCode == 200 {
		profResp, err := apiGet(client, serverURL+"/app/profile", apiToken)
		if err == nil {
			var prof struct {
				Skills []struct {
					Name string `json:"name"`
				} `json:"skills"`
			}
			if decodeJSON(profResp, &prof) == nil {
				printStatus("Profile skills", "%d", len(prof.Skills))
			}
		}
		sessResp, err := apiGet(client, serverURL+"/app/sessions?limit=100", apiToken)
		if err == nil {
			var sessions []struct {
				ID string `json:"id"`
			}
			if decodeJSON(sessResp, &sessions) == nil {
				printStatus("Sessions", "%s", countLabel(len(sessions), 100))
			}
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func countLabel(count, limit int) string {
	if count >= limit {
		return fmt.Sprintf("%d+", count)
	}
	return fmt.Sprintf("%d", count)
}

func apiGet(client *http.Client, url, token string) (*http.Response, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return client.Do(req)
}
