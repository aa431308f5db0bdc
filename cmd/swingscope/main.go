package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ayusman/swingscope/internal/app"
	"github.com/ayusman/swingscope/internal/config"
	"github.com/ayusman/swingscope/internal/server"
	"github.com/ayusman/swingscope/internal/store"
	"github.com/ayusman/swingscope/internal/tray"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  swingscope [flags]                 serve the API and dashboard
  swingscope extract [flags] VIDEO   detect poses in a video
  swingscope analyze [flags] FILE    analyse a pose sequence file

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "extract":
			if err := runExtract(os.Args[2:]); err != nil {
				log.Fatalf("extract: %v", err)
			}
			return
		case "analyze":
			if err := runAnalyze(os.Args[2:]); err != nil {
				log.Fatalf("analyze: %v", err)
			}
			return
		}
	}

	addr := flag.String("addr", ":8080", "HTTP listen address")
	dataDir := flag.String("data", defaultDataDir(), "data directory holding the database")
	tuning := flag.String("tuning", "", "JSON tuning file overlaying the analysis defaults")
	pluginDir := flag.String("plugins", "", "plugin directory (default <data>/plugins)")
	webDir := flag.String("web", "", "static web directory (searched when empty)")
	withTray := flag.Bool("tray", false, "show a system tray status menu")
	flag.Usage = usage
	flag.Parse()

	fmt.Println("Swingscope - Swing Analysis")

	if err := os.MkdirAll(*dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	st, err := store.New(filepath.Join(*dataDir, "swingscope.db"))
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	cfg, err := runnerConfig(*tuning)
	if err != nil {
		log.Fatalf("Failed to load tuning: %v", err)
	}
	cfg.Store = st
	cfg.PluginDir = *pluginDir
	if cfg.PluginDir == "" {
		cfg.PluginDir = filepath.Join(*dataDir, "plugins")
	}

	runner := app.New(cfg)
	if err := runner.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	} else if n := len(runner.PluginManager().List()); n > 0 {
		log.Printf("Loaded %d plugins from %s", n, cfg.PluginDir)
	}

	staticDir := *webDir
	if staticDir == "" {
		staticDir = findWebDir(*dataDir)
	}
	if staticDir != "" {
		fmt.Printf("Serving static files from: %s\n", staticDir)
	}

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Store:     st,
		Runner:    runner,
	})

	if !*withTray {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
		return
	}

	go func() {
		fmt.Printf("Starting server on %s\n", *addr)
		if err := srv.ListenAndServe(*addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	t := tray.New()
	runner.Subscribe(t.HandleEvent)
	t.OnDashboard(func() { openBrowser(dashboardURL(*addr)) })
	t.OnQuit(func() { runner.Wait() })
	t.Run()
}

// runnerConfig returns the runner defaults overlaid with the tuning file, if any.
func runnerConfig(tuningPath string) (app.Config, error) {
	cfg := app.DefaultConfig()
	if tuningPath == "" {
		return cfg, nil
	}
	tc, err := config.LoadTuningConfig(tuningPath)
	if err != nil {
		return cfg, err
	}
	cfg.Swing = tc.ApplySwing(cfg.Swing)
	cfg.Handedness = tc.ApplyHandedness(cfg.Handedness)
	if err := cfg.Swing.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func defaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".swingscope"
	}
	return filepath.Join(homeDir, ".swingscope")
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and <data>/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	for _, p := range []string{"web", "../web", "../../web", filepath.Join(dataDir, "web")} {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}
	return ""
}

func dashboardURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Printf("Failed to open browser: %v", err)
	}
}
