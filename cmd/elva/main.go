package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/elva-ai/elva-tui/internal/api"
	"github.com/elva-ai/elva-tui/internal/config"
	"github.com/elva-ai/elva-tui/internal/store"
	"github.com/elva-ai/elva-tui/internal/tui"
	"github.com/elva-ai/elva-tui/internal/version"
)

func main() {
	// Essential command line flags only (GNU-style double dashes)
	configPathFlag := flag.String("config", "", "Path to JSON configuration file (default: ~/.config/elva/config.json)")
	backendFlag := flag.String("backend", "", "Backend base URL (default: http://localhost:8001)")
	userFlag := flag.String("user", "", "User id sent with chat messages")
	setupFlag := flag.Bool("setup", false, "Write a default configuration file and exit")
	versionFlag := flag.Bool("version", false, "Show version information and exit")

	// Override flag usage text to show clean, simple usage
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\n", version.GetVersionString())
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                  # Run with default configuration\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --setup                          # Write a default config file\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --backend http://localhost:8001  # Point at a different backend\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --version                        # Show version information\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --config string\n        Path to JSON configuration file (default: ~/.config/elva/config.json)\n")
		fmt.Fprintf(os.Stderr, "  --backend string\n        Backend base URL (overrides config)\n")
		fmt.Fprintf(os.Stderr, "  --user string\n        User id sent with chat messages (overrides config)\n")
		fmt.Fprintf(os.Stderr, "  --setup\n        Write a default configuration file and exit\n")
		fmt.Fprintf(os.Stderr, "  --version\n        Show version information and exit\n\n")
		fmt.Fprintf(os.Stderr, "Environment Variables:\n")
		fmt.Fprintf(os.Stderr, "  ELVA_CONFIG   Override default config file path\n")
		fmt.Fprintf(os.Stderr, "  ELVA_BACKEND  Override backend base URL\n\n")
		fmt.Fprintf(os.Stderr, "For all other settings (theme, timeouts, key bindings), edit the config file.\n")
	}

	flag.Parse()

	if *versionFlag {
		fmt.Println(version.GetDetailedVersionString())
		return
	}

	configPath := getConfigPath(*configPathFlag)

	if *setupFlag {
		runSetup(configPath)
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: could not load configuration: %v", err)
		cfg = config.DefaultConfig()
	}

	if v := os.Getenv("ELVA_BACKEND"); v != "" {
		cfg.BackendURL = v
	}
	if *backendFlag != "" {
		cfg.BackendURL = *backendFlag
	}
	if *userFlag != "" {
		cfg.UserID = *userFlag
	}

	client := api.NewClient(cfg.BackendURL, cfg.GetTimeout())

	// The local settings store mirrors what a browser would keep in
	// localStorage; the app degrades gracefully without it.
	var settings *store.Store
	storePath := cfg.StorePath
	if storePath == "" {
		storePath = config.DefaultStorePath()
	}
	if storePath != "" {
		if s, err := store.Open(context.Background(), storePath); err == nil {
			settings = s
			defer func() { _ = s.Close() }()
		} else {
			log.Printf("Warning: local settings store unavailable: %v", err)
		}
	}

	app := tui.NewApp(client, settings, cfg)
	if err := app.Run(); err != nil {
		log.Fatalf("Elva terminated with an error: %v", err)
	}
}

// getConfigPath resolves the config path: flag, then environment, then the
// default location
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("ELVA_CONFIG"); env != "" {
		return env
	}
	return config.DefaultConfigPath()
}

// runSetup writes a default config file and sample themes so users have
// something to edit
func runSetup(configPath string) {
	if configPath == "" {
		log.Fatal("Could not determine a config path; pass --config explicitly.")
	}
	if _, err := os.Stat(configPath); err == nil {
		fmt.Printf("Config already exists at %s, leaving it alone.\n", configPath)
		return
	}

	cfg := config.DefaultConfig()
	if err := cfg.SaveConfig(configPath); err != nil {
		log.Fatalf("Could not write config file: %v", err)
	}
	fmt.Printf("Wrote default configuration to %s\n", configPath)

	loader := config.NewThemeLoader("")
	for _, theme := range []*config.Theme{config.DarkTheme(), config.LightTheme()} {
		if err := loader.SaveThemeToFile(theme, theme.Name+".yaml"); err != nil {
			log.Printf("Warning: could not write theme %s: %v", theme.Name, err)
			continue
		}
		fmt.Printf("Wrote theme %s\n", theme.Name)
	}

	fmt.Println("\nNext steps:")
	fmt.Println("  1. Start the Elva backend (default http://localhost:8001)")
	fmt.Println("  2. Run elva and press Ctrl+G to connect Gmail")
}
