package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/dgellow/shop-admin/internal"
	"github.com/dgellow/shop-admin/internal/config"
	"github.com/dgellow/shop-admin/internal/crypto"
	"github.com/dgellow/shop-admin/internal/log"
	"github.com/dgellow/shop-admin/internal/urlutil"
)

var BuildVersion = "dev"

func generateDefaultConfig(path string) error {
	baseURL := "https://admin.yourshop.com"
	redirectURI, err := urlutil.AbsoluteURL(baseURL, internal.CallbackPath)
	if err != nil {
		return fmt.Errorf("failed to build redirect URI: %w", err)
	}

	defaultConfig := map[string]any{
		"version": config.SupportedVersion,
		"server": map[string]any{
			"baseURL":        baseURL,
			"addr":           config.DefaultAddr,
			"name":           config.DefaultName,
			"production":     true,
			"allowedOrigins": []string{baseURL},
		},
		"auth": map[string]any{
			"googleClientId":       map[string]string{"$env": "GOOGLE_CLIENT_ID"},
			"googleClientSecret":   map[string]string{"$env": "GOOGLE_CLIENT_SECRET"},
			"googleRedirectUri":    redirectURI,
			"sessionSecret":        map[string]string{"$env": "ADMIN_SESSION_SECRET"},
			"adminToken":           map[string]string{"$env": "ADMIN_TOKEN"},
			"sessionTtl":           "168h",
			"upstreamTimeout":      "10s",
			"landingPath":          config.DefaultLandingPath,
			"identityVerification": string(config.IdentityVerificationTokenInfo),
			"allowedDomains":       []string{"yourshop.com"},
		},
		"storage": map[string]any{
			"kind": string(config.StorageKindMemory),
		},
	}

	data, err := json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func validateConfig(path string) error {
	result, err := config.ValidateFile(path)
	if err != nil {
		return fmt.Errorf("error during validation: %w", err)
	}

	fmt.Printf("Validating: %s\n", path)

	if len(result.Errors) > 0 {
		fmt.Printf("\nErrors (%d):\n", len(result.Errors))
		for _, err := range result.Errors {
			if err.Path != "" {
				fmt.Printf("  - %s: %s\n", err.Path, err.Message)
			} else {
				fmt.Printf("  - %s\n", err.Message)
			}
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(result.Warnings))
		for _, warn := range result.Warnings {
			if warn.Path != "" {
				fmt.Printf("  - %s: %s\n", warn.Path, warn.Message)
			} else {
				fmt.Printf("  - %s\n", warn.Message)
			}
		}
	}

	fmt.Println()
	if len(result.Errors) == 0 && len(result.Warnings) == 0 {
		fmt.Println("Result: PASS")
	} else if len(result.Errors) == 0 {
		fmt.Println("Result: PASS (with warnings)")
	} else {
		fmt.Println("Result: FAIL")
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("validation failed: %d error(s), %d warning(s)", len(result.Errors), len(result.Warnings))
	}
	return nil
}

func main() {
	conf := flag.String("config", "", "path to config file (required)")
	version := flag.Bool("version", false, "print version and exit")
	help := flag.Bool("help", false, "print help and exit")
	configInit := flag.String("config-init", "", "generate default config file at specified path")
	validate := flag.Bool("validate", false, "validate config file and exit")
	genSecret := flag.Bool("gen-secret", false, "print a random value suitable for sessionSecret or adminToken and exit")
	logLevel := flag.String("log-level", "", "override LOG_LEVEL (ERROR, WARN, INFO, DEBUG, TRACE)")
	flag.Parse()
	if *help {
		flag.Usage()
		return
	}
	if *version {
		fmt.Println(BuildVersion)
		return
	}
	if *logLevel != "" {
		if err := log.SetLogLevel(*logLevel); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if *genSecret {
		secret, err := crypto.GenerateSecureToken()
		if err != nil {
			log.LogError("Failed to generate secret: %v", err)
			os.Exit(1)
		}
		fmt.Println(secret)
		return
	}
	if *configInit != "" {
		if err := generateDefaultConfig(*configInit); err != nil {
			log.LogError("Failed to generate config: %v", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default config at: %s\n", *configInit)
		return
	}

	if *validate {
		if *conf == "" {
			fmt.Fprintf(os.Stderr, "Error: -config flag is required for validation\n")
			os.Exit(1)
		}
		if err := validateConfig(*conf); err != nil {
			os.Exit(1)
		}
		return
	}

	if *conf == "" {
		fmt.Fprintf(os.Stderr, "Error: -config flag is required\n")
		fmt.Fprintf(os.Stderr, "Run with -help for usage information\n")
		os.Exit(1)
	}

	cfg, err := config.Load(*conf)
	if err != nil {
		log.LogError("Failed to load config: %v", err)
		os.Exit(1)
	}

	log.LogInfoWithFields("main", "Starting shop-admin", map[string]any{
		"version": BuildVersion,
		"config":  *conf,
	})

	ctx := context.Background()
	app, err := internal.NewShopAdmin(ctx, cfg)
	if err != nil {
		log.LogError("Failed to create admin API: %v", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		log.LogError("Server stopped with error: %v", err)
		os.Exit(1)
	}
}
