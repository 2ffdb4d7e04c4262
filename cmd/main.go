package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"token-scanner/internal/config"
	"token-scanner/internal/core"
	"token-scanner/internal/data"
	"token-scanner/internal/data/basescan"
	"token-scanner/internal/data/dexscreener"
	"token-scanner/internal/data/honeypot"
	"token-scanner/internal/data/x402scan"
	"token-scanner/internal/logger"
	"token-scanner/internal/message"
	"token-scanner/internal/scanner"
	"token-scanner/internal/security"
	"token-scanner/internal/store"
	"token-scanner/internal/token"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger with date-based file rotation and optional Elasticsearch
	esConfig := &logger.ESConfig{
		Enabled:   cfg.ESEnabled,
		Addresses: cfg.ESAddresses,
		Index:     cfg.ESIndex,
	}
	if err := logger.InitLogger(cfg.LogDir, esConfig); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.GetLogger().Close()

	if cfg.TelegramBotToken == "" || cfg.TelegramChatID == "" {
		log.Println("❌ Missing environment variables!")
		log.Fatal("Set TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID in .env file")
	}
	if err := token.ValidateChainID(cfg.ChainID); err != nil {
		log.Fatalf("Invalid CHAIN_ID: %v", err)
	}

	log.Println("🤖 Starting X402 Auto-Scanner Bot...")

	// Shared per-host request pacing for all providers
	limiter := data.NewHostLimiter(cfg.ProviderRateLimit, cfg.ProviderBurst)

	// Provider clients
	dexClient := dexscreener.NewClient(limiter)
	honeypotClient := honeypot.NewClient(cfg.ChainID, limiter)
	basescanClient := basescan.NewClient(cfg.BasescanAPIKey, limiter)
	x402Client := x402scan.NewClient(limiter)

	if !basescanClient.HasKey() {
		log.Println("⚠️  BASESCAN_API_KEY not set: verification and holder checks will be skipped")
	}

	// Security evaluator with the four default checks
	checks := security.DefaultChecks(basescanClient, honeypotClient, dexClient, cfg.ChainSlug, security.Thresholds{
		MinLiquidityUSD: cfg.MinLiquidityUSD,
		MaxTaxPercent:   cfg.MaxTaxPercent,
		MinHolderCount:  cfg.MinHolderCount,
	})
	evaluator := security.NewEvaluator(checks)

	// On-chain metadata lookups for mint candidates, optional
	var resolver scanner.MetadataResolver
	metaClient, err := token.NewMetadataClient(cfg.ChainID)
	if err != nil {
		log.Printf("⚠️  Token metadata lookups disabled: %v", err)
	} else {
		defer metaClient.Close()
		resolver = metaClient
		log.Printf("🪙 Token metadata lookups enabled on %s", metaClient.GetChainName())
	}

	opts := scanner.Options{
		ScanInterval: time.Duration(cfg.ScanInterval) * time.Second,
		RetryDelay:   time.Duration(cfg.RetryDelay) * time.Second,
		NotifyPause:  time.Duration(cfg.NotifyPause) * time.Second,
		MintMinScore: cfg.GateScore(core.KindMint),
		BuyMinScore:  cfg.GateScore(core.KindBuy),
	}
	cooldown := cfg.Cooldown()
	kindEnabled := map[core.Kind]bool{core.KindMint: true, core.KindBuy: true}

	// Apply per-kind policy overrides from file or MySQL
	policies, err := loadScanPolicies(cfg)
	if err != nil {
		log.Fatalf("Failed to load scan policies: %v", err)
	}
	if len(policies) > 0 {
		applyScanPolicies(policies, &opts, &cooldown, kindEnabled)
		log.Printf("✅ Loaded %d scan policy override(s) from %s", len(policies), cfg.ScanPolicySource)
	}

	// Candidate sources
	var sources []scanner.Source
	if kindEnabled[core.KindMint] {
		sources = append(sources, scanner.NewMintSource(x402Client, resolver))
	} else {
		log.Println("⚠️  Mint scanning disabled by policy")
	}
	if kindEnabled[core.KindBuy] {
		sources = append(sources, scanner.NewMarketSource(dexClient, scanner.Filters{
			ChainSlug:       cfg.ChainSlug,
			MinLiquidityUSD: cfg.MinLiquidityUSD,
			MinVolume24h:    cfg.MinVolume24h,
			PumpThreshold:   cfg.PumpThreshold,
			McapMin:         cfg.McapMin,
			McapMax:         cfg.McapMax,
			NewLaunchWindow: cfg.NewLaunchWindow(),
			MaxPairsPerScan: cfg.MaxPairsPerScan,
			MaxCandidates:   cfg.MaxCandidatesPerCycle,
		}))
	} else {
		log.Println("⚠️  Market scanning disabled by policy")
	}
	if len(sources) == 0 {
		log.Fatal("All candidate kinds are disabled by policy")
	}

	tracker := core.NewAlertTracker(cfg.TrackerCapacity, cfg.TrackerTarget, cooldown, cfg.Horizon())
	stats := core.NewScanStats()

	// Outbound channels: Telegram primary, Kafka and email optional
	telegram := message.NewTelegramSender(cfg.TelegramBotToken)

	var publisher *message.KafkaAlertPublisher
	if cfg.KafkaEnabled {
		publisher = message.NewKafkaAlertPublisher(cfg.KafkaBrokers, cfg.TelegramChatID, cfg.AlertRecipientEmail)
		defer publisher.Close()
		log.Printf("📨 Kafka alert publishing enabled (brokers: %v)", cfg.KafkaBrokers)
	}

	var emailSender message.MessageSender
	if cfg.ResendAPIKey != "" && cfg.ResendFromEmail != "" && cfg.AlertRecipientEmail != "" {
		emailSender = message.NewResendEmailSender(cfg.ResendAPIKey, cfg.ResendFromEmail)
		log.Printf("📧 Email alerts enabled for %s", cfg.AlertRecipientEmail)
	}

	notifier := message.NewAlertNotifier(telegram, cfg.TelegramChatID, publisher, emailSender, cfg.AlertRecipientEmail)

	scan := scanner.NewScanner(sources, evaluator, tracker, notifier, stats, opts)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Answer /start, /status and /stats in the chat
	poller := message.NewCommandPoller(telegram, stats, opts.ScanInterval)
	go poller.Run(ctx)

	// Start the scan loop
	go scan.Run(ctx)

	log.Println("🚀 Token Scanner started")
	log.Printf("📊 Chain: %s (chain ID %s)", cfg.ChainSlug, cfg.ChainID)
	log.Printf("⏱️  Scan interval: %d seconds", cfg.ScanInterval)
	log.Printf("🛡️  Security gates: mint >= %.0f, buy >= %.0f", opts.MintMinScore, opts.BuyMinScore)
	log.Println("Press Ctrl+C to stop...")

	// Startup ping so the chat knows the daemon is live
	if err := telegram.SendStartup(cfg.TelegramChatID); err != nil {
		log.Printf("⚠️  Startup message failed: %v", err)
	}

	// Wait for shutdown signal
	<-sigChan
	log.Println("\n🛑 Shutting down...")
	cancel()
	time.Sleep(1 * time.Second)
	log.Println("✅ Shutdown complete")
}

// loadScanPolicies reads per-kind overrides from the configured source.
// The default "env" source returns nothing and keeps the env-derived knobs.
func loadScanPolicies(cfg *config.Config) ([]*core.ScanPolicy, error) {
	switch cfg.ScanPolicySource {
	case "mysql":
		return store.LoadScanPoliciesFromMySQL(cfg.MySQLDSN)
	case "file":
		if cfg.ScanPolicyFile == "" {
			return nil, fmt.Errorf("SCAN_POLICY_FILE is required when SCAN_POLICY_SOURCE=file")
		}
		return config.LoadScanPolicies(cfg.ScanPolicyFile)
	default:
		return nil, nil
	}
}

// applyScanPolicies folds policy rows into the gate options, the tracker
// cooldown, and per-kind enablement. The tracker keeps a single cooldown for
// all identities, so the longest non-zero policy cooldown wins.
func applyScanPolicies(policies []*core.ScanPolicy, opts *scanner.Options, cooldown *time.Duration, kindEnabled map[core.Kind]bool) {
	var policyCooldown time.Duration
	for _, p := range policies {
		kindEnabled[p.Kind] = p.Enabled
		if p.Kind == core.KindMint {
			opts.MintMinScore = p.MinScore
		} else {
			opts.BuyMinScore = p.MinScore
		}
		if p.Cooldown > policyCooldown {
			policyCooldown = p.Cooldown
		}
	}
	if policyCooldown > 0 {
		*cooldown = policyCooldown
	}
}
