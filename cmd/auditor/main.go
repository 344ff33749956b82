package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	natsAdapter "github.com/newkenyan/property-search/internal/adapter/messaging/nats"
	"github.com/newkenyan/property-search/internal/adapter/repository/cache"
	mongoRepo "github.com/newkenyan/property-search/internal/adapter/repository/mongodb"
	"github.com/newkenyan/property-search/internal/config"
	"github.com/newkenyan/property-search/internal/platform/logger"
	"github.com/newkenyan/property-search/internal/search/usecase"
)

var (
	delay      time.Duration
	sampleSize int
	outputFile string
	publish    bool
)

var rootCmd = &cobra.Command{
	Use:   "auditor",
	Short: "Coverage audit over every location and property-type combination",
	Long: `Runs the exact-scope matcher for every active location crossed with
every published property-type/transaction combination and reports the pairs
with zero results (dead pages). Broadening is deliberately not applied so the
report reflects true page availability.

Deficiencies are data, not errors: the exit status is non-zero only when the
stores are unreachable.`,
	RunE: runAudit,
}

func init() {
	rootCmd.Flags().DurationVar(&delay, "delay", 100*time.Millisecond, "fixed delay between store calls")
	rootCmd.Flags().IntVar(&sampleSize, "samples", 3, "listing titles to record per covered pair")
	rootCmd.Flags().StringVar(&outputFile, "output", "", "write the full JSON report to this file")
	rootCmd.Flags().BoolVar(&publish, "publish", false, "publish the audit summary to NATS")
}

func runAudit(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("INFO: .env file not found: %v. Relying on OS environment variables.\n", err)
	}

	appLogger := logger.NewLogger()
	cfg, err := config.LoadConfig(appLogger)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if !cmd.Flags().Changed("delay") {
		delay = cfg.AuditCallDelay
	}
	if !cmd.Flags().Changed("samples") {
		sampleSize = cfg.AuditSampleSize
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	mongoClient, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connecting to MongoDB: %w", err)
	}
	if err := mongoClient.Ping(mongoCtx, nil); err != nil {
		return fmt.Errorf("pinging MongoDB: %w", err)
	}
	defer func() {
		_ = mongoClient.Disconnect(context.Background())
	}()
	db := mongoClient.Database(cfg.MongoDatabase)

	listingRepo, err := mongoRepo.NewListingRepository(db, appLogger)
	if err != nil {
		return fmt.Errorf("creating listing repository: %w", err)
	}
	locationRepo, err := mongoRepo.NewLocationRepository(db, appLogger)
	if err != nil {
		return fmt.Errorf("creating location repository: %w", err)
	}
	locations := cache.NewLocationCache(locationRepo, cfg.LocationCacheTTL)

	matcher := usecase.NewMatcher(listingRepo, appLogger, cfg.MatchPageSize)
	auditor := usecase.NewAuditor(locations, matcher, delay, sampleSize, appLogger, nil)

	report, runErr := auditor.Run(ctx, usecase.DefaultCombos())
	printSummary(report)

	if outputFile != "" {
		if err := writeReport(outputFile, report); err != nil {
			appLogger.Error("Failed to write report file", zap.String("path", outputFile), zap.Error(err))
		} else {
			fmt.Printf("\nFull report written to %s\n", outputFile)
		}
	}

	if publish {
		pub, err := natsAdapter.NewPublisher(cfg.NATSURL, appLogger, "property-search auditor")
		if err != nil {
			appLogger.Error("Failed to connect to NATS, summary not published", zap.Error(err))
		} else {
			defer pub.Close()
			if err := pub.PublishAuditCompleted(ctx, report); err != nil {
				appLogger.Error("Failed to publish audit summary", zap.Error(err))
			}
		}
	}

	// Store connectivity is the only failing condition; a report full of
	// deficiencies still exits 0.
	if runErr != nil {
		return fmt.Errorf("audit incomplete: %w", runErr)
	}
	return nil
}

func printSummary(report *usecase.DeficiencyReport) {
	fmt.Printf("=== LOCATION COVERAGE AUDIT ===\n\n")
	fmt.Printf("Run ID:           %s\n", report.RunID)
	fmt.Printf("Pairs audited:    %d\n", report.TotalPairs)
	fmt.Printf("Deficient pairs:  %d\n", report.DeficientCount)
	fmt.Printf("Coverage:         %.1f%%\n", report.CoveragePercent)

	if len(report.ByLocationType) > 0 {
		fmt.Printf("\nDeficiencies by location type:\n")
		for locType, count := range report.ByLocationType {
			fmt.Printf("  %-14s %d\n", locType, count)
		}
	}

	limit := 20
	if len(report.Deficiencies) < limit {
		limit = len(report.Deficiencies)
	}
	if limit > 0 {
		fmt.Printf("\nSample deficiencies (first %d):\n", limit)
		for _, d := range report.Deficiencies[:limit] {
			fmt.Printf("  %s (%s): no %s %s\n", d.LocationName, d.LocationType, d.PropertyType, d.TransactionType)
		}
	}
}

func writeReport(path string, report *usecase.DeficiencyReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
