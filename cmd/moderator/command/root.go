package command

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"reviewhub/database"
	"reviewhub/internal/cache"
	"reviewhub/internal/config"
	"reviewhub/internal/events"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/service"
)

// moderatorID is recorded in logs and events for every decision
var moderatorID string

// services shared by all subcommands, set up in PersistentPreRunE
var (
	db          *gorm.DB
	moderation  service.ModerationService
	statistics  service.StatsService
	rootLogger  *slog.Logger
	closeCache  = func() {}
	closeEvents = func() {}
	openBackend = openDatabase
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "moderator",
	Short: "moderator - reviewhub moderation desk",
	Long: `moderator works the review moderation queue directly against the database:
- list pending reviews, oldest first
- approve or reject a pending review
- set or clear the verified flag
- purge a review together with its votes and responses
- print the statistics of a target

Reads DATABASE_URL and the other settings from the environment or .env.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return openBackend()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		// drain before exit so every decision's event is delivered
		closeEvents()
		closeCache()
		if db == nil {
			return nil
		}
		return database.Close(db)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&moderatorID, "as", "cli", "moderator id recorded with each decision")
}

func openDatabase() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	rootLogger = cfg.NewLogger()

	db, err = database.OpenGorm(cfg, rootLogger)
	if err != nil {
		return err
	}
	// decisions must evict the stats the API servers share through Redis
	var statsCache cache.StatsCache
	statsCache, closeCache = cache.Open(cfg, rootLogger, false)

	dispatcher := events.NewDispatcher(1, cfg.EventQueueSize, rootLogger)
	dispatcher.Subscribe(events.LogNotifier(rootLogger), events.AllTypes...)
	dispatcher.Start()
	closeEvents = dispatcher.Close

	useStore(repository.NewStore(db, cfg.TxMaxAttempts, cfg.TxRetryBackoff, rootLogger), statsCache, dispatcher, rootLogger)
	return nil
}

// useStore wires the services over store
func useStore(store *repository.Store, statsCache cache.StatsCache, publisher events.Publisher, logger *slog.Logger) {
	opts := service.Options{StatsCache: statsCache, Publisher: publisher, Logger: logger}
	moderation = service.NewModerationService(store, opts)
	statistics = service.NewStatsService(store, opts)
}
