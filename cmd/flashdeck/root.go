package main

import (
	"database/sql"
	"os"

	"github.com/spf13/cobra"

	"github.com/vytor/flashdeck/internal/config"
	"github.com/vytor/flashdeck/internal/db"
	"github.com/vytor/flashdeck/internal/jobs"
	"github.com/vytor/flashdeck/internal/logger"
	"github.com/vytor/flashdeck/internal/repository/sqlite"
	"github.com/vytor/flashdeck/internal/services"
	"github.com/vytor/flashdeck/internal/session"
	"github.com/vytor/flashdeck/internal/worker"
)

// app holds everything a command needs once the database is open.
type app struct {
	cfg   config.Config
	db    *sql.DB
	decks services.DeckService
	study services.StudyService
	pool  *worker.Pool
}

func newApp(cfg config.Config, sqlDB *sql.DB) *app {
	deckRepo := sqlite.NewDeckRepository(sqlDB)
	cardRepo := sqlite.NewFlashcardRepository(sqlDB)
	sessionRepo := sqlite.NewStudySessionRepository(sqlDB)
	statsRepo := sqlite.NewStatsRepository(sqlDB)

	pool := worker.NewPool(1, max(cfg.JobQueueSize, 1))
	return &app{
		cfg:   cfg,
		db:    sqlDB,
		decks: services.NewDeckService(deckRepo, cardRepo, sessionRepo, statsRepo),
		study: services.NewStudyService(deckRepo, cardRepo, jobs.NewWorkerQueue(pool, sessionRepo),
			services.WithDefaults(session.Config{
				MaxCards:    cfg.DefaultMaxCards,
				MaxNewCards: cfg.DefaultMaxNewCards,
			}),
		),
		pool: pool,
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()
	var (
		a       *app
		handle  *db.DB
		verbose bool
	)

	root := &cobra.Command{
		Use:   "flashdeck",
		Short: "Study flashcard decks with spaced repetition",
		Long: `flashdeck keeps decks of question/answer cards and schedules
each card with the SM-2 algorithm. Cards you recall easily come back
later; cards you miss come back tomorrow.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logger.WARN
			if verbose {
				level = logger.DEBUG
			}
			logger.SetDefault(logger.New(
				logger.WithOutput(os.Stderr),
				logger.WithLevel(level),
				logger.WithColors(true),
			))

			var err error
			if handle, err = db.Open(cfg.DBPath); err != nil {
				return err
			}
			a = newApp(cfg, handle.DB)
			a.pool.Start(cmd.Context())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a == nil {
				return nil
			}
			a.pool.Stop()
			return handle.Close()
		},
	}

	root.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the SQLite database")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	appFn := func() *app { return a }
	root.AddCommand(
		newDecksCmd(appFn),
		newAddDeckCmd(appFn),
		newAddCardCmd(appFn),
		newCardsCmd(appFn),
		newStudyCmd(appFn),
		newStatsCmd(appFn),
	)
	return root
}
