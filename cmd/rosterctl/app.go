package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/palmcourt/hotel-admin/internal/account"
	"github.com/palmcourt/hotel-admin/internal/config"
	"github.com/palmcourt/hotel-admin/internal/dining"
	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/gateway"
	"github.com/palmcourt/hotel-admin/internal/roster"
	"github.com/spf13/cobra"
)

// nowFunc 在测试中会被替换
var nowFunc = time.Now

type app struct {
	configPath string
	verbose    bool

	cfg      *config.ClientConfig
	logger   *slog.Logger
	client   *gateway.Client
	accounts *account.Service
	catalog  *dining.Service
	rosters  *roster.Accessor
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "rosterctl.yaml"
	}
	return filepath.Join(home, ".rosterctl", "config.yaml")
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "rosterctl",
		Short:         "Manage the hotel dining menu and daily rosters",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath(), "path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log requests to stderr")

	rootCmd.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.menuCmd(),
		a.categoryCmd(),
		a.rosterCmd(),
		a.exportCmd(),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadClientConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	stderr := cmd.ErrOrStderr()
	client, err := gateway.New(gateway.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Session: gateway.NewFileSession(cfg.TokenFile),
		OnUnauthorized: func() {
			fmt.Fprintln(stderr, "Session expired, run `rosterctl login` again.")
		},
		Logger: a.logger,
	})
	if err != nil {
		return err
	}

	a.client = client
	a.accounts = account.NewService(client)
	a.catalog = dining.NewService(client)
	a.rosters = roster.NewAccessor(client)
	return nil
}

func (a *app) coordinator() *roster.Coordinator {
	return roster.NewCoordinator(roster.Options{
		Rosters:      a.rosters,
		Catalog:      a.catalog,
		UpcomingDays: a.cfg.UpcomingDays,
		Categories:   a.cfg.Categories,
		Now:          nowFunc,
		Logger:       a.logger,
	})
}

func today() domain.Date {
	return domain.DateOf(nowFunc())
}

// parseDay 接受 YYYY-MM-DD、today、tomorrow 以及 +N / -N 这样的相对天数
func parseDay(s string) (domain.Date, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "today":
		return today(), nil
	case "tomorrow":
		return today().AddDays(1), nil
	case "yesterday":
		return today().AddDays(-1), nil
	}

	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		n, err := strconv.Atoi(s)
		if err != nil {
			return domain.Date{}, fmt.Errorf("invalid relative date %q", s)
		}
		return today().AddDays(n), nil
	}

	return domain.ParseDate(s)
}

func parseDays(args []string) ([]domain.Date, error) {
	dates := make([]domain.Date, 0, len(args))
	for _, arg := range args {
		d, err := parseDay(arg)
		if err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, nil
}
