package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/palmcourt/hotel-admin/internal/config"
	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/repository"
	"github.com/palmcourt/hotel-admin/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var days int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入分类和菜品, 2: 插入今天及之后几天的排餐表, 3: 全部)")
	flag.IntVar(&n, "n", 0, "每个分类最多插入的菜品数量，0 表示全部")
	flag.IntVar(&days, "days", 0, "排餐表覆盖今天之后的天数，0 表示使用配置中的值")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if days <= 0 {
		days = cfg.Seed.UpcomingDays
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)
	if cfg.Database.AutoMigrate {
		if err := repo.Migrate(); err != nil {
			logger.Error("无法执行数据库迁移", "error", err)
			return
		}
	}

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		seedMenu(repo, n)
	case 2:
		seedRosters(repo, days)
	case 3:
		if seedMenu(repo, n) {
			seedRosters(repo, days)
		}
	default:
		slog.Error("指定的操作非法")
	}
}

func seedMenu(repo *repository.Repository, n int) bool {
	categories, err := seed.SeedCategories(repo)
	if err != nil {
		slog.Error("无法插入分类", "error", err)
		return false
	}

	cnt, err := seed.SeedMenuItems(repo, categories, n)
	if err != nil {
		slog.Error("无法插入菜品", "error", err)
		return false
	}

	slog.Info("插入菜品成功", slog.Int("count", cnt))
	return true
}

func seedRosters(repo *repository.Repository, days int) {
	cnt, err := seed.SeedRosters(repo, domain.DateOf(time.Now()), days)
	if err != nil {
		slog.Error("无法插入排餐表", "error", err)
		return
	}

	slog.Info("插入排餐表成功", slog.Int("count", cnt), slog.Int("days", days))
}
