// Package database 提供 PostgreSQL 连接池封装，供运行归档仓储使用
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shiftopt/shiftopt/internal/config"
	"github.com/shiftopt/shiftopt/pkg/logger"

	_ "github.com/lib/pq" // PostgreSQL 驱动
)

const (
	// pingTimeout 建连时的探活超时
	pingTimeout = 5 * time.Second
	// slowQueryThreshold 超过该耗时的 SQL 记为慢查询
	slowQueryThreshold = 100 * time.Millisecond
	// maxLoggedQueryLen 慢查询日志中 SQL 文本的截断长度
	maxLoggedQueryLen = 200
)

// DB 数据库连接封装，在标准库连接池之上附加慢查询日志
type DB struct {
	*sql.DB
	cfg *config.DatabaseConfig
}

// New 建立连接池并探活
func New(cfg *config.DatabaseConfig) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("打开数据库连接失败: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Msg("数据库连接成功")

	return &DB{DB: db, cfg: cfg}, nil
}

// Close 关闭连接池
func (db *DB) Close() error {
	if db.DB != nil {
		logger.Info().Msg("关闭数据库连接")
		return db.DB.Close()
	}
	return nil
}

// Health 探活，用于健康检查端点
func (db *DB) Health(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Stats 返回连接池统计，用于周期上报指标
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// ExecContext 执行写入语句并记录慢查询
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := db.DB.ExecContext(ctx, query, args...)
	logSlowQuery(query, start)
	return result, err
}

// QueryContext 执行多行查询并记录慢查询
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := db.DB.QueryContext(ctx, query, args...)
	logSlowQuery(query, start)
	return rows, err
}

// QueryRowContext 执行单行查询
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRowContext(ctx, query, args...)
}

// logSlowQuery 耗时超阈值时输出告警日志
func logSlowQuery(query string, start time.Time) {
	duration := time.Since(start)
	if duration <= slowQueryThreshold {
		return
	}
	logger.Warn().
		Str("query", truncateQuery(query)).
		Dur("duration", duration).
		Msg("慢SQL查询")
}

// truncateQuery 截断过长的 SQL 文本，避免日志被整条语句撑爆
func truncateQuery(query string) string {
	if len(query) > maxLoggedQueryLen {
		return query[:maxLoggedQueryLen] + "..."
	}
	return query
}
