/*
 * @module service/sync/mssql_manager
 * @description MSSQL连接管理器：按需从sysconfig构建连接池，显式持有并负责生命周期，
 *              解析出的连接参数变化时才重建连接池
 * @architecture 连接池管理 - 显式所有权对象，取代模块级单例
 * @documentReference dev_docs/sync_design.md
 * @stateFlow 读取配置 -> 比对参数 -> (复用 | 重建)连接池 -> 查询 -> 关闭
 * @rules 日期范围过滤必须参数化，禁止拼接SQL文本
 * @dependencies github.com/denisenkom/go-mssqldb, database/sql
 * @refs service/sync/sync_service.go, service/config/config_service.go
 */

package sync

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	_ "github.com/denisenkom/go-mssqldb"

	"qc-service/service/config"
	"qc-service/service/models"
)

// fetchLimit 单次导入的最大行数
const fetchLimit = 500

// LotSource ERP投入记录数据源，测试中以假实现注入
type LotSource interface {
	FetchLots(ctx context.Context, from, to *time.Time) ([]models.InfLotInputRecord, error)
}

// mssqlParams 解析后的连接参数快照，用于比对是否需要重建连接池
type mssqlParams struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
}

func (p mssqlParams) dsn() string {
	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(p.User, p.Password),
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
	}
	q := url.Values{}
	q.Set("database", p.Database)
	u.RawQuery = q.Encode()
	return u.String()
}

// MSSQLManager MSSQL连接池的显式所有者
type MSSQLManager struct {
	cfgService *config.Service

	mu      sync.Mutex
	pool    *sql.DB
	current mssqlParams
}

// NewMSSQLManager 创建MSSQL连接管理器
func NewMSSQLManager(cfgService *config.Service) *MSSQLManager {
	return &MSSQLManager{cfgService: cfgService}
}

// acquire 按当前配置返回连接池，配置变化时重建
func (m *MSSQLManager) acquire(ctx context.Context) (*sql.DB, error) {
	cfg, err := m.cfgService.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取MSSQL连接配置失败: %w", err)
	}
	if cfg.MssqlHost == "" || cfg.MssqlDatabase == "" {
		return nil, fmt.Errorf("MSSQL连接配置不完整")
	}

	params := mssqlParams{
		Host:     cfg.MssqlHost,
		Port:     cfg.MssqlPort,
		Database: cfg.MssqlDatabase,
		User:     cfg.MssqlUser,
		Password: cfg.MssqlPassword,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool != nil && m.current == params {
		return m.pool, nil
	}

	if m.pool != nil {
		slog.Info("MSSQL连接参数变化，重建连接池", "host", params.Host, "database", params.Database)
		m.pool.Close()
		m.pool = nil
	}

	pool, err := sql.Open("sqlserver", params.dsn())
	if err != nil {
		return nil, fmt.Errorf("创建MSSQL连接池失败: %w", err)
	}
	pool.SetMaxOpenConns(4)
	pool.SetMaxIdleConns(2)
	pool.SetConnMaxLifetime(30 * time.Minute)

	m.pool = pool
	m.current = params
	return pool, nil
}

// FetchLots 从 dbo.Input 拉取投入记录，日期范围以参数化条件下发
func (m *MSSQLManager) FetchLots(ctx context.Context, from, to *time.Time) ([]models.InfLotInputRecord, error) {
	pool, err := m.acquire(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT TOP %d Id, LotNo, PartSite, LineNo, ItemNo, Model, Version, InputDate, FinishOn
		FROM dbo.Input`, fetchLimit)
	args := make([]interface{}, 0, 2)
	switch {
	case from != nil && to != nil:
		query += " WHERE InputDate >= @p1 AND InputDate < @p2"
		args = append(args, *from, *to)
	case from != nil:
		query += " WHERE InputDate >= @p1"
		args = append(args, *from)
	case to != nil:
		query += " WHERE InputDate < @p1"
		args = append(args, *to)
	}
	query += " ORDER BY InputDate DESC"

	rows, err := pool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("查询MSSQL投入记录失败: %w", err)
	}
	defer rows.Close()

	records := make([]models.InfLotInputRecord, 0, fetchLimit)
	for rows.Next() {
		var rec models.InfLotInputRecord
		var finishOn sql.NullTime
		err := rows.Scan(&rec.ID, &rec.LotNo, &rec.PartSite, &rec.LineNo,
			&rec.ItemNo, &rec.Model, &rec.Version, &rec.InputDate, &finishOn)
		if err != nil {
			return nil, fmt.Errorf("扫描MSSQL行数据失败: %w", err)
		}
		if finishOn.Valid {
			t := finishOn.Time
			rec.FinishOn = &t
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历MSSQL结果失败: %w", err)
	}

	return records, nil
}

// Close 关闭连接池，进程退出时调用
func (m *MSSQLManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pool == nil {
		return nil
	}
	err := m.pool.Close()
	m.pool = nil
	m.current = mssqlParams{}
	return err
}
