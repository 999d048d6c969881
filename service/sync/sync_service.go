/*
 * @module service/sync/sync_service
 * @description MSSQL单向导入服务：按配置间隔判定是否到期，从ERP拉取投入记录
 *              并按主键upsert到PostgreSQL，统计 imported/updated/skipped
 * @architecture 分层架构 - 同步服务层
 * @documentReference dev_docs/sync_design.md
 * @stateFlow idle -> 间隔检查 -> (跳过 | 导入) -> idle
 * @rules 单行失败计入skipped并继续；池级/查询级失败中止本次导入并返回失败结果；不做重试
 * @dependencies gorm.io/gorm, qc-service/service/config, qc-service/service/event
 * @refs service/sync/mssql_manager.go, service/models/inf_lot.go
 */

package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"qc-service/service/config"
	"qc-service/service/event"
	"qc-service/service/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	importedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qc_sync_imported_total",
		Help: "累计新导入的ERP投入记录数",
	})
	updatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qc_sync_updated_total",
		Help: "累计更新的ERP投入记录数",
	})
	skippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "qc_sync_skipped_total",
		Help: "累计因行级错误跳过的记录数",
	})
)

// ImportParams 手动导入参数，日期为 2006-01-02 格式，可为空
type ImportParams struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Result 同步结果
type Result struct {
	ShouldImport bool       `json:"should_import"`
	Ran          bool       `json:"ran"`
	Imported     int        `json:"imported"`
	Updated      int        `json:"updated"`
	Skipped      int        `json:"skipped"`
	Errors       []string   `json:"errors,omitempty"`
	Message      string     `json:"message"`
	NextImportAt *time.Time `json:"next_import_at,omitempty"`
}

// Service MSSQL导入/同步服务
type Service struct {
	db         *gorm.DB
	cfgService *config.Service
	source     LotSource
	events     *event.Publisher

	// 同一进程内禁止并发导入
	mu sync.Mutex
}

// NewService 创建同步服务
func NewService(db *gorm.DB, cfgService *config.Service, source LotSource, events *event.Publisher) *Service {
	return &Service{db: db, cfgService: cfgService, source: source, events: events}
}

// Sync 间隔检查后按需导入。没有历史导入记录时立即导入；
// 否则仅当 now >= lastImport+interval 时导入。
func (s *Service) Sync(ctx context.Context) (*Result, error) {
	cfg, err := s.cfgService.GetLatest(ctx)
	if err != nil {
		return nil, err
	}
	interval := time.Duration(cfg.SyncIntervalMinutes) * time.Minute

	lastImport, err := s.lastImportTime(ctx)
	if err != nil {
		return nil, err
	}

	if lastImport != nil {
		next := lastImport.Add(interval)
		if time.Now().Before(next) {
			slog.Debug("同步间隔未到，跳过本次导入",
				"last_import", lastImport, "next_import", next)
			return &Result{
				ShouldImport: false,
				Message:      "同步间隔未到，跳过导入",
				NextImportAt: &next,
			}, nil
		}
	}

	result, err := s.ImportFromMSSQL(ctx, ImportParams{})
	if err != nil {
		return nil, err
	}
	result.ShouldImport = true
	return result, nil
}

// ImportFromMSSQL 执行一次导入。日期参数先解析校验再参数化下发，
// 行级失败计入skipped继续，源级失败整体中止。
func (s *Service) ImportFromMSSQL(ctx context.Context, params ImportParams) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, err := parseDate(params.From, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseDate(params.To, "to")
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, errors.New("结束日期不能早于开始日期")
	}

	records, err := s.source.FetchLots(ctx, from, to)
	if err != nil {
		s.events.Publish(ctx, event.TypeSyncFailed, map[string]interface{}{"error": err.Error()})
		return &Result{
			ShouldImport: true,
			Message:      fmt.Sprintf("MSSQL拉取失败: %v", err),
		}, err
	}

	result := &Result{ShouldImport: true, Ran: true}
	now := time.Now()

	for _, rec := range records {
		imported, upsertErr := s.upsertRecord(ctx, rec, now)
		if upsertErr != nil {
			result.Skipped++
			skippedTotal.Inc()
			msg := fmt.Sprintf("记录 %d upsert失败: %v", rec.ID, upsertErr)
			result.Errors = append(result.Errors, msg)
			slog.Warn("导入行失败，跳过", "id", rec.ID, "error", upsertErr)
			continue
		}
		if imported {
			result.Imported++
			importedTotal.Inc()
		} else {
			result.Updated++
			updatedTotal.Inc()
		}
	}

	result.Message = fmt.Sprintf("导入完成: 新增%d 更新%d 跳过%d",
		result.Imported, result.Updated, result.Skipped)
	slog.Info("MSSQL导入完成",
		"imported", result.Imported,
		"updated", result.Updated,
		"skipped", result.Skipped)

	s.events.Publish(ctx, event.TypeSyncCompleted, result)
	return result, nil
}

// upsertRecord 按主键upsert单条记录，返回是否为新导入
func (s *Service) upsertRecord(ctx context.Context, rec models.InfLotInputRecord, importedAt time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.InfLotInputRecord{}).
		Where("id = ?", rec.ID).Count(&count).Error
	if err != nil {
		return false, err
	}

	rec.ImportedAt = importedAt
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"lot_no", "part_site", "line_no", "item_no",
			"model", "version", "input_date", "finish_on", "imported_at",
		}),
	}).Create(&rec).Error
	if err != nil {
		return false, err
	}

	return count == 0, nil
}

// lastImportTime 最近一次同步写入时间，没有任何导入记录时返回nil
func (s *Service) lastImportTime(ctx context.Context) (*time.Time, error) {
	var rec models.InfLotInputRecord
	err := s.db.WithContext(ctx).Order("imported_at DESC").First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec.ImportedAt, nil
}

// parseDate 解析 2006-01-02 日期参数，空串返回nil
func parseDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fmt.Errorf("无效的日期参数 %s: %q", field, value)
	}
	return &t, nil
}
