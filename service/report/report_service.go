/*
 * @module service/report/report_service
 * @description 质量报表服务：按工作周/机型聚合LAR、DPPM与IQA汇总，
 *              只读SQL，每次查询重新计算，无独立生命周期
 * @architecture 分层架构 - 报表查询层
 * @documentReference dev_docs/report_design.md
 * @stateFlow HTTP查询 -> 聚合SQL -> 指标折算 -> 返回
 * @rules 聚合SQL保持跨方言可移植（生产postgres，测试sqlite）；除零在Go侧防护
 * @dependencies gorm.io/gorm
 * @refs service/models/inspection_lot.go, api/controllers/report_controller.go
 */

package report

import (
	"context"

	"gorm.io/gorm"
)

// LARRow 按工作周的批次接收率
type LARRow struct {
	WW     int     `json:"ww"`
	Lots   int64   `json:"lots"`
	Passed int64   `json:"passed"`
	LAR    float64 `json:"lar"` // 百分比
}

// DPPMRow 按工作周的百万件不良率
type DPPMRow struct {
	WW      int     `json:"ww"`
	Qty     int64   `json:"qty"`
	Rejects int64   `json:"rejects"`
	DPPM    float64 `json:"dppm"`
}

// IQASummary IQA年度汇总
type IQASummary struct {
	Year        int             `json:"year"`
	TotalLots   int64           `json:"total_lots"`
	PassedLots  int64           `json:"passed_lots"`
	TotalQty    int64           `json:"total_qty"`
	TotalReject int64           `json:"total_rejects"`
	OverallLAR  float64         `json:"overall_lar"`
	OverallDPPM float64         `json:"overall_dppm"`
	TopGroups   []DefectGroupRow `json:"top_defect_groups"`
}

// DefectGroupRow 按不良分组的不良数
type DefectGroupRow struct {
	GroupName string `json:"group_name"`
	Rejects   int64  `json:"rejects"`
}

// Service 质量报表服务
type Service struct {
	db *gorm.DB
}

// NewService 创建报表服务
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LAR 按工作周聚合批次接收率，model为空时不过滤机型
func (s *Service) LAR(ctx context.Context, year int, model string) ([]LARRow, error) {
	type row struct {
		WW     int
		Lots   int64
		Passed int64
	}

	query := `SELECT ww,
		COUNT(*) AS lots,
		SUM(CASE WHEN status = 'pass' THEN 1 ELSE 0 END) AS passed
		FROM inspection_lots
		WHERE year = ?`
	args := []interface{}{year}
	if model != "" {
		query += " AND model_code = ?"
		args = append(args, model)
	}
	query += " GROUP BY ww ORDER BY ww"

	var rows []row
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]LARRow, 0, len(rows))
	for _, r := range rows {
		lar := 0.0
		if r.Lots > 0 {
			lar = float64(r.Passed) / float64(r.Lots) * 100
		}
		result = append(result, LARRow{WW: r.WW, Lots: r.Lots, Passed: r.Passed, LAR: lar})
	}
	return result, nil
}

// DPPM 按工作周聚合百万件不良率
func (s *Service) DPPM(ctx context.Context, year int, model string) ([]DPPMRow, error) {
	type row struct {
		WW      int
		Qty     int64
		Rejects int64
	}

	query := `SELECT ww,
		COALESCE(SUM(qty), 0) AS qty,
		COALESCE(SUM(rejects), 0) AS rejects
		FROM inspection_lots
		WHERE year = ?`
	args := []interface{}{year}
	if model != "" {
		query += " AND model_code = ?"
		args = append(args, model)
	}
	query += " GROUP BY ww ORDER BY ww"

	var rows []row
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make([]DPPMRow, 0, len(rows))
	for _, r := range rows {
		dppm := 0.0
		if r.Qty > 0 {
			dppm = float64(r.Rejects) * 1_000_000 / float64(r.Qty)
		}
		result = append(result, DPPMRow{WW: r.WW, Qty: r.Qty, Rejects: r.Rejects, DPPM: dppm})
	}
	return result, nil
}

// IQA 年度IQA汇总：整体LAR/DPPM与不良最多的分组TOP5
func (s *Service) IQA(ctx context.Context, year int) (*IQASummary, error) {
	type totals struct {
		TotalLots   int64
		PassedLots  int64
		TotalQty    int64
		TotalReject int64
	}

	var t totals
	err := s.db.WithContext(ctx).Raw(`SELECT
		COUNT(*) AS total_lots,
		SUM(CASE WHEN status = 'pass' THEN 1 ELSE 0 END) AS passed_lots,
		COALESCE(SUM(qty), 0) AS total_qty,
		COALESCE(SUM(rejects), 0) AS total_reject
		FROM inspection_lots WHERE year = ?`, year).Scan(&t).Error
	if err != nil {
		return nil, err
	}

	var groups []DefectGroupRow
	err = s.db.WithContext(ctx).Raw(`SELECT dg.name AS group_name,
		COALESCE(SUM(il.rejects), 0) AS rejects
		FROM inspection_lots il
		JOIN defect_groups dg ON dg.id = il.defect_group_id
		WHERE il.year = ?
		GROUP BY dg.name
		ORDER BY rejects DESC
		LIMIT 5`, year).Scan(&groups).Error
	if err != nil {
		return nil, err
	}

	summary := &IQASummary{
		Year:        year,
		TotalLots:   t.TotalLots,
		PassedLots:  t.PassedLots,
		TotalQty:    t.TotalQty,
		TotalReject: t.TotalReject,
		TopGroups:   groups,
	}
	if t.TotalLots > 0 {
		summary.OverallLAR = float64(t.PassedLots) / float64(t.TotalLots) * 100
	}
	if t.TotalQty > 0 {
		summary.OverallDPPM = float64(t.TotalReject) * 1_000_000 / float64(t.TotalQty)
	}
	return summary, nil
}
