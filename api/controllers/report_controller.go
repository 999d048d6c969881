/*
 * @module api/controllers/report_controller
 * @description 质量报表API控制器：LAR、DPPM与IQA年度汇总
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/report_design.md
 * @stateFlow HTTP查询 -> 参数解析 -> 报表服务聚合 -> 信封响应
 * @rules year缺省为当前年份；model为空时不过滤机型
 * @dependencies qc-service/service/report, github.com/spf13/cast
 * @refs service/report/report_service.go
 */

package controllers

import (
	"net/http"
	"time"

	"qc-service/service/report"

	"github.com/go-chi/render"
	"github.com/spf13/cast"
)

// ReportController 质量报表控制器
type ReportController struct {
	reports *report.Service
}

// NewReportController 创建报表控制器实例
func NewReportController(reports *report.Service) *ReportController {
	return &ReportController{reports: reports}
}

// LAR 批次接收率报表
// @Summary 按工作周查询批次接收率
// @Produce json
// @Param year query int false "年份，缺省当前年"
// @Param model query string false "机型编码"
// @Success 200 {object} APIResponse
// @Router /api/reports/lar [get]
func (c *ReportController) LAR(w http.ResponseWriter, r *http.Request) {
	year, model := reportParams(r)
	rows, err := c.reports.LAR(r.Context(), year, model)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", map[string]interface{}{
		"year": year, "model": model, "rows": rows,
	}))
}

// DPPM 百万件不良率报表
// @Summary 按工作周查询DPPM
// @Produce json
// @Param year query int false "年份，缺省当前年"
// @Param model query string false "机型编码"
// @Success 200 {object} APIResponse
// @Router /api/reports/dppm [get]
func (c *ReportController) DPPM(w http.ResponseWriter, r *http.Request) {
	year, model := reportParams(r)
	rows, err := c.reports.DPPM(r.Context(), year, model)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", map[string]interface{}{
		"year": year, "model": model, "rows": rows,
	}))
}

// IQASummary IQA年度汇总
// @Summary 查询IQA年度汇总
// @Produce json
// @Param year query int false "年份，缺省当前年"
// @Success 200 {object} APIResponse
// @Router /api/reports/iqa/summary [get]
func (c *ReportController) IQASummary(w http.ResponseWriter, r *http.Request) {
	year, _ := reportParams(r)
	summary, err := c.reports.IQA(r.Context(), year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, SuccessResponse("查询成功", summary))
}

// reportParams 解析报表查询参数
func reportParams(r *http.Request) (int, string) {
	q := r.URL.Query()
	year := cast.ToInt(q.Get("year"))
	if year <= 0 {
		year = time.Now().Year()
	}
	return year, q.Get("model")
}
