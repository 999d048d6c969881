/*
 * @module service/report/report_service_test
 * @description 质量报表服务单元测试：LAR/DPPM折算与IQA汇总
 * @architecture 测试层 - 单元测试
 */

package report

import (
	"context"
	"testing"

	"qc-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLARByWorkWeek(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	svc := NewService(tdb.DB)

	// WW10: 3批次2通过；WW11: 1批次全通过
	factory.CreateInspectionLot(2026, 10, "MX100", "pass", 1000, 0, nil)
	factory.CreateInspectionLot(2026, 10, "MX100", "pass", 1000, 1, nil)
	factory.CreateInspectionLot(2026, 10, "MX100", "fail", 1000, 30, nil)
	factory.CreateInspectionLot(2026, 11, "MX200", "pass", 500, 0, nil)
	// 其他年份的数据不应计入
	factory.CreateInspectionLot(2025, 10, "MX100", "fail", 1000, 50, nil)

	rows, err := svc.LAR(context.Background(), 2026, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 10, rows[0].WW)
	assert.Equal(t, int64(3), rows[0].Lots)
	assert.Equal(t, int64(2), rows[0].Passed)
	assert.InDelta(t, 66.67, rows[0].LAR, 0.01)

	assert.Equal(t, 11, rows[1].WW)
	assert.InDelta(t, 100.0, rows[1].LAR, 0.001)
}

func TestLARModelFilter(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	svc := NewService(tdb.DB)

	factory.CreateInspectionLot(2026, 10, "MX100", "pass", 1000, 0, nil)
	factory.CreateInspectionLot(2026, 10, "MX200", "fail", 1000, 20, nil)

	rows, err := svc.LAR(context.Background(), 2026, "MX100")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].Lots)
	assert.InDelta(t, 100.0, rows[0].LAR, 0.001)
}

func TestDPPMByWorkWeek(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	svc := NewService(tdb.DB)

	// WW10: 2000件5不良 => 2500 DPPM
	factory.CreateInspectionLot(2026, 10, "MX100", "pass", 1000, 2, nil)
	factory.CreateInspectionLot(2026, 10, "MX100", "fail", 1000, 3, nil)
	// WW12: 0件，除零防护返回0
	factory.CreateInspectionLot(2026, 12, "MX100", "pass", 0, 0, nil)

	rows, err := svc.DPPM(context.Background(), 2026, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 10, rows[0].WW)
	assert.Equal(t, int64(2000), rows[0].Qty)
	assert.Equal(t, int64(5), rows[0].Rejects)
	assert.InDelta(t, 2500.0, rows[0].DPPM, 0.001)

	assert.Equal(t, 12, rows[1].WW)
	assert.Zero(t, rows[1].DPPM)
}

func TestIQASummary(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	factory := testutil.NewTestDataFactory(tdb.DB)
	svc := NewService(tdb.DB)

	cosmetic := factory.CreateDefectGroup("Cosmetic")
	functional := factory.CreateDefectGroup("Functional")

	factory.CreateInspectionLot(2026, 10, "MX100", "pass", 1000, 1, &cosmetic.ID)
	factory.CreateInspectionLot(2026, 11, "MX100", "fail", 1000, 40, &functional.ID)
	factory.CreateInspectionLot(2026, 12, "MX200", "pass", 2000, 2, &cosmetic.ID)

	summary, err := svc.IQA(context.Background(), 2026)
	require.NoError(t, err)

	assert.Equal(t, 2026, summary.Year)
	assert.Equal(t, int64(3), summary.TotalLots)
	assert.Equal(t, int64(2), summary.PassedLots)
	assert.Equal(t, int64(4000), summary.TotalQty)
	assert.Equal(t, int64(43), summary.TotalReject)
	assert.InDelta(t, 66.67, summary.OverallLAR, 0.01)
	assert.InDelta(t, 10750.0, summary.OverallDPPM, 0.001)

	require.Len(t, summary.TopGroups, 2)
	assert.Equal(t, "Functional", summary.TopGroups[0].GroupName)
	assert.Equal(t, int64(40), summary.TopGroups[0].Rejects)
	assert.Equal(t, "Cosmetic", summary.TopGroups[1].GroupName)
	assert.Equal(t, int64(3), summary.TopGroups[1].Rejects)
}

func TestIQAEmptyYear(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewService(tdb.DB)

	summary, err := svc.IQA(context.Background(), 2030)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalLots)
	assert.Zero(t, summary.OverallLAR)
	assert.Zero(t, summary.OverallDPPM)
	assert.Empty(t, summary.TopGroups)
}
