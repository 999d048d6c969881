/*
 * @module service/sync/sync_service_test
 * @description 同步服务单元测试：间隔门控、upsert语义与失败路径
 * @architecture 测试层 - 单元测试
 */

package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"qc-service/service/config"
	"qc-service/service/event"
	"qc-service/service/models"
	"qc-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource 可编程的ERP数据源
type fakeSource struct {
	records []models.InfLotInputRecord
	err     error
	calls   int
}

func (f *fakeSource) FetchLots(ctx context.Context, from, to *time.Time) ([]models.InfLotInputRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func newTestService(t *testing.T, source LotSource) (*Service, *testutil.TestDB, *testutil.TestDataFactory) {
	tdb := testutil.NewTestDB()
	t.Cleanup(tdb.Close)

	factory := testutil.NewTestDataFactory(tdb.DB)
	svc := NewService(tdb.DB, config.NewService(tdb.DB), source, &event.Publisher{})
	return svc, tdb, factory
}

func erpRecord(id int64, lotNo string) models.InfLotInputRecord {
	return models.InfLotInputRecord{
		ID:        id,
		LotNo:     lotNo,
		PartSite:  "SZ01",
		Model:     "MX100",
		InputDate: time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC),
	}
}

func TestSyncRunsWhenNoPriorImport(t *testing.T) {
	source := &fakeSource{records: []models.InfLotInputRecord{
		erpRecord(1, "LOT-A"),
		erpRecord(2, "LOT-B"),
	}}
	svc, tdb, factory := newTestService(t, source)
	factory.CreateSysConfig(30)

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.True(t, result.ShouldImport)
	assert.True(t, result.Ran)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 1, source.calls)

	var count int64
	tdb.DB.Model(&models.InfLotInputRecord{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestSyncSkipsWithinInterval(t *testing.T) {
	source := &fakeSource{}
	svc, _, factory := newTestService(t, source)
	factory.CreateSysConfig(30)
	factory.CreateInfLot(100, time.Now().Add(-5*time.Minute))

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.False(t, result.ShouldImport)
	assert.False(t, result.Ran)
	require.NotNil(t, result.NextImportAt)
	assert.True(t, result.NextImportAt.After(time.Now()), "下次导入时间应在将来")
	assert.Equal(t, 0, source.calls, "间隔未到时不应访问数据源")
}

func TestSyncRunsAfterIntervalElapsed(t *testing.T) {
	source := &fakeSource{records: []models.InfLotInputRecord{erpRecord(1, "LOT-A")}}
	svc, _, factory := newTestService(t, source)
	factory.CreateSysConfig(30)
	factory.CreateInfLot(100, time.Now().Add(-31*time.Minute))

	result, err := svc.Sync(context.Background())
	require.NoError(t, err)

	assert.True(t, result.ShouldImport)
	assert.True(t, result.Ran)
	assert.Equal(t, 1, source.calls)
}

func TestImportUpsertsByPrimaryKey(t *testing.T) {
	source := &fakeSource{records: []models.InfLotInputRecord{erpRecord(1, "LOT-A")}}
	svc, tdb, factory := newTestService(t, source)
	factory.CreateSysConfig(30)
	ctx := context.Background()

	first, err := svc.ImportFromMSSQL(ctx, ImportParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Imported)
	assert.Equal(t, 0, first.Updated)

	// 同一主键再次导入走更新路径，不产生重复行
	source.records = []models.InfLotInputRecord{erpRecord(1, "LOT-A-REVISED")}
	second, err := svc.ImportFromMSSQL(ctx, ImportParams{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.Imported)
	assert.Equal(t, 1, second.Updated)

	var count int64
	tdb.DB.Model(&models.InfLotInputRecord{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var rec models.InfLotInputRecord
	require.NoError(t, tdb.DB.First(&rec, "id = ?", 1).Error)
	assert.Equal(t, "LOT-A-REVISED", rec.LotNo)
}

func TestImportContinuesPastRowFailure(t *testing.T) {
	source := &fakeSource{records: []models.InfLotInputRecord{
		erpRecord(1, "LOT-A"),
		erpRecord(13, "LOT-POISON"),
		erpRecord(2, "LOT-B"),
	}}
	svc, tdb, factory := newTestService(t, source)
	factory.CreateSysConfig(30)

	// 以触发器模拟特定行的写入失败
	err := tdb.DB.Exec(`CREATE TRIGGER reject_poison_row
		BEFORE INSERT ON inf_lot_input_records
		WHEN NEW.id = 13
		BEGIN SELECT RAISE(ABORT, 'constraint violated'); END`).Error
	require.NoError(t, err)

	result, err := svc.ImportFromMSSQL(context.Background(), ImportParams{})
	require.NoError(t, err, "单行失败不应中止整次导入")

	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "13")

	var count int64
	tdb.DB.Model(&models.InfLotInputRecord{}).Count(&count)
	assert.Equal(t, int64(2), count, "其余行应正常落库")
}

func TestImportSourceFailureAborts(t *testing.T) {
	source := &fakeSource{err: errors.New("连接被拒绝")}
	svc, tdb, factory := newTestService(t, source)
	factory.CreateSysConfig(30)

	result, err := svc.ImportFromMSSQL(context.Background(), ImportParams{})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Ran)
	assert.Contains(t, result.Message, "MSSQL拉取失败")

	var count int64
	tdb.DB.Model(&models.InfLotInputRecord{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestImportRejectsInvalidDateParams(t *testing.T) {
	svc, _, factory := newTestService(t, &fakeSource{})
	factory.CreateSysConfig(30)
	ctx := context.Background()

	_, err := svc.ImportFromMSSQL(ctx, ImportParams{From: "20-08-2026"})
	assert.Error(t, err)

	_, err = svc.ImportFromMSSQL(ctx, ImportParams{From: "2026-08-20", To: "2026-08-01"})
	assert.Error(t, err)

	_, err = svc.ImportFromMSSQL(ctx, ImportParams{From: "2026-08-01", To: "2026-08-20"})
	assert.NoError(t, err, "合法日期区间应被接受")
}

func TestSyncFailsWithoutConfig(t *testing.T) {
	svc, _, _ := newTestService(t, &fakeSource{})

	_, err := svc.Sync(context.Background())
	assert.ErrorIs(t, err, config.ErrNoConfig)
}
