/*
 * @module service/catalog/entity_catalog_test
 * @description 实体CRUD服务定义单元测试：规范化、去重、分页、启停用
 * @architecture 测试层 - 单元测试
 */

package catalog

import (
	"context"
	"fmt"
	"testing"

	"qc-service/service/entity"
	"qc-service/service/models"
	"qc-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefectCreateNormalizesName(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewDefectService(tdb.DB)

	// 前后空白剥离，分解形式的组合字符归一为NFC
	rec, err := svc.Create(context.Background(), &models.Defect{
		Name: "  Cafe\u0301 Mark  ",
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, "Caf\u00e9 Mark", rec.Name)
	assert.Equal(t, "tester", rec.CreatedBy)
	assert.NotZero(t, rec.ID)
}

func TestDefectCreateRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewDefectService(tdb.DB)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.Defect{Name: "Scratch A1"}, "tester")
	require.NoError(t, err)

	_, err = svc.Create(ctx, &models.Defect{Name: "scratch a1"}, "tester")
	require.Error(t, err)

	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr, "重复名称应返回校验错误")
	assert.Equal(t, "name", verr.Field)
}

func TestDefectCreateRejectsInvalidName(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewDefectService(tdb.DB)
	ctx := context.Background()

	cases := []string{
		"A",              // 过短
		"Bad  Spacing",   // 连续空格
		"Illegal@Char!",  // 非法字符
		"",               // 空名称
	}
	for _, name := range cases {
		_, err := svc.Create(ctx, &models.Defect{Name: name}, "tester")
		var verr *entity.ValidationError
		assert.ErrorAs(t, err, &verr, "名称 %q 应被拒绝", name)
	}
}

func TestDefectUpdateExcludesSelfFromDuplicateCheck(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewDefectService(tdb.DB)
	ctx := context.Background()

	rec, err := svc.Create(ctx, &models.Defect{Name: "Dent B2"}, "tester")
	require.NoError(t, err)

	// 名称不变的更新不应触发重复校验
	updated, err := svc.Update(ctx, fmt.Sprint(rec.ID),
		&models.Defect{Name: "Dent B2", Description: "edge dent"}, "editor")
	require.NoError(t, err)
	assert.Equal(t, "edge dent", updated.Description)
	assert.Equal(t, "editor", updated.UpdatedBy)
}

func TestDefectUpdateClearsDescription(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewDefectService(tdb.DB)
	ctx := context.Background()

	rec, err := svc.Create(ctx, &models.Defect{Name: "Crack C3", Description: "hairline crack"}, "tester")
	require.NoError(t, err)

	// 描述清空为零值也必须落库
	updated, err := svc.Update(ctx, fmt.Sprint(rec.ID),
		&models.Defect{Name: "Crack C3", Description: ""}, "editor")
	require.NoError(t, err)
	assert.Equal(t, "", updated.Description)

	got, err := svc.GetByKey(ctx, fmt.Sprint(rec.ID))
	require.NoError(t, err)
	assert.Equal(t, "", got.Description)
}

func TestDefectUpdateClearsGroupAssignment(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewDefectService(tdb.DB)
	ctx := context.Background()

	factory := testutil.NewTestDataFactory(tdb.DB)
	group := factory.CreateDefectGroup("Cosmetic")

	rec, err := svc.Create(ctx, &models.Defect{Name: "Stain D4", DefectGroupID: &group.ID}, "tester")
	require.NoError(t, err)
	require.NotNil(t, rec.DefectGroupID)

	updated, err := svc.Update(ctx, fmt.Sprint(rec.ID),
		&models.Defect{Name: "Stain D4"}, "editor")
	require.NoError(t, err)
	assert.Nil(t, updated.DefectGroupID, "解除分组关联应落库")
}

func TestDefectUpdateNotFound(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewDefectService(tdb.DB)

	_, err := svc.Update(context.Background(), "9999", &models.Defect{Name: "Ghost Defect"}, "tester")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestDefectListPagination(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewDefectService(tdb.DB)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		_, err := svc.Create(ctx, &models.Defect{Name: fmt.Sprintf("Defect %02d", i)}, "tester")
		require.NoError(t, err)
	}

	result, err := svc.List(ctx, entity.QueryOptions{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(25), result.Pagination.Total)
	assert.Equal(t, 3, result.Pagination.TotalPages)
	assert.Len(t, result.Items, 5)
}

func TestDefectListSearchAndActiveFilter(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewDefectService(tdb.DB)
	ctx := context.Background()

	scratch, err := svc.Create(ctx, &models.Defect{Name: "Scratch Front"}, "tester")
	require.NoError(t, err)
	_, err = svc.Create(ctx, &models.Defect{Name: "Dent Rear"}, "tester")
	require.NoError(t, err)

	result, err := svc.List(ctx, entity.QueryOptions{Search: "scratch"})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Scratch Front", result.Items[0].Name)

	// 停用后按 is_active=true 过滤不再出现
	require.NoError(t, svc.SetActive(ctx, fmt.Sprint(scratch.ID), false, "tester"))

	active := true
	result, err = svc.List(ctx, entity.QueryOptions{IsActive: &active})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "Dent Rear", result.Items[0].Name)
}

func TestSetActiveNotFound(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewDefectService(tdb.DB)

	err := svc.SetActive(context.Background(), "404", false, "tester")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestUserCreateHashesPassword(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewUserService(tdb.DB)
	ctx := context.Background()

	rec, err := svc.Create(ctx, &models.User{
		Username:    "Inspector01",
		DisplayName: "检验员一号",
		Role:        models.RoleUser,
		Password:    "pass1234",
	}, "admin")
	require.NoError(t, err)

	assert.Equal(t, "inspector01", rec.Username, "用户名应转为小写")
	assert.Empty(t, rec.Password, "明文密码不应保留")
	assert.NotEmpty(t, rec.PasswordHash)
	assert.NotEqual(t, "pass1234", rec.PasswordHash)
}

func TestUserCreateRequiresPasswordAndValidRole(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewUserService(tdb.DB)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.User{Username: "nopass", Role: models.RoleUser}, "admin")
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password", verr.Field)

	_, err = svc.Create(ctx, &models.User{
		Username: "badrole", Role: "superuser", Password: "pass1234",
	}, "admin")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "role", verr.Field)
}

func TestUserUpdateKeepsPasswordWhenOmitted(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewUserService(tdb.DB)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.User{
		Username: "inspector01", DisplayName: "检验员一号",
		Role: models.RoleUser, Password: "pass1234",
	}, "admin")
	require.NoError(t, err)
	originalHash := created.PasswordHash

	// 不带密码的更新保留原哈希
	updated, err := svc.Update(ctx, fmt.Sprint(created.ID), &models.User{
		Username: "inspector01", DisplayName: "检验员改名",
		Role: models.RoleUser,
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "检验员改名", updated.DisplayName)
	assert.Equal(t, originalHash, updated.PasswordHash)

	// 显式提交新密码时替换哈希
	updated, err = svc.Update(ctx, fmt.Sprint(created.ID), &models.User{
		Username: "inspector01", DisplayName: "检验员改名",
		Role: models.RoleUser, Password: "rotated99",
	}, "admin")
	require.NoError(t, err)
	assert.NotEqual(t, originalHash, updated.PasswordHash)
	assert.NotEmpty(t, updated.PasswordHash)
}

func TestSiteCodeKeyLifecycle(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewSiteService(tdb.DB)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.Site{Code: "sz01", Name: "Shenzhen Plant"}, "admin")
	require.NoError(t, err)

	// 编码键统一转为大写后查询
	rec, err := svc.GetByKey(ctx, "SZ01")
	require.NoError(t, err)
	assert.Equal(t, "SZ01", rec.Code)

	// 重复编码被拒绝
	_, err = svc.Create(ctx, &models.Site{Code: "SZ01", Name: "Duplicate Plant"}, "admin")
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "code", verr.Field)
}

func TestSiteUpdateNeverChangesCode(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewSiteService(tdb.DB)
	ctx := context.Background()

	_, err := svc.Create(ctx, &models.Site{Code: "SZ01", Name: "Shenzhen Plant", Region: "South"}, "admin")
	require.NoError(t, err)

	// 请求体中的编码被忽略，原编码保持不变
	updated, err := svc.Update(ctx, "SZ01", &models.Site{
		Code: "XX99", Name: "Renamed Plant", Region: "",
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "SZ01", updated.Code)
	assert.Equal(t, "Renamed Plant", updated.Name)
	assert.Equal(t, "", updated.Region, "清空区域的零值更新应落库")

	_, err = svc.GetByKey(ctx, "SZ01")
	assert.NoError(t, err)
	_, err = svc.GetByKey(ctx, "XX99")
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestInspectionLotUpdateClearsRejects(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewInspectionLotService(tdb.DB)
	ctx := context.Background()

	created, err := svc.Create(ctx, &models.InspectionLot{
		LotNo: "LOT-2026-10", Year: 2026, WW: 10,
		Qty: 1000, SampleSize: 80, Rejects: 5,
		Status: models.LotStatusFail,
	}, "tester")
	require.NoError(t, err)

	// 不良数修正为0属于合法零值更新
	updated, err := svc.Update(ctx, fmt.Sprint(created.ID), &models.InspectionLot{
		LotNo: "LOT-2026-10", Year: 2026, WW: 10,
		Qty: 1000, SampleSize: 80, Rejects: 0,
		Status: models.LotStatusPass,
	}, "tester")
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Rejects)
	assert.Equal(t, models.LotStatusPass, updated.Status)

	got, err := svc.GetByKey(ctx, fmt.Sprint(created.ID))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Rejects)
}

func TestInspectionLotValidation(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewInspectionLotService(tdb.DB)
	ctx := context.Background()

	base := models.InspectionLot{
		LotNo: "LOT-2026-01", Year: 2026, WW: 10,
		Qty: 1000, SampleSize: 80, Rejects: 2,
		Status: models.LotStatusPass,
	}

	_, err := svc.Create(ctx, &base, "tester")
	require.NoError(t, err)

	bad := base
	bad.LotNo = "LOT-2026-02"
	bad.WW = 60
	_, err = svc.Create(ctx, &bad, "tester")
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ww", verr.Field)

	bad = base
	bad.LotNo = "LOT-2026-03"
	bad.Rejects = 200
	_, err = svc.Create(ctx, &bad, "tester")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rejects", verr.Field)

	bad = base
	bad.LotNo = "LOT-2026-04"
	bad.Status = "maybe"
	_, err = svc.Create(ctx, &bad, "tester")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestDeleteByInvalidKey(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	svc := NewDefectService(tdb.DB)

	err := svc.Delete(context.Background(), "not-a-number")
	var verr *entity.ValidationError
	assert.ErrorAs(t, err, &verr, "非数字主键应返回校验错误")
}
