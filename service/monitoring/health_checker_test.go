/*
 * @module service/monitoring/health_checker_test
 * @description 健康检查器单元测试：组件探活与总体判定
 * @architecture 测试层 - 单元测试
 */

package monitoring

import (
	"context"
	"errors"
	"testing"

	"qc-service/service/auth"
	"qc-service/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore 会话存储探活失败的桩实现
type failingStore struct{}

func (failingStore) Save(ctx context.Context, session *auth.Session) error { return nil }
func (failingStore) Get(ctx context.Context, id string) (*auth.Session, error) {
	return nil, auth.ErrSessionNotFound
}
func (failingStore) Delete(ctx context.Context, id string) error { return nil }
func (failingStore) Ping(ctx context.Context) error {
	return errors.New("存储不可达")
}
func (failingStore) Close() error { return nil }

func TestCheckHealthy(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	store := auth.NewMemoryStore()
	defer store.Close()

	checker := NewHealthChecker(tdb.DB, store)
	status := checker.Check(context.Background())

	assert.Equal(t, VerdictHealthy, status.Status)
	require.Contains(t, status.Components, "database")
	require.Contains(t, status.Components, "sessions")
	require.Contains(t, status.Components, "memory")
	assert.Equal(t, StatusOK, status.Components["database"].Status)
	assert.Equal(t, StatusOK, status.Components["sessions"].Status)
	assert.False(t, status.Timestamp.IsZero())
}

func TestCheckDegradedWhenSessionStoreDown(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()

	checker := NewHealthChecker(tdb.DB, failingStore{})
	status := checker.Check(context.Background())

	assert.Equal(t, VerdictDegraded, status.Status, "非数据库组件故障只降级不判死")
	assert.Equal(t, StatusDown, status.Components["sessions"].Status)
	assert.Equal(t, StatusOK, status.Components["database"].Status)
}

func TestCheckUnhealthyWhenDatabaseDown(t *testing.T) {
	tdb := testutil.NewTestDB()
	store := auth.NewMemoryStore()
	defer store.Close()

	// 关闭底层连接模拟数据库不可用
	tdb.Close()

	checker := NewHealthChecker(tdb.DB, store)
	status := checker.Check(context.Background())

	assert.Equal(t, VerdictUnhealthy, status.Status)
	assert.Equal(t, StatusDown, status.Components["database"].Status)
}
