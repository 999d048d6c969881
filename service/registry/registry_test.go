/*
 * @module service/registry/registry_test
 * @description 实体注册表装配单元测试：失败降级与汇总统计
 * @architecture 测试层 - 单元测试
 */

package registry

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"qc-service/service/entity"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func okFactory(db *gorm.DB) chi.Router {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestDiscoverAndRegisterAllSuccessful(t *testing.T) {
	r := chi.NewRouter()
	entries := []Entry{
		{Name: "defects", Pattern: entity.KeySerial, APIPath: "/defects", Table: "defects", Factory: okFactory},
		{Name: "sites", Pattern: entity.KeyCode, APIPath: "/sites", Table: "sites", Factory: okFactory},
	}

	summary := DiscoverAndRegister(r, nil, entries)

	assert.Equal(t, 2, summary.TotalEntities)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 0, summary.Failed)
	assert.Len(t, summary.Results, 2)
	assert.Greater(t, summary.Duration.Nanoseconds(), int64(0))
}

func TestDiscoverAndRegisterSurvivesFactoryFailures(t *testing.T) {
	r := chi.NewRouter()
	entries := []Entry{
		{Name: "defects", APIPath: "/defects", Table: "defects", Factory: okFactory},
		{Name: "panics", APIPath: "/panics", Table: "panics", Factory: func(db *gorm.DB) chi.Router {
			panic("装配期故障")
		}},
		{Name: "nilrouter", APIPath: "/nilrouter", Table: "nilrouter", Factory: func(db *gorm.DB) chi.Router {
			return nil
		}},
		{Name: "nofactory", APIPath: "/nofactory", Table: "nofactory"},
	}

	summary := DiscoverAndRegister(r, nil, entries)

	assert.Equal(t, 4, summary.TotalEntities)
	assert.Equal(t, 1, summary.Successful)
	assert.Equal(t, 3, summary.Failed)
	assert.Equal(t, summary.TotalEntities, summary.Successful+summary.Failed)

	byName := map[string]EntityResult{}
	for _, res := range summary.Results {
		byName[res.Entity] = res
	}
	assert.True(t, byName["defects"].Success)
	assert.False(t, byName["panics"].Success)
	assert.Contains(t, byName["panics"].Error, "panic")
	assert.False(t, byName["nilrouter"].Success)
	assert.False(t, byName["nofactory"].Success)
}

func TestFailedEntityMountsStubRouter(t *testing.T) {
	r := chi.NewRouter()
	entries := []Entry{
		{Name: "broken", APIPath: "/broken", Table: "broken", Factory: func(db *gorm.DB) chi.Router {
			panic("boom")
		}},
	}
	DiscoverAndRegister(r, nil, entries)

	for _, path := range []string{"/broken/", "/broken/42"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotImplemented, rec.Code, "路径 %s 应返回501", path)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
	}
}

func TestSuccessfulEntityServesRealRouter(t *testing.T) {
	r := chi.NewRouter()
	DiscoverAndRegister(r, nil, []Entry{
		{Name: "defects", APIPath: "/defects", Table: "defects", Factory: okFactory},
	})

	req := httptest.NewRequest(http.MethodGet, "/defects/", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
