package settings_test

import (
	"context"
	"errors"
	"testing"

	"app/internal/domain/model"
	"app/internal/settings"

	"github.com/stretchr/testify/assert"
)

type settingRepoStub struct {
	rows []model.Setting
	err  error
}

func (s *settingRepoStub) ListAll(ctx context.Context) ([]model.Setting, error) {
	return s.rows, s.err
}

func TestCache_RefreshAndGet(t *testing.T) {
	repo := &settingRepoStub{rows: []model.Setting{
		{SettingKey: "site_name", SettingValue: "ShopHub"},
		{SettingKey: "support_email", SettingValue: "help@example.com"},
	}}

	c := settings.NewCache(repo)
	assert.NoError(t, c.Refresh(context.Background()))

	assert.Equal(t, "ShopHub", c.Get("site_name", "default"))
	//未登録キーはデフォルト
	assert.Equal(t, "#000000", c.Get("theme_color", "#000000"))
	assert.Len(t, c.All(), 2)
}

func TestCache_RefreshFailureKeepsOldValues(t *testing.T) {
	repo := &settingRepoStub{rows: []model.Setting{
		{SettingKey: "site_name", SettingValue: "ShopHub"},
	}}

	c := settings.NewCache(repo)
	assert.NoError(t, c.Refresh(context.Background()))

	//次のRefreshが失敗しても前回の値は残る
	repo.err = errors.New("db down")
	assert.Error(t, c.Refresh(context.Background()))
	assert.Equal(t, "ShopHub", c.Get("site_name", ""))
}
