package model

import "time"

// サイト設定（サイト名・テーマカラー・連絡先など）のkey/value。
type Setting struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SettingKey   string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"setting_key"`
	SettingValue string    `gorm:"type:text" json:"setting_value"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
