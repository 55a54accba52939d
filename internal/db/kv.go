package db

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LastExportKey: klucz KV z katalogiem ostatniego udanego eksportu sklepu.
func LastExportKey(siteRoot string) string { return "last_export:" + siteRoot }

func SetKV(gdb *gorm.DB, k, v string) error {
	return gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "k"}},
		DoUpdates: clause.AssignmentColumns([]string{"v"}),
	}).Create(&KV{K: k, V: v}).Error
}

// GetKV zwraca "" i false gdy klucza nie ma.
func GetKV(gdb *gorm.DB, k string) (string, bool, error) {
	var kv KV
	err := gdb.Where("k = ?", k).Take(&kv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return kv.V, true, nil
}
