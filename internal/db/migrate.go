package db

import (
	"fmt"
)

// Migrate tworzy/aktualizuje schemat bazy i pilnuje unikalnego indeksu
// dla export_issues (upsert po job/produkt/wariant/powód).
func (h *Handle) Migrate() error {
	gdb := h.DB

	if err := gdb.AutoMigrate(
		&ExportJob{},
		&ProductSnapshot{},
		&ImageAsset{},
		&ExportIssue{},
		&KV{},
	); err != nil {
		return fmt.Errorf("AutoMigrate error: %w", err)
	}

	if !gdb.Migrator().HasIndex(&ExportIssue{}, "uniq_issue_key") {
		if err := gdb.Exec(`
			CREATE UNIQUE INDEX uniq_issue_key
			ON export_issues(job_id, product_id, variation_id, reason);
		`).Error; err != nil {
			return fmt.Errorf("create index uniq_issue_key: %w", err)
		}
	}

	return nil
}
