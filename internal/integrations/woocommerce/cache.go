// internal/integrations/woocommerce/cache.go
package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bartek5186/wooexport/internal/catalog"
	"github.com/bartek5186/wooexport/internal/db"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const snapshotBatch = 100

// Snapshot zapisuje znormalizowane produkty joba do product_snapshots
// (upsert po job_id + product_id), paczkami po 100. Produkty bez id pomija.
func Snapshot(ctx context.Context, gdb *gorm.DB, jobID string, products []catalog.Product) error {
	if len(products) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]db.ProductSnapshot, 0, len(products))
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		id := p.IDText()
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("snapshot %s: %w", id, err)
		}
		rows = append(rows, db.ProductSnapshot{
			JobID:     jobID,
			ProductID: id,
			SKU:       p.SKU,
			Slug:      p.Slug,
			Type:      p.Type,
			Payload:   datatypes.JSON(payload),
			UpdatedAt: now,
		})
	}

	for start := 0; start < len(rows); start += snapshotBatch {
		end := min(start+snapshotBatch, len(rows))
		batch := rows[start:end]
		if err := gdb.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sku", "slug", "type", "payload", "updated_at"}),
		}).Create(&batch).Error; err != nil {
			return fmt.Errorf("upsert snapshots %d-%d: %w", start, end, err)
		}
	}
	return nil
}
