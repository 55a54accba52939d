// internal/job/issues.go
package job

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bartek5186/wooexport/internal/catalog"
	"github.com/bartek5186/wooexport/internal/db"
	"github.com/bartek5186/wooexport/internal/export"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	IssueMissingPrice       = "missing_price"
	IssueMissingImage       = "missing_image"
	IssueUnmatchedAttribute = "unmatched_attribute"
)

type issueKey struct {
	productID, variationID, reason string
}

// CollectIssues zbiera problemy jakości danych; jeden wpis na
// produkt/wariant/powód, szczegóły sklejane.
func CollectIssues(jobID string, products []catalog.Product, unmatched []export.Unmatched) []db.ExportIssue {
	var order []issueKey
	details := map[issueKey][]string{}
	add := func(k issueKey, detail string) {
		if _, ok := details[k]; !ok {
			order = append(order, k)
		}
		details[k] = append(details[k], detail)
	}

	for _, p := range products {
		pid := p.IDText()
		variable := p.IsVariable() || len(p.VariationDetails) > 0
		if !variable && strings.TrimSpace(p.Prices.RegularPrice) == "" && strings.TrimSpace(p.Prices.Price) == "" {
			add(issueKey{pid, "", IssueMissingPrice}, "product has no price")
		}
		if len(p.Images) == 0 {
			add(issueKey{pid, "", IssueMissingImage}, "product has no images")
		}
		for _, v := range p.VariationDetails {
			vid := v.IDText()
			if v.Diagnostics.MissingPrice {
				add(issueKey{pid, vid, IssueMissingPrice}, "variation has no price")
			}
			if v.Diagnostics.MissingImage {
				add(issueKey{pid, vid, IssueMissingImage}, "variation has no image")
			}
		}
	}
	for _, u := range unmatched {
		add(issueKey{u.ProductID, u.VariationID, IssueUnmatchedAttribute},
			fmt.Sprintf("slot %d: %s", u.Slot, u.Attribute))
	}

	out := make([]db.ExportIssue, 0, len(order))
	for _, k := range order {
		out = append(out, db.ExportIssue{
			JobID:       jobID,
			ProductID:   k.productID,
			VariationID: k.variationID,
			Reason:      k.reason,
			Details:     strings.Join(details[k], "; "),
		})
	}
	return out
}

// recordIssues zapisuje ledger w jednej transakcji; błąd pojedynczego wpisu
// jest logowany i pomijany.
func recordIssues(ctx context.Context, gdb *gorm.DB, log zerolog.Logger, jobID string, products []catalog.Product, unmatched []export.Unmatched) {
	issues := CollectIssues(jobID, products, unmatched)
	if len(issues) == 0 {
		return
	}
	err := gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range issues {
			saveIssue(tx, log, &issues[i])
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("issue ledger transaction failed")
		return
	}
	log.Debug().Int("issues", len(issues)).Msg("issue ledger updated")
}

func saveIssue(tx *gorm.DB, log zerolog.Logger, issue *db.ExportIssue) {
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "job_id"},
			{Name: "product_id"},
			{Name: "variation_id"},
			{Name: "reason"},
		},
		DoUpdates: clause.Assignments(map[string]any{
			"details":    issue.Details,
			"updated_at": time.Now(),
		}),
	}).Create(issue).Error

	if err != nil {
		log.Error().Err(err).
			Str("product_id", issue.ProductID).
			Str("variation_id", issue.VariationID).
			Str("reason", issue.Reason).
			Msg("issue upsert failed")
	}
}
