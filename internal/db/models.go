// internal/db/models.go
package db

import (
	"time"

	"gorm.io/datatypes"
)

// statusy export_jobs
const (
	JobRunning = 0
	JobDone    = 1
	JobFailed  = 2
)

// export_jobs
type ExportJob struct {
	JobID      string `gorm:"primaryKey;size:36"`
	Source     string `gorm:"index"` // korzeń sklepu
	OutputDir  string
	Status     int    `gorm:"index"` // 0=running, 1=done, 2=error
	LastError  string `gorm:"type:text"`
	Products   int
	Variations int
	ImagesOK   int
	ImagesSkip int
	Unmatched  int
	StartedAt  time.Time `gorm:"autoCreateTime"`
	FinishedAt *time.Time
}

// product_snapshots: znormalizowany produkt z danego joba
type ProductSnapshot struct {
	JobID     string `gorm:"primaryKey;size:36"`
	ProductID string `gorm:"primaryKey;size:64"`
	SKU       string `gorm:"index"`
	Slug      string
	Type      string
	Payload   datatypes.JSON
	UpdatedAt time.Time
}

// image_assets
type ImageAsset struct {
	Path      string `gorm:"primaryKey;size:512"`
	URL       string `gorm:"index;size:1024"`
	JobID     string `gorm:"index;size:36"`
	ProductID string `gorm:"size:64"`
	SHA256    string
	SizeBytes int64
	Skipped   bool
	LastError string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// export_issues: problemy jakości danych (brak ceny, brak obrazka,
// niedopasowany atrybut wariantu)
type ExportIssue struct {
	ID          uint   `gorm:"primaryKey"`
	JobID       string `gorm:"size:36"`
	ProductID   string `gorm:"size:64"`
	VariationID string `gorm:"size:64"`
	Reason      string `gorm:"size:64"`
	Details     string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ostatni udany eksport per źródło
type KV struct {
	K string `gorm:"primaryKey"`
	V string
}
