package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MonthLayout formats the FeatureUsage period key ("YYYY-MM").
const MonthLayout = "2006-01"

// MonthKey returns the UTC calendar month of t.
func MonthKey(t time.Time) string {
	return t.UTC().Format(MonthLayout)
}

// FeatureCounter names a FeatureUsage column.
type FeatureCounter string

const (
	CounterNone         FeatureCounter = ""
	CounterDesignFiles  FeatureCounter = "design_files"
	CounterScreenFlows  FeatureCounter = "screen_flows"
	CounterFigmaExports FeatureCounter = "figma_exports"
	CounterCodeExports  FeatureCounter = "code_exports"
)

// FeatureUsage holds per-user monthly counters for quota-limited actions.
type FeatureUsage struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID       string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_feature_usages_user_month" json:"user_id"`
	Month        string    `gorm:"size:7;not null;uniqueIndex:idx_feature_usages_user_month" json:"month"`
	DesignFiles  int       `gorm:"not null;default:0" json:"design_files"`
	ScreenFlows  int       `gorm:"not null;default:0" json:"screen_flows"`
	FigmaExports int       `gorm:"not null;default:0" json:"figma_exports"`
	CodeExports  int       `gorm:"not null;default:0" json:"code_exports"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (FeatureUsage) TableName() string {
	return "feature_usages"
}

func (f *FeatureUsage) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// Count returns the value of the given counter. Nil rows count as zero.
func (f *FeatureUsage) Count(counter FeatureCounter) int {
	if f == nil {
		return 0
	}
	switch counter {
	case CounterDesignFiles:
		return f.DesignFiles
	case CounterScreenFlows:
		return f.ScreenFlows
	case CounterFigmaExports:
		return f.FigmaExports
	case CounterCodeExports:
		return f.CodeExports
	default:
		return 0
	}
}
