// Package entity defines the domain models for the symbols feature.
package entity

import "time"

// Symbol represents a tracked instrument in the registry.
//
// The lifecycle is encoded by two fields rather than a single enum: IsActive
// plus the optional EndDate distinguish "currently tracked", "was tracked and
// stopped" and "pending reactivation". Once EndDate is set the symbol is
// excluded from new ingestion runs until explicitly reactivated; rows are
// never hard-deleted so historical market data keeps a valid referent.
type Symbol struct {
	ID        uint       `gorm:"primaryKey"`
	Ticker    string     `gorm:"column:symbol;size:10;not null;uniqueIndex"`
	Name      string     `gorm:"size:100"`
	IsActive  bool       `gorm:"not null;default:true"`
	StartDate time.Time  `gorm:"not null"`
	EndDate   *time.Time `gorm:""`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

// TableName maps the entity to the symbols table.
func (Symbol) TableName() string {
	return "symbols"
}
