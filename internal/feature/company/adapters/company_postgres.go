package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stock_collector/internal/feature/company/domain/entity"
	"stock_collector/internal/feature/company/usecase"
	symentity "stock_collector/internal/feature/symbols/domain/entity"
)

var _ usecase.CompanyWriter = (*companyPostgres)(nil)

// CompanyInfoModel は企業プロフィールのレコード。symbols.symbol への外部キーを
// 持ち、シンボル削除時にはカスケードで消える。
type CompanyInfoModel struct {
	ID          uint             `gorm:"primaryKey"`
	Symbol      string           `gorm:"size:10;not null;uniqueIndex"`
	SymbolRef   symentity.Symbol `gorm:"foreignKey:Symbol;references:Ticker;constraint:OnDelete:CASCADE"`
	CompanyName string           `gorm:"size:255"`
	Industry    string           `gorm:"size:255"`
	Sector      string           `gorm:"size:255"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (CompanyInfoModel) TableName() string { return "yahoo_company_info" }

// CompanyOfficerModel は役員レコード。プロフィール入替のたびに全削除・再挿入される。
type CompanyOfficerModel struct {
	ID               uint             `gorm:"primaryKey"`
	Symbol           string           `gorm:"size:10;not null;index"`
	SymbolRef        symentity.Symbol `gorm:"foreignKey:Symbol;references:Ticker;constraint:OnDelete:CASCADE"`
	Name             string           `gorm:"size:255"`
	Title            string           `gorm:"size:255"`
	Age              int
	YearBorn         int
	FiscalYear       int
	TotalPay         int64
	ExercisedValue   int64
	UnexercisedValue int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (CompanyOfficerModel) TableName() string { return "yahoo_company_officers" }

type companyPostgres struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *companyPostgres {
	return &companyPostgres{db: db}
}

// Replace rewrites the stored profile for one symbol in a single
// transaction: the info row is upserted and the officer rows are swapped
// wholesale. The symbol must already exist in the registry.
func (r *companyPostgres) Replace(ctx context.Context, ref entity.CompanyReference) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var registered int64
		if err := tx.Table("symbols").Where("symbol = ?", ref.Symbol).Count(&registered).Error; err != nil {
			return err
		}
		if registered == 0 {
			return fmt.Errorf("company profile for %s: %w", ref.Symbol, usecase.ErrUnregisteredSymbol)
		}

		info := CompanyInfoModel{
			Symbol:      ref.Symbol,
			CompanyName: ref.CompanyName,
			Industry:    ref.Industry,
			Sector:      ref.Sector,
		}
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "symbol"}},
			DoUpdates: clause.AssignmentColumns([]string{"company_name", "industry", "sector", "updated_at"}),
		}).Create(&info).Error
		if err != nil {
			return err
		}

		if err := tx.Where("symbol = ?", ref.Symbol).Delete(&CompanyOfficerModel{}).Error; err != nil {
			return err
		}
		if len(ref.Officers) == 0 {
			return nil
		}
		rows := make([]CompanyOfficerModel, 0, len(ref.Officers))
		for _, o := range ref.Officers {
			rows = append(rows, CompanyOfficerModel{
				Symbol:           ref.Symbol,
				Name:             o.Name,
				Title:            o.Title,
				Age:              o.Age,
				YearBorn:         o.YearBorn,
				FiscalYear:       o.FiscalYear,
				TotalPay:         o.TotalPay,
				ExercisedValue:   o.ExercisedValue,
				UnexercisedValue: o.UnexercisedValue,
			})
		}
		return tx.Omit(clause.Associations).Create(&rows).Error
	})
}

// FindBySymbol returns the stored profile, or (nil, nil) when none exists.
func (r *companyPostgres) FindBySymbol(ctx context.Context, symbol string) (*entity.CompanyReference, error) {
	var info CompanyInfoModel
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&info).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var officers []CompanyOfficerModel
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).Order("id ASC").Find(&officers).Error; err != nil {
		return nil, err
	}

	ref := &entity.CompanyReference{
		Symbol:      info.Symbol,
		CompanyName: info.CompanyName,
		Industry:    info.Industry,
		Sector:      info.Sector,
	}
	for _, o := range officers {
		ref.Officers = append(ref.Officers, entity.Officer{
			Name:             o.Name,
			Title:            o.Title,
			Age:              o.Age,
			YearBorn:         o.YearBorn,
			FiscalYear:       o.FiscalYear,
			TotalPay:         o.TotalPay,
			ExercisedValue:   o.ExercisedValue,
			UnexercisedValue: o.UnexercisedValue,
		})
	}
	return ref, nil
}
