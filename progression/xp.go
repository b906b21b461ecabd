package progression

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/akofa/fixit/models"
)

// ErrInvalidAmount rejects zero or negative XP grants before any mutation.
var ErrInvalidAmount = errors.New("xp amount must be positive")

// GrantResult reports the outcome of an XP grant.
type GrantResult struct {
	NewTotalXP int  `json:"new_total_xp"`
	OldLevel   int  `json:"old_level"`
	NewLevel   int  `json:"new_level"`
	LeveledUp  bool `json:"leveled_up"`
}

// Ledger is the append-only XP ledger. A grant appends one transaction row
// and bumps the aggregate in the same database transaction; the cached level
// is recomputed there too so it can never drift from total_xp.
type Ledger struct {
	db *gorm.DB
}

// NewLedger creates a Ledger bound to a database handle.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Grant appends an XP transaction and atomically applies it to the user's
// aggregate. The total_xp increment runs as a single UPDATE expression, not
// an application-side read-modify-write.
func (l *Ledger) Grant(userID uint, amount int, actionType, description string) (*GrantResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var res GrantResult
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var agg models.UserXP
		if err := tx.Where("user_id = ?", userID).First(&agg).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			agg = models.UserXP{UserID: userID, CurrentLevel: 1}
			if err := tx.Create(&agg).Error; err != nil {
				return err
			}
		}
		res.OldLevel = agg.CurrentLevel

		entry := models.XPTransaction{
			UserID:      userID,
			Amount:      amount,
			ActionType:  actionType,
			Description: description,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.UserXP{}).Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"total_xp":          gorm.Expr("total_xp + ?", amount),
				"lifetime_xp":       gorm.Expr("lifetime_xp + ?", amount),
				"last_xp_earned_at": now,
			}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).First(&agg).Error; err != nil {
			return err
		}
		status := LevelFor(agg.TotalXP)
		if status.Level != agg.CurrentLevel {
			if err := tx.Model(&models.UserXP{}).Where("user_id = ?", userID).
				Update("current_level", status.Level).Error; err != nil {
				return err
			}
		}

		res.NewTotalXP = agg.TotalXP
		res.NewLevel = status.Level
		res.LeveledUp = status.Level > res.OldLevel
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// Status returns the user's XP aggregate. A user who has never earned XP gets
// a zeroed aggregate at level 1 without creating a row.
func (l *Ledger) Status(userID uint) (models.UserXP, error) {
	var agg models.UserXP
	err := l.db.Where("user_id = ?", userID).First(&agg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserXP{UserID: userID, CurrentLevel: 1}, nil
	}
	if err != nil {
		return models.UserXP{}, err
	}
	return agg, nil
}

// History returns the user's ledger entries, newest first.
func (l *Ledger) History(userID uint, offset, limit int) ([]models.XPTransaction, int64, error) {
	var total int64
	q := l.db.Model(&models.XPTransaction{}).Where("user_id = ?", userID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.XPTransaction
	if err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
