package repo

import "gorm.io/gorm"

type GormRepo struct {
	DB *gorm.DB
}

// Transaction runs fn with a repo bound to a database transaction.
func (r *GormRepo) Transaction(fn func(tx *GormRepo) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}
