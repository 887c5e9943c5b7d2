package repository

import (
	"errors"

	"gorm.io/gorm"
)

const maxPageSize = 100

// applyPagination pageSize<=0 表示不分页；页容量上限 100
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	pageSize = min(pageSize, maxPageSize)
	page = max(page, 1)
	return query.Limit(pageSize).Offset((page - 1) * pageSize)
}

// takeOne 按条件取一条，未命中返回 nil, nil
func takeOne[T any](db *gorm.DB, query interface{}, args ...interface{}) (*T, error) {
	row := new(T)
	err := db.Where(query, args...).Take(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// listPage 先 Count 再分页查询，orders 依次追加到 ORDER BY，空串跳过
func listPage[T any](query *gorm.DB, page, pageSize int, orders ...string) ([]T, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	rows := []T{}
	if total == 0 {
		return rows, 0, nil
	}
	query = applyPagination(query, page, pageSize)
	for _, order := range orders {
		if order != "" {
			query = query.Order(order)
		}
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
