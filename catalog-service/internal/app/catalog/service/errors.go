package service

import (
	"errors"
	"fmt"
)

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrParentNotFound      = errors.New("parent category not found")
	ErrCategoryConflict    = errors.New("category with this slug already exists under the same parent")
	ErrInvalidCategoryName = errors.New("category name produces an empty slug")
	ErrEmptyCategoryPath   = errors.New("category path is empty")
	ErrCategoryCycle       = errors.New("category cannot be moved under itself or one of its descendants")
	ErrInvalidCategoryID   = errors.New("invalid category id")

	ErrProductNotFound      = errors.New("product not found")
	ErrDuplicateSKU         = errors.New("product with this sku already exists")
	ErrImageHostingDisabled = errors.New("image hosting is not configured")
	ErrImageUpload          = errors.New("failed to upload image")
)

// HasChildrenError - удаление категории, у которой есть дочерние
type HasChildrenError struct {
	CategoryID string
	Children   int64
}

func (e *HasChildrenError) Error() string {
	return fmt.Sprintf("category %s has %d child categories", e.CategoryID, e.Children)
}
