package service

import (
	"context"
	"errors"

	"spectre/catalog-service/internal/app/catalog/entity"
	"spectre/catalog-service/internal/app/catalog/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParentResolver отдаёт родителя категории.
// found=false - категории нет, цепочка на ней обрывается.
type ParentResolver interface {
	ParentOf(ctx context.Context, id primitive.ObjectID) (parent *primitive.ObjectID, found bool, err error)
}

type repositoryParentResolver struct {
	repo repository.CategoryRepository
}

// NewRepositoryParentResolver читает родителей из хранилища по одному запросу на узел
func NewRepositoryParentResolver(repo repository.CategoryRepository) ParentResolver {
	return &repositoryParentResolver{repo: repo}
}

func (r *repositoryParentResolver) ParentOf(ctx context.Context, id primitive.ObjectID) (*primitive.ObjectID, bool, error) {
	category, err := r.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return category.ParentID, true, nil
}

// CategoryIndex - родители всех категорий в памяти, для массового пересчёта
type CategoryIndex map[primitive.ObjectID]*primitive.ObjectID

func NewCategoryIndex(categories []entity.Category) CategoryIndex {
	index := make(CategoryIndex, len(categories))
	for i := range categories {
		index[categories[i].ID] = categories[i].ParentID
	}
	return index
}

func (idx CategoryIndex) ParentOf(_ context.Context, id primitive.ObjectID) (*primitive.ObjectID, bool, error) {
	parent, ok := idx[id]
	return parent, ok, nil
}

// BuildClosure возвращает листья вместе со всеми их предками без повторов.
// Обход итеративный с общим множеством seen, поэтому циклы в данных не зацикливают его.
// Порядок: первый лист, его предки снизу вверх, затем следующий лист.
func BuildClosure(ctx context.Context, resolver ParentResolver, leafIDs []primitive.ObjectID) ([]primitive.ObjectID, error) {
	seen := make(map[primitive.ObjectID]struct{}, len(leafIDs)*3)
	result := make([]primitive.ObjectID, 0, len(leafIDs)*3)

	stack := make([]primitive.ObjectID, 0, len(leafIDs))
	for i := len(leafIDs) - 1; i >= 0; i-- {
		stack = append(stack, leafIDs[i])
	}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)

		parent, found, err := resolver.ParentOf(ctx, id)
		if err != nil {
			return nil, err
		}
		if !found || parent == nil {
			continue
		}
		if _, ok := seen[*parent]; !ok {
			stack = append(stack, *parent)
		}
	}

	return result, nil
}

// sameIDSet сравнивает наборы без учёта порядка
func sameIDSet(a, b []primitive.ObjectID) bool {
	setA := make(map[primitive.ObjectID]struct{}, len(a))
	for _, id := range a {
		setA[id] = struct{}{}
	}
	setB := make(map[primitive.ObjectID]struct{}, len(b))
	for _, id := range b {
		if _, ok := setA[id]; !ok {
			return false
		}
		setB[id] = struct{}{}
	}
	return len(setA) == len(setB) && len(setA) == len(a) && len(setB) == len(b)
}
