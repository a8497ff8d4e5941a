package service

import (
	"context"
	"sort"
	"sync"

	"spectre/catalog-service/internal/app/catalog/entity"
	"spectre/catalog-service/internal/app/catalog/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryCategoryRepository - CategoryRepository в памяти с теми же
// ограничениями уникальности, что и индексы MongoDB
type memoryCategoryRepository struct {
	mu         sync.Mutex
	categories map[primitive.ObjectID]entity.Category
	creates    int
}

func newMemoryCategoryRepository() *memoryCategoryRepository {
	return &memoryCategoryRepository{categories: make(map[primitive.ObjectID]entity.Category)}
}

func (r *memoryCategoryRepository) conflicts(c *entity.Category) bool {
	for id, existing := range r.categories {
		if id == c.ID {
			continue
		}
		if existing.FullPath == c.FullPath {
			return true
		}
		if existing.Slug == c.Slug && sameParent(existing.ParentID, c.ParentID) {
			return true
		}
	}
	return false
}

func sameParent(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *memoryCategoryRepository) Create(_ context.Context, category *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.conflicts(category) {
		return repository.ErrCategoryExists
	}
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	r.categories[category.ID] = cloneCategory(*category)
	r.creates++
	return nil
}

func (r *memoryCategoryRepository) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, repository.ErrCategoryNotFound
	}
	c = cloneCategory(c)
	return &c, nil
}

func (r *memoryCategoryRepository) GetByFullPath(_ context.Context, fullPath string) (*entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if c.FullPath == fullPath {
			c = cloneCategory(c)
			return &c, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (r *memoryCategoryRepository) GetAll(_ context.Context) ([]entity.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, cloneCategory(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullPath < out[j].FullPath })
	return out, nil
}

func (r *memoryCategoryRepository) Update(_ context.Context, category *entity.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[category.ID]; !ok {
		return repository.ErrCategoryNotFound
	}
	if r.conflicts(category) {
		return repository.ErrCategoryExists
	}
	r.categories[category.ID] = cloneCategory(*category)
	return nil
}

func (r *memoryCategoryRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return repository.ErrCategoryNotFound
	}
	delete(r.categories, id)
	return nil
}

func (r *memoryCategoryRepository) CountChildren(_ context.Context, id primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, c := range r.categories {
		if c.ParentID != nil && *c.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (r *memoryCategoryRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.categories)
}

func (r *memoryCategoryRepository) mustGetByPath(path string) entity.Category {
	c, err := r.GetByFullPath(context.Background(), path)
	if err != nil {
		panic("category not found: " + path)
	}
	return *c
}

func cloneCategory(c entity.Category) entity.Category {
	c.Ancestors = append([]primitive.ObjectID{}, c.Ancestors...)
	if c.ParentID != nil {
		p := *c.ParentID
		c.ParentID = &p
	}
	return c
}
