package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"spectre/catalog-service/internal/app/catalog/entity"
	"spectre/catalog-service/internal/app/catalog/repository"
	"spectre/catalog-service/internal/app/catalog/util"
	"spectre/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const categoriesCacheTTL = time.Hour

// CategoryService управляет деревом категорий.
// Переименование и перенос пересчитывают только сам узел: fullPath потомков не обновляется.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cache        util.RedisCache
	locale       string
}

// NewCategoryService - cache может быть nil, тогда список всегда читается из MongoDB
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache util.RedisCache,
	locale string,
) *CategoryService {
	if locale == "" {
		locale = util.LocaleFR
	}
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		locale:       locale,
	}
}

// CreateOrGetByPath находит или создаёт каждую категорию цепочки имён от корня.
// Возвращает ID листа и ID всех звеньев. Повторный вызов с той же цепочкой ничего не создаёт.
func (s *CategoryService) CreateOrGetByPath(ctx context.Context, names []string) (primitive.ObjectID, []primitive.ObjectID, error) {
	if len(names) == 0 {
		return primitive.NilObjectID, nil, ErrEmptyCategoryPath
	}

	var parent *entity.Category
	chain := make([]primitive.ObjectID, 0, len(names))
	created := false

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		slug := util.SlugifyLocale(name, s.locale)
		if slug == "" {
			return primitive.NilObjectID, nil, fmt.Errorf("%w: %q", ErrInvalidCategoryName, raw)
		}

		fullPath := joinPath(parent, slug)

		current, err := s.categoryRepo.GetByFullPath(ctx, fullPath)
		switch {
		case err == nil:
		case errors.Is(err, repository.ErrCategoryNotFound):
			current = newCategoryNode(name, slug, parent)
			if err := s.categoryRepo.Create(ctx, current); err != nil {
				if !errors.Is(err, repository.ErrCategoryExists) {
					return primitive.NilObjectID, nil, fmt.Errorf("failed to create category %q: %w", fullPath, err)
				}
				// параллельный импорт успел создать тот же путь
				current, err = s.categoryRepo.GetByFullPath(ctx, fullPath)
				if err != nil {
					if errors.Is(err, repository.ErrCategoryNotFound) {
						return primitive.NilObjectID, nil, fmt.Errorf("%w: %s", ErrCategoryConflict, fullPath)
					}
					return primitive.NilObjectID, nil, fmt.Errorf("failed to re-read category %q: %w", fullPath, err)
				}
			} else {
				created = true
			}
		default:
			return primitive.NilObjectID, nil, fmt.Errorf("failed to get category %q: %w", fullPath, err)
		}

		chain = append(chain, current.ID)
		parent = current
	}

	if created {
		s.invalidateCache(ctx)
	}

	return parent.ID, chain, nil
}

// Create создает одну категорию под существующим родителем (или в корне)
func (s *CategoryService) Create(ctx context.Context, req *entity.CreateCategoryRequest) (*entity.Category, error) {
	var parent *entity.Category
	if req.ParentID != "" {
		parentID, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCategoryID, req.ParentID)
		}
		parent, err = s.categoryRepo.GetByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("failed to get parent category: %w", err)
		}
	}

	name := strings.TrimSpace(req.Name)
	slug := util.SlugifyLocale(name, s.locale)
	if slug == "" {
		return nil, ErrInvalidCategoryName
	}

	category := newCategoryNode(name, slug, parent)
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryExists) {
			return nil, ErrCategoryConflict
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.invalidateCache(ctx)
	return category, nil
}

func (s *CategoryService) Get(ctx context.Context, id primitive.ObjectID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// List возвращает все категории по fullPath с меткой "— " * depth + name.
// Результат кешируется в Redis на час.
func (s *CategoryService) List(ctx context.Context) ([]entity.CategoryListItem, error) {
	if s.cache != nil {
		cached, err := s.cache.GetCategories(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to read categories cache")
		} else if len(cached) > 0 {
			return cached, nil
		}
	}

	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	sort.SliceStable(categories, func(i, j int) bool {
		return categories[i].FullPath < categories[j].FullPath
	})

	items := make([]entity.CategoryListItem, 0, len(categories))
	for _, c := range categories {
		items = append(items, entity.CategoryListItem{
			ID:       c.ID,
			Name:     c.Name,
			Slug:     c.Slug,
			FullPath: c.FullPath,
			Depth:    c.Depth,
			ParentID: c.ParentID,
			Label:    CategoryLabel(c.Name, c.Depth),
		})
	}

	if s.cache != nil && len(items) > 0 {
		if err := s.cache.SetCategories(ctx, items, categoriesCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache categories")
		}
	}

	return items, nil
}

func CategoryLabel(name string, depth int) string {
	if depth < 0 {
		depth = 0
	}
	return strings.Repeat("— ", depth) + name
}

// Update применяет переименование и/или перенос.
// ParentID == "" означает перенос в корень.
func (s *CategoryService) Update(ctx context.Context, id primitive.ObjectID, req *entity.UpdateCategoryRequest) (*entity.Category, error) {
	move := false
	var parentID *primitive.ObjectID
	if req.ParentID != nil {
		move = true
		if *req.ParentID != "" {
			oid, err := primitive.ObjectIDFromHex(*req.ParentID)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidCategoryID, *req.ParentID)
			}
			parentID = &oid
		}
	}
	return s.reshape(ctx, id, req.Name, parentID, move)
}

// RenameShallow меняет имя, slug и fullPath узла; потомки сохраняют прежний fullPath
func (s *CategoryService) RenameShallow(ctx context.Context, id primitive.ObjectID, name string) (*entity.Category, error) {
	return s.reshape(ctx, id, &name, nil, false)
}

// MoveShallow переносит узел под нового родителя (nil - в корень); потомки не трогаются
func (s *CategoryService) MoveShallow(ctx context.Context, id primitive.ObjectID, parentID *primitive.ObjectID) (*entity.Category, error) {
	return s.reshape(ctx, id, nil, parentID, true)
}

func (s *CategoryService) reshape(ctx context.Context, id primitive.ObjectID, name *string, parentID *primitive.ObjectID, move bool) (*entity.Category, error) {
	category, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	newName := category.Name
	if name != nil {
		newName = strings.TrimSpace(*name)
	}

	targetParentID := category.ParentID
	if move {
		targetParentID = parentID
	}

	var parent *entity.Category
	if targetParentID != nil {
		if move {
			if err := s.ensureNotDescendant(ctx, id, *targetParentID); err != nil {
				return nil, err
			}
		}
		parent, err = s.categoryRepo.GetByID(ctx, *targetParentID)
		if err != nil {
			if errors.Is(err, repository.ErrCategoryNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("failed to get parent category: %w", err)
		}
	}

	slug := util.SlugifyLocale(newName, s.locale)
	if slug == "" {
		return nil, ErrInvalidCategoryName
	}

	node := newCategoryNode(newName, slug, parent)
	category.Name = node.Name
	category.Slug = node.Slug
	category.ParentID = node.ParentID
	category.FullPath = node.FullPath
	category.Depth = node.Depth
	category.Ancestors = node.Ancestors

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryExists):
			return nil, ErrCategoryConflict
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.invalidateCache(ctx)
	return category, nil
}

// ensureNotDescendant проходит по parent_id от нового родителя вверх.
// Сохранённым ancestors не доверяем: после неглубоких переносов они могут устареть.
func (s *CategoryService) ensureNotDescendant(ctx context.Context, id, newParentID primitive.ObjectID) error {
	lineage, err := BuildClosure(ctx, NewRepositoryParentResolver(s.categoryRepo), []primitive.ObjectID{newParentID})
	if err != nil {
		return fmt.Errorf("failed to resolve parent lineage: %w", err)
	}
	for _, ancestor := range lineage {
		if ancestor == id {
			return ErrCategoryCycle
		}
	}
	return nil
}

// Delete удаляет бездетную категорию и убирает её из товаров.
// Очистка товаров выполняется отдельным запросом без транзакции.
func (s *CategoryService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	children, err := s.categoryRepo.CountChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count children: %w", err)
	}
	if children > 0 {
		return &HasChildrenError{CategoryID: id.Hex(), Children: children}
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	modified, err := s.productRepo.PullCategory(ctx, id)
	if err != nil {
		logger.Error().Err(err).Str("category_id", id.Hex()).Msg("Category deleted but products still reference it")
	} else if modified > 0 {
		logger.Info().Str("category_id", id.Hex()).Int64("products", modified).Msg("Category removed from products")
	}

	s.invalidateCache(ctx)
	return nil
}

// PruneEmpty удаляет бездетные категории, на которые не ссылается ни один товар,
// и повторяет проход, пока есть что удалять. Возвращает число удалённых категорий.
func (s *CategoryService) PruneEmpty(ctx context.Context) (int, error) {
	total := 0

	for {
		categories, err := s.categoryRepo.GetAll(ctx)
		if err != nil {
			return total, fmt.Errorf("failed to get categories: %w", err)
		}

		referencedIDs, err := s.productRepo.ReferencedCategoryIDs(ctx)
		if err != nil {
			return total, err
		}
		referenced := make(map[primitive.ObjectID]struct{}, len(referencedIDs))
		for _, id := range referencedIDs {
			referenced[id] = struct{}{}
		}

		hasChildren := make(map[primitive.ObjectID]struct{})
		for _, c := range categories {
			if c.ParentID != nil {
				hasChildren[*c.ParentID] = struct{}{}
			}
		}

		removed := 0
		for _, c := range categories {
			if _, ok := hasChildren[c.ID]; ok {
				continue
			}
			if _, ok := referenced[c.ID]; ok {
				continue
			}
			if err := s.categoryRepo.Delete(ctx, c.ID); err != nil && !errors.Is(err, repository.ErrCategoryNotFound) {
				return total, fmt.Errorf("failed to delete category %s: %w", c.FullPath, err)
			}
			logger.Info().Str("full_path", c.FullPath).Msg("Pruned empty category")
			removed++
		}

		total += removed
		if removed == 0 {
			break
		}
	}

	if total > 0 {
		s.invalidateCache(ctx)
	}
	return total, nil
}

func (s *CategoryService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
}

func joinPath(parent *entity.Category, slug string) string {
	if parent == nil {
		return slug
	}
	return parent.FullPath + "/" + slug
}

// newCategoryNode вычисляет parentId, fullPath, depth и ancestors от родителя
func newCategoryNode(name, slug string, parent *entity.Category) *entity.Category {
	category := &entity.Category{
		Name:      name,
		Slug:      slug,
		FullPath:  joinPath(parent, slug),
		Ancestors: []primitive.ObjectID{},
	}
	if parent != nil {
		parentID := parent.ID
		category.ParentID = &parentID
		category.Ancestors = append(append(category.Ancestors, parent.Ancestors...), parent.ID)
	}
	category.Depth = len(category.Ancestors)
	return category
}
