package service

import (
	"context"
	"errors"
	"testing"

	"spectre/catalog-service/internal/app/catalog/entity"
	"spectre/catalog-service/internal/app/catalog/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func oidPtr(id primitive.ObjectID) *primitive.ObjectID { return &id }

// chainIndex строит цепочку root -> ... -> leaf заданной глубины
func chainIndex(depth int) (CategoryIndex, []primitive.ObjectID) {
	index := CategoryIndex{}
	ids := make([]primitive.ObjectID, depth+1)
	for i := range ids {
		ids[i] = primitive.NewObjectID()
		if i == 0 {
			index[ids[i]] = nil
		} else {
			index[ids[i]] = oidPtr(ids[i-1])
		}
	}
	return index, ids
}

func TestBuildClosure_SharedAncestorsNoDuplicates(t *testing.T) {
	// root <- a <- b, root <- c
	root, a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	index := CategoryIndex{
		root: nil,
		a:    oidPtr(root),
		b:    oidPtr(a),
		c:    oidPtr(root),
	}

	closure, err := BuildClosure(context.Background(), index, []primitive.ObjectID{b, c})

	require.NoError(t, err)
	assert.ElementsMatch(t, []primitive.ObjectID{b, a, root, c}, closure)
	assert.Len(t, closure, 4)
}

func TestBuildClosure_OrderFollowsLeaves(t *testing.T) {
	root, a, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	index := CategoryIndex{root: nil, a: oidPtr(root), c: oidPtr(root)}

	closure, err := BuildClosure(context.Background(), index, []primitive.ObjectID{a, c})

	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a, root, c}, closure)
}

func TestBuildClosure_SizeIsDepthPlusOne(t *testing.T) {
	for _, depth := range []int{0, 1, 4, 10} {
		index, ids := chainIndex(depth)

		closure, err := BuildClosure(context.Background(), index, []primitive.ObjectID{ids[depth]})

		require.NoError(t, err)
		assert.Len(t, closure, depth+1)
		assert.ElementsMatch(t, ids, closure)
	}
}

func TestBuildClosure_TerminatesOnCycle(t *testing.T) {
	x, y, z := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	index := CategoryIndex{x: oidPtr(y), y: oidPtr(z), z: oidPtr(x)}

	closure, err := BuildClosure(context.Background(), index, []primitive.ObjectID{x})

	require.NoError(t, err)
	assert.ElementsMatch(t, []primitive.ObjectID{x, y, z}, closure)
}

func TestBuildClosure_SelfParent(t *testing.T) {
	x := primitive.NewObjectID()
	index := CategoryIndex{x: oidPtr(x)}

	closure, err := BuildClosure(context.Background(), index, []primitive.ObjectID{x})

	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{x}, closure)
}

func TestBuildClosure_MissingCategoryKeepsID(t *testing.T) {
	root := primitive.NewObjectID()
	dangling := primitive.NewObjectID()
	missingParent := primitive.NewObjectID()
	orphan := primitive.NewObjectID()
	index := CategoryIndex{root: nil, orphan: oidPtr(missingParent)}

	closure, err := BuildClosure(context.Background(), index, []primitive.ObjectID{dangling, orphan})

	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{dangling, orphan, missingParent}, closure)
}

func TestBuildClosure_EmptyInput(t *testing.T) {
	closure, err := BuildClosure(context.Background(), CategoryIndex{}, nil)

	require.NoError(t, err)
	assert.Empty(t, closure)
	assert.NotNil(t, closure)
}

func TestBuildClosure_DuplicateLeaves(t *testing.T) {
	index, ids := chainIndex(2)

	closure, err := BuildClosure(context.Background(), index, []primitive.ObjectID{ids[2], ids[2], ids[1]})

	require.NoError(t, err)
	assert.Len(t, closure, 3)
}

func TestRepositoryParentResolver(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryCategoryRepository()
	svc := NewCategoryService(repo, new(mocks.MockProductRepository), nil, "fr")
	leaf, chain, err := svc.CreateOrGetByPath(ctx, []string{"Furniture", "Chairs", "Folding"})
	require.NoError(t, err)

	closure, err := BuildClosure(ctx, NewRepositoryParentResolver(repo), []primitive.ObjectID{leaf})

	require.NoError(t, err)
	assert.ElementsMatch(t, chain, closure)
}

func TestRepositoryParentResolver_PropagatesStoreErrors(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.MockCategoryRepository)
	repo.On("GetByID", ctx, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := BuildClosure(ctx, NewRepositoryParentResolver(repo), []primitive.ObjectID{primitive.NewObjectID()})

	assert.Error(t, err)
}

func TestNewCategoryIndex(t *testing.T) {
	root := entity.Category{ID: primitive.NewObjectID()}
	child := entity.Category{ID: primitive.NewObjectID(), ParentID: oidPtr(root.ID)}

	index := NewCategoryIndex([]entity.Category{root, child})

	parent, found, err := index.ParentOf(context.Background(), child.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, root.ID, *parent)

	_, found, _ = index.ParentOf(context.Background(), primitive.NewObjectID())
	assert.False(t, found)
}

func TestSameIDSet(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

	assert.True(t, sameIDSet([]primitive.ObjectID{a, b}, []primitive.ObjectID{b, a}))
	assert.False(t, sameIDSet([]primitive.ObjectID{a, b}, []primitive.ObjectID{a, c}))
	assert.False(t, sameIDSet([]primitive.ObjectID{a, b}, []primitive.ObjectID{a, a}))
	assert.False(t, sameIDSet([]primitive.ObjectID{a}, []primitive.ObjectID{a, b}))
	assert.True(t, sameIDSet(nil, []primitive.ObjectID{}))
}
