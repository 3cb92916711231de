package merge

import (
	"testing"

	"github.com/mcoot/cardboard/internal/model"
	"github.com/stretchr/testify/suite"
)

type MergeSuite struct {
	suite.Suite
}

func TestMergeSuite(t *testing.T) {
	suite.Run(t, new(MergeSuite))
}

func (s *MergeSuite) TestNilPatchYieldsEmptyTree() {
	base := model.Attributes{"x": 1.0}

	result := Merge(base, nil)

	s.NotNil(result)
	s.Empty(result)
}

func (s *MergeSuite) TestEmptyPatchCopiesBase() {
	base := model.Attributes{"x": 1.0, "content": model.Attributes{"title": "A"}}

	result := Merge(base, model.Attributes{})

	s.Equal(base, result)

	// Result must not alias base
	result["content"].(model.Attributes)["title"] = "changed"
	s.Equal("A", base["content"].(model.Attributes)["title"])
}

func (s *MergeSuite) TestMergeIsIdempotent() {
	base := model.Attributes{"x": 1.0, "content": model.Attributes{"title": "A", "body": "b"}}
	patch := model.Attributes{"y": 2.0, "content": model.Attributes{"title": "B"}}

	once := Merge(base, patch)
	twice := Merge(once, patch)

	s.Equal(once, twice)
}

func (s *MergeSuite) TestNullDeletesKey() {
	base := model.Attributes{"x": 1.0, "y": 2.0}

	result := Merge(base, model.Attributes{"y": nil})

	s.NotContains(result, "y")
	s.Equal(1.0, result["x"])
}

func (s *MergeSuite) TestNullDeletesNestedKey() {
	base := model.Attributes{"content": model.Attributes{"title": "A", "body": "b"}}

	result := Merge(base, model.Attributes{"content": map[string]any{"body": nil}})

	s.Equal(model.Attributes{"content": model.Attributes{"title": "A"}}, result)
}

func (s *MergeSuite) TestDisjointPatchesAreIndependent() {
	base := model.Attributes{"x": 0.0, "content": model.Attributes{"title": "A"}}
	p1 := model.Attributes{"x": 5.0}
	p2 := model.Attributes{"content": model.Attributes{"body": "text"}}

	s.Equal(Merge(Merge(base, p1), p2), Merge(Merge(base, p2), p1))
}

func (s *MergeSuite) TestSharedScalarIsLastWriteWins() {
	base := model.Attributes{"x": 0.0}

	result := Merge(Merge(base, model.Attributes{"x": 1.0}), model.Attributes{"x": 2.0})

	s.Equal(2.0, result["x"])
}

func (s *MergeSuite) TestArraysOverwrite() {
	base := model.Attributes{"tags": []any{"a", "b"}}

	result := Merge(base, model.Attributes{"tags": []any{"c"}})

	s.Equal([]any{"c"}, result["tags"])
}

func (s *MergeSuite) TestTreeOverScalarReplacesScalar() {
	base := model.Attributes{"content": "plain"}

	result := Merge(base, model.Attributes{"content": model.Attributes{"title": "T"}})

	s.Equal(model.Attributes{"title": "T"}, result["content"])
}

func (s *MergeSuite) TestMergeIntoNilBase() {
	result := Merge(nil, model.Attributes{"x": 3, "content": map[string]any{"title": "T"}})

	s.Equal(3, result["x"])
	s.Equal(model.Attributes{"title": "T"}, result["content"])
}

func (s *MergeSuite) TestInputsAreNotMutated() {
	base := model.Attributes{"content": model.Attributes{"title": "A"}}
	patch := model.Attributes{"content": model.Attributes{"title": "B"}, "y": nil}

	_ = Merge(base, patch)

	s.Equal(model.Attributes{"content": model.Attributes{"title": "A"}}, base)
	s.Equal(model.Attributes{"content": model.Attributes{"title": "B"}, "y": nil}, patch)
}

func (s *MergeSuite) TestConcurrentMoveAndEdit() {
	// Two participants touch different fields of the same card
	card := model.Attributes{
		"x":       0.0,
		"y":       0.0,
		"content": model.Attributes{"title": "A"},
	}

	card = Merge(card, model.Attributes{"x": 5.0})
	card = Merge(card, model.Attributes{"content": model.Attributes{"body": "b"}})

	s.Equal(model.Attributes{
		"x":       5.0,
		"y":       0.0,
		"content": model.Attributes{"title": "A", "body": "b"},
	}, card)
}

func (s *MergeSuite) TestValue() {
	base := model.Attributes{"x": 1.0}

	result, ok := Value(base, nil)
	s.True(ok)
	s.Empty(result)

	result, ok = Value(base, map[string]any{"y": 2.0})
	s.True(ok)
	s.Equal(model.Attributes{"x": 1.0, "y": 2.0}, result)

	_, ok = Value(base, "not a tree")
	s.False(ok)
}
