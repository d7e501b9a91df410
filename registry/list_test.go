package registry

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/ncrelay/api"
)

func intEq(a, b int) bool { return a == b }

func intCmp(a, b int) int { return a - b }

// checkInvariants walks the nodes and verifies length and tail bookkeeping.
func checkInvariants[T any](t *testing.T, l *List[T]) {
	t.Helper()
	n := 0
	var last *node[T]
	for p := l.root; p != nil; p = p.next {
		n++
		last = p
	}
	require.Equal(t, n, l.length, "length must match reachable nodes")
	require.Same(t, last, l.last, "tail must be the true last node")
	if l.length == 0 {
		require.Nil(t, l.root)
		require.Nil(t, l.last)
	}
}

func listOf(vals ...int) *List[int] {
	l := NewList[int]()
	for _, v := range vals {
		l.Append(v)
	}
	return l
}

func TestListAppendGetModify(t *testing.T) {
	l := listOf(1, 2, 3)
	checkInvariants(t, l)

	v, err := l.Get(2)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	require.NoError(t, l.Modify(1, 20))
	assert.Equal(t, []int{1, 20, 3}, l.Values())

	_, err = l.Get(3)
	assert.ErrorIs(t, err, api.ErrIndexOutOfRange)
	_, err = l.Get(-1)
	assert.ErrorIs(t, err, api.ErrIndexOutOfRange)
	assert.ErrorIs(t, l.Modify(3, 0), api.ErrIndexOutOfRange)

	_, err = NewList[int]().Get(0)
	assert.ErrorIs(t, err, api.ErrIndexOutOfRange)
}

func TestListInsert(t *testing.T) {
	l := NewList[int]()
	require.NoError(t, l.Insert(2, 0)) // head on empty
	checkInvariants(t, l)
	require.NoError(t, l.Insert(4, 1)) // index == length appends
	require.NoError(t, l.Insert(1, 0))
	require.NoError(t, l.Insert(3, 2)) // middle splice
	checkInvariants(t, l)
	assert.Equal(t, []int{1, 2, 3, 4}, l.Values())

	assert.ErrorIs(t, l.Insert(9, 5), api.ErrIndexOutOfRange)
	assert.ErrorIs(t, l.Insert(9, -1), api.ErrIndexOutOfRange)
	assert.ErrorIs(t, NewList[int]().Insert(9, 1), api.ErrIndexOutOfRange)
}

func TestListLocate(t *testing.T) {
	l := listOf(5, 7, 5, 9)
	assert.Equal(t, 0, l.Locate(5, intEq))
	assert.Equal(t, 3, l.Locate(9, intEq))
	assert.Equal(t, -1, l.Locate(42, intEq))
	assert.Equal(t, -1, NewList[int]().Locate(1, intEq))
}

func TestListRemove(t *testing.T) {
	l := listOf(1, 2, 3, 4)

	assert.Equal(t, 3, l.Remove(4, intEq)) // tail
	checkInvariants(t, l)
	assert.Equal(t, 0, l.Remove(1, intEq)) // head
	checkInvariants(t, l)
	assert.Equal(t, -1, l.Remove(42, intEq))
	assert.Equal(t, []int{2, 3}, l.Values())

	assert.Equal(t, 1, l.Remove(3, intEq))
	assert.Equal(t, 0, l.Remove(2, intEq))
	checkInvariants(t, l)
	assert.True(t, l.Empty())
	assert.Equal(t, -1, l.Remove(2, intEq))

	// The list stays usable after being emptied.
	l.Append(8)
	checkInvariants(t, l)
}

func TestListReleaseHook(t *testing.T) {
	var released []int
	l := NewList(WithRelease(func(v int) { released = append(released, v) }))
	for _, v := range []int{1, 2, 2, 3} {
		l.Append(v)
	}
	l.Remove(1, intEq)
	assert.Equal(t, 1, l.Unique(intEq))
	l.Clear()
	checkInvariants(t, l)
	assert.Equal(t, []int{1, 2, 2, 3}, released)
}

func TestListExtend(t *testing.T) {
	dst := listOf(1, 2)
	src := listOf(3, 4)
	dst.Extend(src)
	checkInvariants(t, dst)
	assert.Equal(t, []int{1, 2, 3, 4}, dst.Values())
	assert.Equal(t, []int{3, 4}, src.Values())

	dst.Extend(dst)
	assert.Equal(t, []int{1, 2, 3, 4, 1, 2, 3, 4}, dst.Values())

	empty := NewList[int]()
	empty.Extend(src)
	checkInvariants(t, empty)
	assert.Equal(t, []int{3, 4}, empty.Values())
}

func TestListUnique(t *testing.T) {
	l := listOf(2, 2, 3, 2)
	assert.Equal(t, 2, l.Unique(intEq))
	checkInvariants(t, l)
	assert.Equal(t, []int{2, 3}, l.Values())

	l = listOf(1, 2, 3, 1, 2, 3, 4, 4)
	assert.Equal(t, 4, l.Unique(intEq))
	checkInvariants(t, l)
	assert.Equal(t, []int{1, 2, 3, 4}, l.Values())

	assert.Equal(t, 0, NewList[int]().Unique(intEq))
}

func TestListReverse(t *testing.T) {
	l := listOf(1, 2, 3, 4)
	assert.True(t, l.Reverse())
	checkInvariants(t, l)
	assert.Equal(t, []int{4, 3, 2, 1}, l.Values())
	assert.True(t, l.Reverse())
	assert.Equal(t, []int{1, 2, 3, 4}, l.Values())

	single := listOf(7)
	assert.False(t, single.Reverse())
	assert.Equal(t, []int{7}, single.Values())
	assert.False(t, NewList[int]().Reverse())
}

type pair struct {
	key, seq int
}

func TestListSortIsStable(t *testing.T) {
	l := NewList[pair]()
	keys := []int{3, 1, 2, 1, 3, 2, 1}
	for i, k := range keys {
		l.Append(pair{key: k, seq: i})
	}
	byKey := func(a, b pair) int { return a.key - b.key }

	l.Sort(byKey)
	checkInvariants(t, l)
	want := []pair{{1, 1}, {1, 3}, {1, 6}, {2, 2}, {2, 5}, {3, 0}, {3, 4}}
	assert.Equal(t, want, l.Values())

	l.Sort(byKey)
	assert.Equal(t, want, l.Values(), "sorting twice must not reorder ties")

	// The cached tail is valid after sorting.
	l.Append(pair{key: 0, seq: 99})
	checkInvariants(t, l)
}

func TestListSortSmall(t *testing.T) {
	l := NewList[int]()
	l.Sort(intCmp)
	checkInvariants(t, l)

	l.Append(1)
	l.Sort(intCmp)
	checkInvariants(t, l)

	l = listOf(2, 1)
	l.Sort(intCmp)
	checkInvariants(t, l)
	assert.Equal(t, []int{1, 2}, l.Values())
}

func TestListRandomOperationsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	l := NewList[int]()
	var model []int
	for i := 0; i < 2000; i++ {
		v := rng.Intn(20)
		switch rng.Intn(4) {
		case 0:
			l.Append(v)
			model = append(model, v)
		case 1:
			idx := rng.Intn(len(model) + 1)
			require.NoError(t, l.Insert(v, idx))
			model = append(model[:idx], append([]int{v}, model[idx:]...)...)
		case 2:
			got := l.Remove(v, intEq)
			want := -1
			for j, m := range model {
				if m == v {
					want = j
					break
				}
			}
			require.Equal(t, want, got)
			if want >= 0 {
				model = append(model[:want], model[want+1:]...)
			}
		case 3:
			if rng.Intn(10) == 0 {
				l.Sort(intCmp)
				sortInts(model)
			}
		}
		checkInvariants(t, l)
	}
	assert.Equal(t, len(model), l.Len())
	if len(model) > 0 {
		assert.Equal(t, model, l.Values())
	}
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

func TestListEachStopsEarly(t *testing.T) {
	l := listOf(1, 2, 3, 4)
	var seen []int
	l.Each(func(i, v int) bool {
		seen = append(seen, v)
		return i < 1
	})
	assert.Equal(t, []int{1, 2}, seen)
}
