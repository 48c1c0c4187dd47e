package conversation

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestAllocateVersionStartsAtOne(t *testing.T) {
	child := uuid.New()
	v, ix, err := AllocateVersion(nil, child)
	require.NoError(t, err)
	require.Equal(t, 1, v)
	require.Equal(t, ChildVersionIndex{"1": child}, ix)
}

func TestAllocateVersionIsMaxPlusOne(t *testing.T) {
	prev := ChildVersionIndex{"1": uuid.New(), "3": uuid.New(), "10": uuid.New()}
	child := uuid.New()

	v, ix, err := AllocateVersion(prev, child)
	require.NoError(t, err)
	require.Equal(t, 11, v, "numeric max, not lexical")
	require.Equal(t, child, ix["11"])
	require.Len(t, ix, 4)
	require.Len(t, prev, 3, "input index must not be mutated")
}

func TestAllocateVersionRejectsMalformedKeys(t *testing.T) {
	for _, key := range []string{"abc", "0", "-2", ""} {
		_, _, err := AllocateVersion(ChildVersionIndex{key: uuid.New()}, uuid.New())
		require.Error(t, err, key)
		require.True(t, errors.Is(err, ErrMalformedIndex), key)
	}
}

func TestAllocateVersionRequiresChildID(t *testing.T) {
	_, _, err := AllocateVersion(nil, uuid.Nil)
	require.Error(t, err)
}

func TestSequentialAllocationIsMonotonic(t *testing.T) {
	var ix ChildVersionIndex
	for want := 1; want <= 25; want++ {
		v, next, err := AllocateVersion(ix, uuid.New())
		require.NoError(t, err)
		require.Equal(t, want, v)
		ix = next
	}
	require.Len(t, ix, 25)
}

func TestChildVersionIndexScanValue(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	ix := ChildVersionIndex{"1": a, "2": b}

	raw, err := ix.Value()
	require.NoError(t, err)

	var back ChildVersionIndex
	require.NoError(t, back.Scan(raw))
	require.Equal(t, ix, back)

	require.NoError(t, back.Scan([]byte(`{"1":"`+a.String()+`"}`)))
	require.Equal(t, ChildVersionIndex{"1": a}, back)

	require.NoError(t, back.Scan(nil))
	require.Nil(t, back)

	empty, err := ChildVersionIndex{}.Value()
	require.NoError(t, err)
	require.Nil(t, empty)

	require.Error(t, back.Scan(`{"1":"not-a-uuid"}`))
	require.Error(t, back.Scan(42))
}

func TestLatestSkipsMalformedKeys(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	v, id, skipped := ChildVersionIndex{"2": a, "9": b, "x": uuid.New()}.Latest()
	require.Equal(t, 9, v)
	require.Equal(t, b, id)
	require.Equal(t, []string{"x"}, skipped)

	v, id, skipped = ChildVersionIndex(nil).Latest()
	require.Zero(t, v)
	require.Equal(t, uuid.Nil, id)
	require.Empty(t, skipped)
}

func TestAuxFieldsUpdatesOnlySupplied(t *testing.T) {
	kg := "graph"
	empty := ""
	aux := AuxFields{KnowledgeGraph: &kg, PreviewCode: &empty}
	require.False(t, aux.Empty())
	require.Equal(t, map[string]interface{}{
		"knowledge_graph": "graph",
		"preview_code":    "",
	}, aux.Updates())

	c := &Conversation{}
	aux.Apply(c)
	require.Equal(t, &kg, c.KnowledgeGraph)
	require.Nil(t, c.KnowledgeID)
	require.True(t, AuxFields{}.Empty())
}
