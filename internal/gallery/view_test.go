package gallery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestViewReplaceCopies(t *testing.T) {
	src := []Image{{ID: "a"}, {ID: "b"}}
	v := &view{}
	v.replace(src)

	src[0].ID = "mutated"
	assert.Equal(t, "a", v.entries[0].ID)
	assert.Equal(t, 2, v.size())
}

func TestViewSnapshotIsDetached(t *testing.T) {
	v := &view{}
	v.append(Image{ID: "a"})

	snap := v.snapshot()
	v.append(Image{ID: "b"})

	assert.Len(t, snap, 1)
	assert.Equal(t, 2, v.size())
}

func TestRemoveTransitionApplyAndCompensate(t *testing.T) {
	v := &view{}
	v.replace([]Image{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	tr := &removeTransition{image: Image{ID: "b"}}
	assert.True(t, tr.Apply(v))
	assert.Equal(t, 2, v.size())

	tr.Compensate(v)
	assert.Equal(t, 3, v.size())
	// Reinsertion is at the tail.
	assert.Equal(t, "b", v.entries[2].ID)
}

func TestRemoveTransitionApplyMissing(t *testing.T) {
	v := &view{}
	v.replace([]Image{{ID: "a"}})

	tr := &removeTransition{image: Image{ID: "zzz"}}
	assert.False(t, tr.Apply(v))
	assert.Equal(t, 1, v.size())

	// Compensate after a no-op apply must not resurrect anything.
	tr.Compensate(v)
	assert.Equal(t, 1, v.size())
}

func TestRemoveTransitionCompensateIsSingleShot(t *testing.T) {
	v := &view{}
	v.replace([]Image{{ID: "a"}})

	tr := &removeTransition{image: Image{ID: "a"}}
	assert.True(t, tr.Apply(v))
	tr.Compensate(v)
	tr.Compensate(v)
	assert.Equal(t, 1, v.size())
}
