package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualStrategies(t *testing.T) {
	t.Run("Should ignore order for set strategy values", func(t *testing.T) {
		assert.True(t, equal(Set, []string{"a", "b"}, []string{"b", "a"}))
		assert.False(t, equal(Set, []string{"a", "b"}, []string{"a", "c"}))
	})

	t.Run("Should respect order for sequence strategy values", func(t *testing.T) {
		assert.True(t, equal(Sequence, []string{"a", "b"}, []string{"a", "b"}))
		assert.False(t, equal(Sequence, []string{"a", "b"}, []string{"b", "a"}))
	})

	t.Run("Should treat unset and empty collection as different", func(t *testing.T) {
		assert.False(t, equal(Sequence, nil, []string{}))
	})
}
