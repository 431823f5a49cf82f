package cpu

import (
	"testing"

	"github.com/mellified/dotmatrix/internal/types"
)

// newState saves the given CPU into a fresh state ready for reading.
func newState(t *testing.T, c *CPU) *types.State {
	t.Helper()
	st := types.NewState()
	c.Save(st)
	return st
}
