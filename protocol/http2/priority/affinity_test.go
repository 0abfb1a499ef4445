package priority

import (
	"testing"

	"github.com/bytedance/mockey"
	"github.com/petermattis/goid"
	"github.com/stretchr/testify/assert"
)

func TestAffinityCheckPassesOnOwningGoroutine(t *testing.T) {
	a := newAffinity()
	assert.NotPanics(t, func() { a.check() })
}

func TestAffinityCheckPanicsOnForeignGoroutine(t *testing.T) {
	mockey.PatchConvey("simulated foreign goroutine", t, func() {
		a := newAffinity()
		mockey.Mock(goid.Get).Return(a.owner + 1).Build()

		assert.PanicsWithValue(t,
			"priority: Distributor accessed from more than one goroutine",
			func() { a.check() })
	})
}
