package priority

import (
	"github.com/favbox/wind/common/hlog"
	"github.com/petermattis/goid"
)

// VerboseLogs mirrors the VerboseLogs toggle wired up in
// protocol/http2's own tests: when set, a Distributor call from a foreign
// goroutine is logged through hlog.SystemLogger() before the panic. It is
// the only message this package logs.
var VerboseLogs = false

// affinity records which goroutine is allowed to call a Distributor's
// public methods. SPEC_FULL.md §5 requires every call to run on a single
// serial executor; this turns that requirement into something a test can
// actually trip, instead of only living in a doc comment.
type affinity struct {
	owner int64
}

func newAffinity() affinity {
	return affinity{owner: goid.Get()}
}

// check panics if called from a goroutine other than the one that
// constructed the Distributor. It is intentionally cheap: one call to
// goid.Get() per public method.
func (a affinity) check() {
	if g := goid.Get(); g != a.owner {
		if VerboseLogs {
			hlog.SystemLogger().Warnf("priority: distributor owned by goroutine %d called from %d", a.owner, g)
		}
		panic("priority: Distributor accessed from more than one goroutine")
	}
}
