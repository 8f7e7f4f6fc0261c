package boschalarm

import "github.com/patchwell/boschalarm/clog"

// testLog returns a disabled logger shared by this package's tests, so
// a Panel can be constructed without a real connection.
func testLog() clog.Clog {
	return clog.NewNoop()
}
