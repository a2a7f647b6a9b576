//go:build cgo

package source

// The odbc driver binds the system ODBC library through cgo, so it is only
// registered in cgo-enabled builds.
import _ "github.com/alexbrainman/odbc"
