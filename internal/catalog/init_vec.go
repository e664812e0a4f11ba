//go:build sqlite_vec && cgo

package catalog

import (
	vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

func init() {
	// Register sqlite-vec as an auto-loadable extension and switch to the
	// cgo driver it binds against.
	vec.Auto()
	driverName = "sqlite3"
}
