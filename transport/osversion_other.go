//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package transport

import "runtime"

func osVersion() string {
	return runtime.GOOS
}
