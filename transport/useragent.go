package transport

import (
	"fmt"
	"runtime"
	"strings"
)

// Static identity of this library as sent in the User-Agent header.
const (
	ComponentName = "GoXmlRpc"
	LibraryName   = "xmlrpc-transport"
	Version       = "0.3.0"
)

// UserAgent composes the client identity for appName:
// "ComponentName (LibraryName/Version/<go version>/<os version>) appName".
// The runtime parts are read on every call.
func UserAgent(appName string) string {
	ua := fmt.Sprintf("%s (%s/%s/%s/%s) %s",
		ComponentName, LibraryName, Version, runtime.Version(), osVersion(), appName)
	return strings.TrimSpace(ua)
}
