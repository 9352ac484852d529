package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		path     *string
		expected string
	}{
		{name: "trailing and leading slash", base: "http://host/api/", path: strPtr("/rpc"), expected: "http://host/api/rpc"},
		{name: "no slashes", base: "http://host/api", path: strPtr("rpc"), expected: "http://host/api/rpc"},
		{name: "nil path", base: "http://host/api", path: nil, expected: "http://host/api"},
		{name: "nil path keeps trailing slash", base: "http://host/api/", path: nil, expected: "http://host/api/"},
		{name: "empty path", base: "http://host/api", path: strPtr(""), expected: "http://host/api/"},
		{name: "only one slash stripped each side", base: "http://host/api//", path: strPtr("//rpc"), expected: "http://host/api///rpc"},
		{name: "no encoding", base: "http://host", path: strPtr("a b?x=1"), expected: "http://host/a b?x=1"},
		{name: "empty base with path", base: "", path: strPtr("rpc"), expected: "/rpc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.base, tt.path))
		})
	}
}
