package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-xmlrpc/internal/testutil"
)

func TestBuildMethodCall(t *testing.T) {
	doc := buildMethodCall("login", []string{"odoo", "admin", "a<b"})
	out := doc.OutputXML(true)

	parsed, err := xmlquery.Parse(strings.NewReader(out))
	require.NoError(t, err)

	name := xmlquery.FindOne(parsed, "/methodCall/methodName")
	require.NotNil(t, name)
	assert.Equal(t, "login", name.InnerText())

	values := xmlquery.Find(parsed, "/methodCall/params/param/value/string")
	require.Len(t, values, 3)
	assert.Equal(t, "odoo", values[0].InnerText())
	assert.Equal(t, "a<b", values[2].InnerText())
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0"?>`))
}

func TestBuildMethodCallWithoutParams(t *testing.T) {
	parsed, err := xmlquery.Parse(strings.NewReader(buildMethodCall("version", nil).OutputXML(true)))
	require.NoError(t, err)

	assert.NotNil(t, xmlquery.FindOne(parsed, "/methodCall/params"))
	assert.Nil(t, xmlquery.FindOne(parsed, "//param"))
}

func TestReadPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "call.xml")
	require.NoError(t, os.WriteFile(path, []byte(testutil.TestMethodCall), 0o600))

	got, err := readPayload(path, nil)
	require.NoError(t, err)
	assert.Equal(t, testutil.TestMethodCall, got)

	got, err = readPayload("-", strings.NewReader("<a/>"))
	require.NoError(t, err)
	assert.Equal(t, "<a/>", got)

	_, err = readPayload(filepath.Join(t.TempDir(), "missing.xml"), nil)
	assert.ErrorContains(t, err, "failed to read payload")
}

func TestFindFault(t *testing.T) {
	doc, err := xmlquery.Parse(strings.NewReader(testutil.TestFaultResponse))
	require.NoError(t, err)

	f, ok := findFault(doc)
	require.True(t, ok)
	assert.Equal(t, "1", f.Code)
	assert.Equal(t, "Access Denied", f.String)

	doc, err = xmlquery.Parse(strings.NewReader(testutil.TestMethodResponse))
	require.NoError(t, err)
	_, ok = findFault(doc)
	assert.False(t, ok)
}
