// Package testutil provides shared XML-RPC fixtures for tests across go-xmlrpc.
// These constants eliminate repeated document literals in test files and ensure consistency.
package testutil

// Test Documents
//
// These constants define well-formed XML-RPC documents used as request
// payloads and canned server replies.

const (
	// TestMethodCall asks an Odoo-style common endpoint for its version.
	TestMethodCall = `<?xml version="1.0"?><methodCall><methodName>version</methodName><params/></methodCall>`

	// TestMethodResponse answers TestMethodCall with a single string value.
	TestMethodResponse = `<?xml version="1.0"?>` +
		`<methodResponse><params><param><value><string>16.0</string></value></param></params></methodResponse>`

	// TestFaultResponse is a well-formed XML-RPC fault.
	TestFaultResponse = `<?xml version="1.0"?>` +
		`<methodResponse><fault><value><struct>` +
		`<member><name>faultCode</name><value><int>1</int></value></member>` +
		`<member><name>faultString</name><value><string>Access Denied</string></value></member>` +
		`</struct></value></fault></methodResponse>`

	// TestMalformedResponse is not well-formed XML.
	TestMalformedResponse = `<methodResponse><params>`
)

// Test Endpoint Configuration

const (
	// TestXMLRPCPath is the sub-path most tests append to a server URL.
	TestXMLRPCPath = "xmlrpc/2/common"

	// TestAppName is appended to the User-Agent in tests.
	TestAppName = "Scanner"
)
