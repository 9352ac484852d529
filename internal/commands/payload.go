package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/antchfx/xmlquery"
)

// readPayload returns the request document from path, or from stdin when
// path is "-".
func readPayload(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read payload: %w", err)
	}
	return string(data), nil
}

// buildMethodCall creates a methodCall document with string parameters.
func buildMethodCall(method string, params []string) *xmlquery.Node {
	doc := &xmlquery.Node{Type: xmlquery.DocumentNode}

	decl := &xmlquery.Node{Type: xmlquery.DeclarationNode, Data: "xml"}
	xmlquery.AddAttr(decl, "version", "1.0")
	xmlquery.AddChild(doc, decl)

	call := element(doc, "methodCall")
	name := element(call, "methodName")
	xmlquery.AddChild(name, &xmlquery.Node{Type: xmlquery.TextNode, Data: method})

	list := element(call, "params")
	for _, p := range params {
		value := element(element(element(list, "param"), "value"), "string")
		xmlquery.AddChild(value, &xmlquery.Node{Type: xmlquery.TextNode, Data: p})
	}
	return doc
}

func element(parent *xmlquery.Node, name string) *xmlquery.Node {
	n := &xmlquery.Node{Type: xmlquery.ElementNode, Data: name}
	xmlquery.AddChild(parent, n)
	return n
}

// fault describes an XML-RPC fault response.
type fault struct {
	Code   string
	String string
}

// findFault returns the fault carried by doc, if any.
func findFault(doc *xmlquery.Node) (*fault, bool) {
	node := xmlquery.FindOne(doc, "/methodResponse/fault")
	if node == nil {
		return nil, false
	}
	f := &fault{}
	if code := xmlquery.FindOne(node, ".//member[name='faultCode']/value"); code != nil {
		f.Code = code.InnerText()
	}
	if msg := xmlquery.FindOne(node, ".//member[name='faultString']/value"); msg != nil {
		f.String = msg.InnerText()
	}
	return f, true
}
