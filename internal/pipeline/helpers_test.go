package pipeline_test

import gast "github.com/yuin/goldmark/ast"

func newRoot(children ...gast.Node) *gast.Document {
	root := gast.NewDocument()
	for _, c := range children {
		root.AppendChild(root, c)
	}
	return root
}
