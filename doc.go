/*
Package yamlcompose composes a YAML token stream into documents without
losing the lexical detail needed to edit the source text: comments, blank
lines, anchors, tags and directives all survive composition.

The package works on two trees.

1. The concrete syntax tree

Package cst holds the lossless token tree produced by a lexer. Its
Visit function walks the collection items of a tree depth-first and lets
the visitor edit the tree while it is being walked:

	cst.VisitDocument(doc, func(item *cst.CollectionItem, path cst.Path) cst.Result {
		if s, ok := item.Value.(*cst.FlowScalar); ok && s.Source == "drop-me" {
			return cst.Remove
		}
		return cst.Continue
	})

A visitor can also return cst.Skip, cst.Break, cst.JumpTo(n) or
cst.Then(next). Paths handed to the visitor are coordinates, not
references: ItemAtPath resolves them against the current tree.

2. Composed documents

The compose package turns a token stream into ast.Document values. Each
document carries its directives, its leading and trailing comments, and
every error and warning found while composing it. Errors never stop
composition:

	docs, err := yamlcompose.ComposeAll(tokens, len(src))
	if err != nil {
		// err is an errors.Errors; docs are still complete.
	}

For large streams, NewStream composes lazily, one document per call to
NextDocument. A document is held back until the next one starts, so a
following "..." marker and its comments still attach to it.
*/
package yamlcompose
