package transform

import (
	"fmt"

	"github.com/mvp-joe/docmeta/internal/codemeta"
	"github.com/mvp-joe/docmeta/internal/comments"
)

// Transformer rewrites the Content of every node of one tree with the text
// returned by its extractor. It never mutates its input: the result is a new
// tree that shares no mutable state with the original.
type Transformer struct {
	extractor comments.Extractor
}

// NewTransformer binds a transformer to one extractor.
func NewTransformer(extractor comments.Extractor) *Transformer {
	return &Transformer{extractor: extractor}
}

// Transform returns the transformed copy of root and the diagnostics found
// while walking it. Paths are those of a batch holding only root, starting
// at "batch[0]". A nil root yields a nil result and a MalformedNode
// diagnostic.
func (t *Transformer) Transform(root *codemeta.DataStruct) (*codemeta.DataStruct, []Diagnostic) {
	res := t.transformAt(root, codemeta.RootPath(0))
	return res.node, res.diagnostics
}

// unitResult is everything one root produces. Units never share one.
type unitResult struct {
	node        *codemeta.DataStruct
	diagnostics []Diagnostic
	stats       Stats
}

func (t *Transformer) transformAt(root *codemeta.DataStruct, path string) unitResult {
	w := &walker{extractor: t.extractor}
	w.stats.Roots = 1

	if root == nil {
		w.malformed(path, "nil root")
		return unitResult{diagnostics: w.diagnostics, stats: w.stats}
	}

	node := w.structNode(root, path)
	return unitResult{node: node, diagnostics: w.diagnostics, stats: w.stats}
}

// walker carries the per-root accumulation state of one transform.
type walker struct {
	extractor   comments.Extractor
	diagnostics []Diagnostic
	stats       Stats
}

func (w *walker) structNode(in *codemeta.DataStruct, path string) *codemeta.DataStruct {
	w.stats.Nodes++

	out := in.ClonePayload()
	out.Content = w.content(in.Content, path)

	if in.Functions != nil {
		out.Functions = make([]*codemeta.Function, len(in.Functions))
		for i, fn := range in.Functions {
			fnPath := codemeta.FunctionPath(path, i)
			if fn == nil {
				w.malformed(fnPath, "nil function entry")
				continue
			}
			out.Functions[i] = w.functionNode(fn, fnPath)
		}
	}

	if in.InnerStructures != nil {
		out.InnerStructures = make([]*codemeta.DataStruct, len(in.InnerStructures))
		for i, inner := range in.InnerStructures {
			innerPath := codemeta.InnerPath(path, i)
			if inner == nil {
				w.malformed(innerPath, "nil inner structure entry")
				continue
			}
			out.InnerStructures[i] = w.structNode(inner, innerPath)
		}
	}

	return out
}

func (w *walker) functionNode(in *codemeta.Function, path string) *codemeta.Function {
	w.stats.Nodes++

	out := in.Clone()
	out.Content = w.content(in.Content, path)
	return out
}

// content returns the new value of one Content field. Absent stays absent,
// a Success always overwrites (even with ""), anything else keeps the
// original text.
func (w *walker) content(in *string, path string) *string {
	if in == nil {
		w.stats.Absent++
		return nil
	}

	if text, ok := w.extract(*in, path).Text(); ok {
		w.stats.Replaced++
		return codemeta.Text(text)
	}

	w.stats.Retained++
	return codemeta.Text(*in)
}

// extract calls the extractor and turns a Failure or a panic into a
// diagnostic. A panic is contained to the node it happened on.
func (w *walker) extract(source, path string) (result comments.Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrExtractorPanic, r)
			w.add(ExtractorFault, path, err)
			result = comments.Failure(err)
		}
	}()

	result = w.extractor.Extract(source)
	if !result.OK() {
		w.add(ExtractionFailure, path, result.Err())
	}
	return result
}

func (w *walker) malformed(path, message string) {
	w.diagnostics = append(w.diagnostics, Diagnostic{Kind: MalformedNode, Path: path, Message: message})
}

func (w *walker) add(kind DiagnosticKind, path string, err error) {
	w.diagnostics = append(w.diagnostics, Diagnostic{Kind: kind, Path: path, Message: err.Error(), Err: err})
}
