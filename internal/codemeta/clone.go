package codemeta

import "slices"

// Clone returns a deep copy of the node. Nil entries in Functions and
// InnerStructures are kept as nil at the same index; nil slices stay nil.
func (d *DataStruct) Clone() *DataStruct {
	out := d.ClonePayload()
	if out == nil {
		return nil
	}

	if d.Functions != nil {
		out.Functions = make([]*Function, len(d.Functions))
		for i, fn := range d.Functions {
			out.Functions[i] = fn.Clone()
		}
	}

	if d.InnerStructures != nil {
		out.InnerStructures = make([]*DataStruct, len(d.InnerStructures))
		for i, inner := range d.InnerStructures {
			out.InnerStructures[i] = inner.Clone()
		}
	}

	return out
}

// ClonePayload deep-copies every field except Functions and
// InnerStructures, which are left nil for the caller to rebuild.
func (d *DataStruct) ClonePayload() *DataStruct {
	if d == nil {
		return nil
	}

	out := *d
	out.Functions = nil
	out.InnerStructures = nil
	out.Fields = cloneFields(d.Fields)
	out.MultipleExtend = slices.Clone(d.MultipleExtend)
	out.Implements = slices.Clone(d.Implements)
	out.Annotations = cloneAnnotations(d.Annotations)
	out.FunctionCalls = cloneCalls(d.FunctionCalls)
	out.Parameters = cloneProperties(d.Parameters)
	out.Imports = cloneImports(d.Imports)
	out.Exports = slices.Clone(d.Exports)
	out.Position = d.Position.clone()
	out.Content = cloneText(d.Content)
	out.Extra = cloneExtra(d.Extra)
	return &out
}

// Clone returns a deep copy of the function node.
func (f *Function) Clone() *Function {
	if f == nil {
		return nil
	}

	out := *f
	out.Parameters = cloneProperties(f.Parameters)
	out.FunctionCalls = cloneCalls(f.FunctionCalls)
	out.Annotations = cloneAnnotations(f.Annotations)
	out.Modifiers = slices.Clone(f.Modifiers)
	out.LocalVariables = cloneProperties(f.LocalVariables)
	out.Position = f.Position.clone()
	out.Content = cloneText(f.Content)
	out.Extra = cloneExtra(f.Extra)
	return &out
}

// CloneBatch deep-copies every root of a batch.
func CloneBatch(batch []*DataStruct) []*DataStruct {
	if batch == nil {
		return nil
	}
	out := make([]*DataStruct, len(batch))
	for i, root := range batch {
		out[i] = root.Clone()
	}
	return out
}

func (p *Position) clone() *Position {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

func cloneText(s *string) *string {
	if s == nil {
		return nil
	}
	return Text(*s)
}

func cloneAnnotations(in []Annotation) []Annotation {
	if in == nil {
		return nil
	}
	out := make([]Annotation, len(in))
	for i, a := range in {
		a.KeyValues = slices.Clone(a.KeyValues)
		out[i] = a
	}
	return out
}

func cloneProperties(in []Property) []Property {
	if in == nil {
		return nil
	}
	out := make([]Property, len(in))
	for i, p := range in {
		p.Modifiers = slices.Clone(p.Modifiers)
		p.Annotations = cloneAnnotations(p.Annotations)
		out[i] = p
	}
	return out
}

func cloneFields(in []Field) []Field {
	if in == nil {
		return nil
	}
	out := make([]Field, len(in))
	for i, f := range in {
		f.Modifiers = slices.Clone(f.Modifiers)
		f.Annotations = cloneAnnotations(f.Annotations)
		out[i] = f
	}
	return out
}

func cloneCalls(in []Call) []Call {
	if in == nil {
		return nil
	}
	out := make([]Call, len(in))
	for i, c := range in {
		c.Parameters = cloneProperties(c.Parameters)
		c.Position = c.Position.clone()
		out[i] = c
	}
	return out
}

func cloneImports(in []Import) []Import {
	if in == nil {
		return nil
	}
	out := make([]Import, len(in))
	for i, imp := range in {
		imp.UsageName = slices.Clone(imp.UsageName)
		imp.Specifiers = slices.Clone(imp.Specifiers)
		out[i] = imp
	}
	return out
}
