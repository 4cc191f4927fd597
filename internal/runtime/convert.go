package runtime

import (
	"fmt"

	"github.com/risor-io/risor/object"

	"github.com/jward/tactic/internal/syntax"
)

// toObject converts a Go value for a script. Syntax nodes become maps with
// kind, text, named, line and column keys; values Risor cannot represent are
// passed as their display string.
func toObject(v any) object.Object {
	switch v := v.(type) {
	case nil:
		return object.Nil
	case object.Object:
		return v
	case syntax.Node:
		return object.NewMap(map[string]object.Object{
			"kind":   object.NewString(v.Kind()),
			"text":   object.NewString(v.Text()),
			"named":  object.NewBool(v.IsNamed()),
			"line":   object.NewInt(int64(v.Line())),
			"column": object.NewInt(int64(v.Column())),
		})
	case []any:
		items := make([]object.Object, len(v))
		for i, e := range v {
			items[i] = toObject(e)
		}
		return object.NewList(items)
	}
	obj := object.FromGoType(v)
	if _, isErr := obj.(*object.Error); isErr {
		return object.NewString(fmt.Sprint(v))
	}
	return obj
}

// results converts a script's final value into outputs.
func results(res object.Object) []any {
	switch res := res.(type) {
	case nil, *object.NilType:
		return nil
	case *object.List:
		items := res.Value()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = item.Interface()
		}
		return out
	}
	return []any{res.Interface()}
}
