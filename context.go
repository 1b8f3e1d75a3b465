package mkresume

import (
	"maps"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/alnah/go-mkresume/internal/latextmpl"
)

// computedValues are the keys the renderer sets last, over both the caller
// context and the document.
type computedValues struct {
	FontPath     string
	Mode         string
	Template     string
	Today        Date
	Photo        string // workspace base name, "" without photo
	Publications latextmpl.Raw
}

// buildContext assembles the template data. Layers apply in order, later
// keys winning: caller context and blocks, the document, computed values.
func buildContext(doc *Document, blocks []string, caller map[string]any, c computedValues) map[string]any {
	data := make(map[string]any, len(caller)+32)
	maps.Copy(data, caller)
	if blocks == nil {
		blocks = []string{}
	}
	data["blocks"] = blocks

	if fields, ok := flatten(reflect.ValueOf(*doc)).(map[string]any); ok {
		maps.Copy(data, fields)
	}

	data["fontpath"] = c.FontPath
	data["mode"] = c.Mode
	data["template"] = c.Template
	data["today"] = c.Today
	data["photo"] = c.Photo
	if doc.Publications != nil {
		data["publications"] = c.Publications
	} else {
		data["publications"] = nil
	}
	return data
}

// fontPath returns dir as an absolute path with a trailing separator, the
// form fontspec's Path option expects.
func fontPath(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	if !strings.HasSuffix(dir, string(filepath.Separator)) {
		dir += string(filepath.Separator)
	}
	return filepath.ToSlash(dir)
}

var (
	dateType = reflect.TypeFor[Date]()
	rawType  = reflect.TypeFor[latextmpl.Raw]()
	timeType = reflect.TypeFor[time.Time]()
)

// flatten converts typed values to the maps, slices and scalars templates
// index by key. Struct fields are keyed by their yaml tag. Dates stay typed
// so the date filter can format them; nil pointers become nil and nil slices
// become empty.
func flatten(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	switch v.Type() {
	case dateType, rawType, timeType:
		return v.Interface()
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return flatten(v.Elem())
	case reflect.Struct:
		t := v.Type()
		out := make(map[string]any, t.NumField())
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			key := yamlKey(f)
			if key == "" {
				continue
			}
			out[key] = flatten(v.Field(i))
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = flatten(v.Index(i))
		}
		return out
	case reflect.Map:
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = flatten(iter.Value())
		}
		return out
	default:
		return v.Interface()
	}
}

func yamlKey(f reflect.StructField) string {
	tag := f.Tag.Get("yaml")
	name, _, _ := strings.Cut(tag, ",")
	switch name {
	case "-":
		return ""
	case "":
		return strings.ToLower(f.Name)
	default:
		return name
	}
}
