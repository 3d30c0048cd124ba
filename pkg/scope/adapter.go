package scope

import (
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Adapter isolates field access from the rest of the pipeline. Initialize
// runs once when a value becomes a frame; LookupValue reads one name from a
// frame value.
type Adapter interface {
	Initialize(value any, parent *Frame) any
	LookupValue(value any, name string) (any, bool)
}

// Getter lets host types expose fields without reflection.
type Getter interface {
	Get(name string) (any, bool)
}

// ReflectAdapter is the default adapter. Lookups try, in order: Getter,
// string-keyed maps, struct fields (exact name, json tag, then a
// case-insensitive match), exported zero-argument methods and slice
// indices. Zero-argument function values found along the way are invoked.
type ReflectAdapter struct {
	fields *fieldCache
}

// NewReflectAdapter returns an adapter with its own field cache.
func NewReflectAdapter() *ReflectAdapter {
	return &ReflectAdapter{fields: newFieldCache()}
}

var defaultAdapter = NewReflectAdapter()

// DefaultAdapter returns the process-wide reflect adapter.
func DefaultAdapter() Adapter {
	return defaultAdapter
}

// Initialize implements Adapter. Values are used as-is.
func (a *ReflectAdapter) Initialize(value any, _ *Frame) any {
	return value
}

// LookupValue implements Adapter.
func (a *ReflectAdapter) LookupValue(value any, name string) (any, bool) {
	if value == nil || name == "" {
		return nil, false
	}

	switch v := value.(type) {
	case Getter:
		return Computed(v.Get(name))
	case map[string]any:
		out, ok := v[name]
		if !ok {
			return nil, false
		}
		return Computed(out, true)
	case map[string]string:
		out, ok := v[name]
		return out, ok
	}

	rv := reflect.ValueOf(value)
	if out, ok := a.lookupMethod(rv, name); ok {
		return out, true
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return Computed(mv.Interface(), true)
	case reflect.Struct:
		index, ok := a.fields.lookup(rv.Type(), name)
		if !ok {
			return nil, false
		}
		fv, err := rv.FieldByIndexErr(index)
		if err != nil {
			return nil, false
		}
		return Computed(fv.Interface(), true)
	case reflect.Slice, reflect.Array:
		idx, err := strconv.Atoi(name)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return Computed(rv.Index(idx).Interface(), true)
	}
	return nil, false
}

// lookupMethod finds an exported zero-argument method named name (or its
// capitalised form) on the value or, for addressable structs, its pointer.
func (a *ReflectAdapter) lookupMethod(rv reflect.Value, name string) (any, bool) {
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, false
	}
	for _, candidate := range methodNames(name) {
		m := rv.MethodByName(candidate)
		if !m.IsValid() {
			continue
		}
		return invoke(m)
	}
	return nil, false
}

func methodNames(name string) []string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || !unicode.IsLetter(r) {
		return nil
	}
	if unicode.IsUpper(r) {
		return []string{name}
	}
	return []string{string(unicode.ToUpper(r)) + name[size:]}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Computed invokes v when it is a zero-argument function (func() T or
// func() (T, error)); other values pass through. A function returning a
// non-nil error resolves as a miss.
func Computed(v any, ok bool) (any, bool) {
	if !ok || v == nil {
		return v, ok
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return v, true
	}
	return invoke(rv)
}

func invoke(fn reflect.Value) (any, bool) {
	t := fn.Type()
	if t.NumIn() != 0 {
		// Not an accessor; hand the function itself back so callers can
		// recognise other capabilities (section lambdas).
		return fn.Interface(), true
	}
	switch t.NumOut() {
	case 1:
		return fn.Call(nil)[0].Interface(), true
	case 2:
		if !t.Out(1).Implements(errorType) {
			return fn.Interface(), true
		}
		out := fn.Call(nil)
		if err, _ := out[1].Interface().(error); err != nil {
			return nil, false
		}
		return out[0].Interface(), true
	default:
		return fn.Interface(), true
	}
}

type fieldCacheKey struct {
	typ  reflect.Type
	name string
}

type fieldInfo struct {
	index []int
	found bool
}

type fieldCache struct {
	mu    sync.RWMutex
	cache map[fieldCacheKey]fieldInfo
}

func newFieldCache() *fieldCache {
	return &fieldCache{cache: make(map[fieldCacheKey]fieldInfo)}
}

func (c *fieldCache) lookup(typ reflect.Type, name string) ([]int, bool) {
	key := fieldCacheKey{typ: typ, name: name}
	c.mu.RLock()
	info, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return info.index, info.found
	}

	info = resolveField(typ, name)
	c.mu.Lock()
	c.cache[key] = info
	c.mu.Unlock()
	return info.index, info.found
}

func resolveField(typ reflect.Type, name string) fieldInfo {
	if f, ok := typ.FieldByName(name); ok && f.IsExported() {
		return fieldInfo{index: f.Index, found: true}
	}
	var fold *reflect.StructField
	fields := reflect.VisibleFields(typ)
	for i := range fields {
		f := fields[i]
		if !f.IsExported() || f.Anonymous {
			continue
		}
		if tag := jsonName(f.Tag.Get("json")); tag != "" && tag == name {
			return fieldInfo{index: f.Index, found: true}
		}
		if fold == nil && strings.EqualFold(f.Name, name) {
			fold = &fields[i]
		}
	}
	if fold != nil {
		return fieldInfo{index: fold.Index, found: true}
	}
	return fieldInfo{}
}

func jsonName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}
