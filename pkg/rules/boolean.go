package rules

import (
	"reflect"

	"warden-hq/warden/pkg/policy"
)

// IsTrue is satisfied when the checked value is truthy. A zero-argument
// callable is invoked first and its result examined instead.
type IsTrue struct{}

// Satisfied implements policy.Rule.
func (r *IsTrue) Satisfied(what any, _ *policy.Inquiry) bool {
	return truthy(resolve(what))
}

// IsFalse is satisfied when the checked value is falsy. A zero-argument
// callable is invoked first and its result examined instead.
type IsFalse struct{}

// Satisfied implements policy.Rule.
func (r *IsFalse) Satisfied(what any, _ *policy.Inquiry) bool {
	return !truthy(resolve(what))
}

// resolve invokes zero-argument callables so boolean rules can defer
// expensive computations to evaluation time.
func resolve(what any) any {
	switch fn := what.(type) {
	case func() any:
		return fn()
	case func() bool:
		return fn()
	}

	rv := reflect.ValueOf(what)
	if rv.Kind() == reflect.Func && rv.Type().NumIn() == 0 && rv.Type().NumOut() == 1 {
		return rv.Call(nil)[0].Interface()
	}
	return what
}

// truthy converts a document value to a boolean: nil, false, zero numbers,
// empty strings and empty collections are falsy; everything else is truthy.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	}

	if f, ok := toFloat(v); ok {
		return f != 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > 0
	}
	return true
}
