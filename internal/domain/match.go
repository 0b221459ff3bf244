package domain

import "reflect"

// Contains reports whether subset is a structural subset of set.
//
// Both values are trees of maps with string keys, slices and primitives. Every
// key of a map in subset must exist in the matching map of set; nested maps and
// slices are compared recursively, slices position by position. Primitives must
// be equal, with numbers compared by value regardless of their Go type. A
// subset that is neither a map nor a slice never matches, and neither does a
// nil set.
//
// A nil in subset matches a nil value or a nil map or slice in set, so an
// unset descriptor field counts as null. It does not match a missing key.
func Contains(set, subset any) bool {
	sub := reflect.ValueOf(subset)
	if !isContainer(sub) || sub.IsNil() {
		return false
	}
	sv := reflect.ValueOf(set)
	if !isContainer(sv) || sv.IsNil() {
		return false
	}
	return containsValue(sv, sub)
}

func containsValue(set, subset reflect.Value) bool {
	switch subset.Kind() {
	case reflect.Map:
		if set.Kind() != reflect.Map || set.Type().Key().Kind() != reflect.String {
			return false
		}
		iter := subset.MapRange()
		for iter.Next() {
			key := iter.Key()
			if key.Kind() != reflect.String {
				return false
			}
			item := set.MapIndex(key.Convert(set.Type().Key()))
			if !item.IsValid() {
				return false
			}
			if !itemMatches(item, iter.Value()) {
				return false
			}
		}
		return true
	case reflect.Slice, reflect.Array:
		if set.Kind() != reflect.Slice && set.Kind() != reflect.Array {
			return false
		}
		for i := 0; i < subset.Len(); i++ {
			if i >= set.Len() {
				return false
			}
			if !itemMatches(set.Index(i), subset.Index(i)) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func itemMatches(setItem, subItem reflect.Value) bool {
	subItem = unwrap(subItem)
	setItem = unwrap(setItem)

	if isContainer(subItem) && !subItem.IsNil() {
		if !isContainer(setItem) || setItem.IsNil() {
			return false
		}
		return containsValue(setItem, subItem)
	}
	return primitiveEqual(setItem, subItem)
}

// unwrap strips interface and pointer layers.
func unwrap(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isContainer(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Map, reflect.Slice:
		return true
	default:
		return false
	}
}

// isNullish treats invalid values and nil containers alike.
func isNullish(v reflect.Value) bool {
	return !v.IsValid() || (isContainer(v) && v.IsNil())
}

func primitiveEqual(a, b reflect.Value) bool {
	if isNullish(a) || isNullish(b) {
		return isNullish(a) && isNullish(b)
	}
	if af, ok := asFloat(a); ok {
		bf, ok := asFloat(b)
		return ok && af == bf
	}
	if a.Kind() == reflect.String && b.Kind() == reflect.String {
		return a.String() == b.String()
	}
	if a.Kind() == reflect.Bool && b.Kind() == reflect.Bool {
		return a.Bool() == b.Bool()
	}
	if isContainer(a) || isContainer(b) || !a.Type().Comparable() || a.Type() != b.Type() {
		return false
	}
	return a.Interface() == b.Interface()
}

func asFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}
