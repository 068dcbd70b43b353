package sass

import (
	"errors"
	"fmt"
	"strings"
	"time"

	reflect "github.com/goccy/go-reflect"
	"github.com/oarkflow/date"
)

// DecodeVariables compiles source and decodes its top-level variables
// into v, a pointer to a struct or map. Struct fields match variable
// names via their json tag, falling back to the field name. Units are
// dropped when decoding a number into a numeric field; string fields
// receive the canonical rendering.
func DecodeVariables(source string, opts *Options, v any) error {
	opts = opts.withDefaults()
	_, global, err := compileRules(source, opts)
	if err != nil {
		return err
	}
	vars := make(map[string]any, len(global.vars))
	for name, val := range global.vars {
		vars[name] = valueToGo(val)
	}
	return convertMap(vars, v)
}

// valueToGo lowers a stylesheet value to plain Go data for decoding.
func valueToGo(v Value) any {
	switch t := v.(type) {
	case Number:
		if t.Unit == "" {
			return t.Val
		}
		return t.String()
	case Str:
		return t.Val
	case Bool:
		return bool(t)
	case List:
		items := make([]any, len(t.Items))
		for i, it := range t.Items {
			items[i] = valueToGo(it)
		}
		return items
	case Literal:
		return string(t)
	case Color:
		return t.String()
	}
	return v.String()
}

func convertMap(src map[string]any, v any) error {
	destVal := reflect.ValueOf(v)
	if destVal.Kind() != reflect.Ptr || destVal.IsNil() {
		return errors.New("v must be a non-nil pointer")
	}
	return assignValue(reflect.ValueOf(src), destVal.Elem())
}

func assignValue(src, dest reflect.Value) error {
	if !dest.IsValid() {
		return errors.New("invalid destination")
	}
	if dest.Kind() == reflect.Ptr {
		if dest.IsNil() {
			dest.Set(reflect.New(dest.Type().Elem()))
		}
		return assignValue(src, dest.Elem())
	}
	if dest.Kind() == reflect.Struct && dest.Type() == reflect.TypeOf(time.Time{}) {
		str, ok := src.Interface().(string)
		if !ok {
			return fmt.Errorf("expected string for time conversion but got %T", src.Interface())
		}
		t, err := date.Parse(str)
		if err != nil {
			return fmt.Errorf("cannot parse time: %v", err)
		}
		dest.Set(reflect.ValueOf(t))
		return nil
	}
	switch dest.Kind() {
	case reflect.Struct:
		srcMap, ok := src.Interface().(map[string]any)
		if !ok {
			return fmt.Errorf("expected map for struct assignment but got %T", src.Interface())
		}
		destType := dest.Type()
		for i := 0; i < dest.NumField(); i++ {
			field := destType.Field(i)
			if field.PkgPath != "" {
				continue
			}
			tag := field.Tag.Get("json")
			fieldName := field.Name
			if tag != "" {
				parts := strings.Split(tag, ",")
				if parts[0] != "" {
					fieldName = parts[0]
				}
			}
			if value, exists := srcMap[fieldName]; exists {
				if err := assignValue(reflect.ValueOf(value), dest.Field(i)); err != nil {
					return fmt.Errorf("field %s: %v", field.Name, err)
				}
			}
		}
	case reflect.Map:
		if src.Kind() != reflect.Map {
			return fmt.Errorf("expected map for assignment but got %T", src.Interface())
		}
		if dest.IsNil() {
			dest.Set(reflect.MakeMap(dest.Type()))
		}
		for _, key := range src.MapKeys() {
			val := reflect.New(dest.Type().Elem()).Elem()
			if err := assignValue(src.MapIndex(key).Elem(), val); err != nil {
				return fmt.Errorf("key %v: %v", key.Interface(), err)
			}
			dest.SetMapIndex(key, val)
		}
	case reflect.Slice:
		if src.Kind() == reflect.Interface {
			src = src.Elem()
		}
		if src.Kind() != reflect.Slice {
			return fmt.Errorf("expected slice for assignment but got %T", src.Interface())
		}
		out := reflect.MakeSlice(dest.Type(), src.Len(), src.Len())
		for i := 0; i < src.Len(); i++ {
			item := src.Index(i)
			if item.Kind() == reflect.Interface {
				item = item.Elem()
			}
			if err := assignValue(item, out.Index(i)); err != nil {
				return fmt.Errorf("index %d: %v", i, err)
			}
		}
		dest.Set(out)
	case reflect.Float32, reflect.Float64:
		if src.Kind() == reflect.Interface {
			src = src.Elem()
		}
		switch src.Kind() {
		case reflect.Float32, reflect.Float64:
			dest.SetFloat(src.Float())
		case reflect.Int, reflect.Int64:
			dest.SetFloat(float64(src.Int()))
		default:
			return fmt.Errorf("cannot assign %T to float", src.Interface())
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if src.Kind() == reflect.Interface {
			src = src.Elem()
		}
		switch src.Kind() {
		case reflect.Float32, reflect.Float64:
			dest.SetInt(int64(src.Float()))
		case reflect.Int, reflect.Int64:
			dest.SetInt(src.Int())
		default:
			return fmt.Errorf("cannot assign %T to int", src.Interface())
		}
	case reflect.String:
		if src.Kind() == reflect.Interface {
			src = src.Elem()
		}
		if src.Kind() != reflect.String {
			return fmt.Errorf("cannot assign %T to string", src.Interface())
		}
		dest.SetString(src.String())
	case reflect.Bool:
		if src.Kind() == reflect.Interface {
			src = src.Elem()
		}
		if src.Kind() != reflect.Bool {
			return fmt.Errorf("cannot assign %T to bool", src.Interface())
		}
		dest.SetBool(src.Bool())
	case reflect.Interface:
		dest.Set(src)
	default:
		if src.Type().AssignableTo(dest.Type()) {
			dest.Set(src)
		} else {
			return fmt.Errorf("cannot assign %s to %s", src.Type(), dest.Type())
		}
	}
	return nil
}
