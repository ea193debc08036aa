package graph

import (
	"fmt"
	"reflect"
)

// StateSchemaTyped defines the initial state and the update logic for a typed graph.
type StateSchemaTyped[S any] interface {
	// Init returns the initial state.
	Init() S

	// Update merges the new state into the current state.
	Update(current, new S) (S, error)
}

// MergeFunc merges one struct field. It receives the current and the new
// field values and returns the merged value, which must be assignable to the field.
type MergeFunc func(current, new reflect.Value) (reflect.Value, error)

// FieldMerger is a StateSchemaTyped for struct states that merges field by field.
//
// Fields without a registered MergeFunc use OverwriteNonZeroMerge, so a node can
// return a partial struct carrying only the fields it produced.
type FieldMerger[S any] struct {
	initial S
	merges  map[string]MergeFunc
}

// NewFieldMerger creates a field merger for the struct type of initial.
// It panics if S is not a struct type.
func NewFieldMerger[S any](initial S) *FieldMerger[S] {
	t := reflect.TypeOf(initial)
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("graph: FieldMerger requires a struct state, got %v", t))
	}
	return &FieldMerger[S]{
		initial: initial,
		merges:  make(map[string]MergeFunc),
	}
}

// RegisterFieldMerge sets the merge function of the named exported field.
// It panics if the field does not exist.
func (fm *FieldMerger[S]) RegisterFieldMerge(field string, fn MergeFunc) {
	sf, ok := reflect.TypeOf(fm.initial).FieldByName(field)
	if !ok || !sf.IsExported() {
		panic(fmt.Sprintf("graph: unknown state field %q", field))
	}
	fm.merges[field] = fn
}

// Init returns the initial state.
func (fm *FieldMerger[S]) Init() S {
	return fm.initial
}

// Update merges new into current field by field.
func (fm *FieldMerger[S]) Update(current, new S) (S, error) {
	cur := reflect.ValueOf(&current).Elem()
	upd := reflect.ValueOf(new)
	t := cur.Type()

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		merge, ok := fm.merges[sf.Name]
		if !ok {
			merge = OverwriteNonZeroMerge
		}
		merged, err := merge(cur.Field(i), upd.Field(i))
		if err != nil {
			return current, fmt.Errorf("failed to merge field %s: %w", sf.Name, err)
		}
		if !merged.IsValid() {
			merged = reflect.Zero(sf.Type)
		}
		if !merged.Type().AssignableTo(sf.Type) {
			return current, fmt.Errorf("failed to merge field %s: %s is not assignable to %s", sf.Name, merged.Type(), sf.Type)
		}
		cur.Field(i).Set(merged)
	}
	return current, nil
}

// OverwriteMerge always takes the new value.
func OverwriteMerge(_, new reflect.Value) (reflect.Value, error) {
	return new, nil
}

// OverwriteNonZeroMerge takes the new value unless it is the zero value.
func OverwriteNonZeroMerge(current, new reflect.Value) (reflect.Value, error) {
	if new.IsZero() {
		return current, nil
	}
	return new, nil
}

// AppendSliceMerge appends the new slice to the current one.
func AppendSliceMerge(current, new reflect.Value) (reflect.Value, error) {
	if current.Kind() != reflect.Slice || new.Kind() != reflect.Slice {
		return current, fmt.Errorf("append merge needs slices, got %s and %s", current.Kind(), new.Kind())
	}
	if new.Len() == 0 {
		return current, nil
	}
	out := reflect.MakeSlice(current.Type(), 0, current.Len()+new.Len())
	out = reflect.AppendSlice(out, current)
	return reflect.AppendSlice(out, new), nil
}

// MapUnionMerge copies the current map and sets every key of the new map on it.
func MapUnionMerge(current, new reflect.Value) (reflect.Value, error) {
	if current.Kind() != reflect.Map || new.Kind() != reflect.Map {
		return current, fmt.Errorf("map merge needs maps, got %s and %s", current.Kind(), new.Kind())
	}
	if new.Len() == 0 {
		return current, nil
	}
	out := reflect.MakeMapWithSize(current.Type(), current.Len()+new.Len())
	iter := current.MapRange()
	for iter.Next() {
		out.SetMapIndex(iter.Key(), iter.Value())
	}
	iter = new.MapRange()
	for iter.Next() {
		out.SetMapIndex(iter.Key(), iter.Value())
	}
	return out, nil
}
