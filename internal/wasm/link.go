package wasm

import "fmt"

// ImportObject is the resolved value behind one two-level import name: exactly one field is set,
// selected by the Import's Kind.
type ImportObject struct {
	Func   *FunctionInstance
	Table  *TableInstance
	Memory *MemoryInstance
	Global *GlobalInstance
}

// Imports is the embedder-supplied resolution table Instantiate consults for every entry of a
// module's import section (spec.md §4.7 step 1).
type Imports struct {
	entries map[string]map[string]ImportObject
}

// NewImports creates an empty resolution table.
func NewImports() *Imports {
	return &Imports{entries: make(map[string]map[string]ImportObject)}
}

// Define registers obj under the two-level name module.name, replacing any prior entry.
func (im *Imports) Define(module, name string, obj ImportObject) {
	bucket, ok := im.entries[module]
	if !ok {
		bucket = make(map[string]ImportObject)
		im.entries[module] = bucket
	}
	bucket[name] = obj
}

// DefineInstance defines every export of inst under the two-level name module.exportName, the
// common case of wiring one already-instantiated module as another's import source.
func (im *Imports) DefineInstance(module string, inst *ModuleInstance) {
	for name, exp := range inst.Exports {
		var obj ImportObject
		switch exp.Kind {
		case ExternTypeFunc:
			obj.Func = inst.Functions[exp.Index]
		case ExternTypeTable:
			obj.Table = inst.Tables[exp.Index]
		case ExternTypeMemory:
			obj.Memory = inst.Memories[exp.Index]
		case ExternTypeGlobal:
			obj.Global = inst.Globals[exp.Index]
		}
		im.Define(module, name, obj)
	}
}

func (im *Imports) lookup(module, name string) (ImportObject, bool) {
	bucket, ok := im.entries[module]
	if !ok {
		return ImportObject{}, false
	}
	obj, ok := bucket[name]
	return obj, ok
}

// Instantiate allocates a ModuleInstance from a Module that has already passed Validate, resolving
// imports against imports, applying element and data segments, and evaluating every global
// initializer (spec.md §4.7). It does not invoke the start function: the returned instance's
// StartFunction field names it, left for the caller to invoke once it can also drive the execution
// engine (this package has no dependency on one, to avoid a cycle with the engine package that
// depends on it).
func Instantiate(mod *Module, name string, imports *Imports) (*ModuleInstance, error) {
	inst := &ModuleInstance{
		Name:    name,
		Types:   mod.TypeSection,
		Exports: make(map[string]*Export, len(mod.ExportSection)),
	}

	if err := resolveImportsAndAllocate(mod, imports, inst); err != nil {
		return nil, err
	}

	if err := instantiateGlobals(mod, inst); err != nil {
		return nil, err
	}

	for _, exp := range mod.ExportSection {
		e := exp
		inst.Exports[e.Name] = e
	}

	if err := applyElementSegments(mod, inst); err != nil {
		return nil, err
	}
	if err := applyDataSegments(mod, inst); err != nil {
		return nil, err
	}

	if mod.StartSection != nil {
		inst.StartFunction = inst.Functions[*mod.StartSection]
	}

	return inst, nil
}

func resolveImportsAndAllocate(mod *Module, imports *Imports, inst *ModuleInstance) error {
	for _, imp := range mod.ImportSection {
		obj, ok := imports.lookup(imp.Module, imp.Name)
		if !ok {
			return NewLinkError(imp.Module, imp.Name, "unresolved import")
		}
		switch imp.Kind {
		case ExternTypeFunc:
			if obj.Func == nil {
				return NewLinkError(imp.Module, imp.Name, "expected a function import")
			}
			want := mod.TypeSection[imp.DescFunc]
			if !want.Equal(obj.Func.Type) {
				return NewLinkError(imp.Module, imp.Name, fmt.Sprintf("function signature mismatch: want %s, have %s", want, obj.Func.Type))
			}
			inst.Functions = append(inst.Functions, obj.Func)
		case ExternTypeTable:
			if obj.Table == nil {
				return NewLinkError(imp.Module, imp.Name, "expected a table import")
			}
			if err := checkTableCompat(imp.DescTable, obj.Table); err != nil {
				return NewLinkError(imp.Module, imp.Name, err.Error())
			}
			inst.Tables = append(inst.Tables, obj.Table)
		case ExternTypeMemory:
			if obj.Memory == nil {
				return NewLinkError(imp.Module, imp.Name, "expected a memory import")
			}
			if err := checkMemoryCompat(imp.DescMem, obj.Memory); err != nil {
				return NewLinkError(imp.Module, imp.Name, err.Error())
			}
			inst.Memories = append(inst.Memories, obj.Memory)
		case ExternTypeGlobal:
			if obj.Global == nil {
				return NewLinkError(imp.Module, imp.Name, "expected a global import")
			}
			if obj.Global.Type.ValType != imp.DescGlobal.ValType || obj.Global.Type.Mutable != imp.DescGlobal.Mutable {
				return NewLinkError(imp.Module, imp.Name, "global type mismatch")
			}
			inst.Globals = append(inst.Globals, obj.Global)
		}
	}

	for i, typeIdx := range mod.FunctionSection {
		code := mod.CodeSection[i]
		inst.Functions = append(inst.Functions, &FunctionInstance{
			Type:   mod.TypeSection[typeIdx],
			Module: inst,
			Code:   code,
		})
	}

	for _, t := range mod.TableSection {
		elements := make([]uint64, t.Limits.Min)
		inst.Tables = append(inst.Tables, &TableInstance{Type: t.ElemType, Max: t.Limits.Max, Elements: elements})
	}

	for _, m := range mod.MemorySection {
		max := MemoryMaxPages
		if m.Limits.Max != nil {
			max = *m.Limits.Max
		}
		inst.Memories = append(inst.Memories, NewMemoryInstance(m.Limits.Min, max, m.IsShared))
	}

	return nil
}

func checkTableCompat(want *Table, have *TableInstance) error {
	if want.ElemType != have.Type {
		return fmt.Errorf("table element type mismatch")
	}
	if uint32(len(have.Elements)) < want.Limits.Min {
		return fmt.Errorf("imported table smaller than declared minimum")
	}
	if want.Limits.Max != nil && (have.Max == nil || *have.Max > *want.Limits.Max) {
		return fmt.Errorf("imported table's maximum exceeds the declared maximum")
	}
	return nil
}

func checkMemoryCompat(want *Memory, have *MemoryInstance) error {
	if uint32(len(have.Data))/MemoryPageSize < want.Limits.Min {
		return fmt.Errorf("imported memory smaller than declared minimum")
	}
	if want.Limits.Max != nil && have.Max > *want.Limits.Max {
		return fmt.Errorf("imported memory's maximum exceeds the declared maximum")
	}
	if want.IsShared != have.IsShared {
		return fmt.Errorf("imported memory's shared-ness mismatch")
	}
	return nil
}

func instantiateGlobals(mod *Module, inst *ModuleInstance) error {
	// Globals defined by this module can only reference already-resolved (i.e. imported) globals
	// and already-allocated functions in their initializers; the validator enforces this statically.
	for _, g := range mod.GlobalSection {
		v, err := EvalConstExpr(g.Init, inst.Globals, inst.Functions)
		if err != nil {
			return err
		}
		inst.Globals = append(inst.Globals, &GlobalInstance{Type: g.Type, Value: v})
	}
	return nil
}

func applyElementSegments(mod *Module, inst *ModuleInstance) error {
	for _, seg := range mod.ElementSection {
		elems := make([]uint64, len(seg.Init))
		for i, ce := range seg.Init {
			v, err := EvalConstExpr(ce, inst.Globals, inst.Functions)
			if err != nil {
				return err
			}
			elems[i] = v
		}
		segInst := &ElementSegmentInstance{Elements: elems, Type: seg.Type}

		switch seg.Mode {
		case ElementModeActive:
			offsetVal, err := EvalConstExpr(seg.OffsetExpr, inst.Globals, inst.Functions)
			if err != nil {
				return err
			}
			offset := uint32(offsetVal)
			table := inst.Tables[seg.TableIndex]
			if uint64(offset)+uint64(len(elems)) > uint64(len(table.Elements)) {
				return NewTrap(TrapKindOutOfBoundsTableAccess)
			}
			copy(table.Elements[offset:], elems)
			segInst.Dropped = true // active segments behave as already-dropped for table.init purposes
		case ElementModeDeclarative:
			segInst.Dropped = true
		}
		inst.ElementSegments = append(inst.ElementSegments, segInst)
	}
	return nil
}

func applyDataSegments(mod *Module, inst *ModuleInstance) error {
	for _, seg := range mod.DataSection {
		segInst := &DataSegmentInstance{Bytes: seg.Init}

		if seg.Mode == DataModeActive {
			offsetVal, err := EvalConstExpr(seg.OffsetExpr, inst.Globals, inst.Functions)
			if err != nil {
				return err
			}
			offset := uint32(offsetVal)
			mem := inst.Memories[seg.MemoryIndex]
			if uint64(offset)+uint64(len(seg.Init)) > uint64(len(mem.Data)) {
				return NewTrap(TrapKindOutOfBoundsMemoryAccess)
			}
			copy(mem.Data[offset:], seg.Init)
			segInst.Dropped = true
		}
		inst.DataSegments = append(inst.DataSegments, segInst)
	}
	return nil
}
