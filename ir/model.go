package ir

import (
	"sort"
	"strings"
)

// Model is the complete result of one compilation run, handed to emitters.
type Model struct {
	// Declarations in final declaration order: discovery order unless a sort
	// option reordered them.
	Declarations []Declaration

	// Warnings contains non-fatal issues encountered during compilation.
	Warnings []Warning
}

// AddDeclaration appends a declaration to the model.
func (m *Model) AddDeclaration(d Declaration) {
	m.Declarations = append(m.Declarations, d)
}

// AddWarning adds a warning to the model.
func (m *Model) AddWarning(w Warning) {
	m.Warnings = append(m.Warnings, w)
}

// Find looks up a declaration by qualified name. Returns nil if not found.
func (m *Model) Find(name string) Declaration {
	for _, d := range m.Declarations {
		if QualifiedName(d) == name {
			return d
		}
	}
	return nil
}

// Interface looks up an interface declaration by qualified name.
func (m *Model) Interface(name string) *InterfaceDecl {
	d, _ := m.Find(name).(*InterfaceDecl)
	return d
}

// Alias looks up an alias declaration by qualified name.
func (m *Model) Alias(name string) *AliasDecl {
	d, _ := m.Find(name).(*AliasDecl)
	return d
}

// Names returns the qualified names of all declarations in order.
func (m *Model) Names() []string {
	names := make([]string, len(m.Declarations))
	for i, d := range m.Declarations {
		names[i] = QualifiedName(d)
	}
	return names
}

// Validate checks the model for structural issues.
// Returns all validation errors found (not just the first).
func (m *Model) Validate() []error {
	var errs []*ValidationError

	declared := make(map[string]Declaration)
	for _, d := range m.Declarations {
		name := QualifiedName(d)
		if _, dup := declared[name]; dup {
			errs = append(errs, &ValidationError{
				Code:    "duplicate_declaration",
				Message: "duplicate declaration name: " + name,
			})
		}
		declared[name] = d
	}

	for _, d := range m.Declarations {
		context := d.DeclKind().String() + " " + QualifiedName(d)
		switch decl := d.(type) {
		case *InterfaceDecl:
			params := stringSet(decl.TypeParams)
			for _, ext := range decl.Extends {
				if _, ok := declared[ext.Name].(*InterfaceDecl); !ok && !ext.External {
					errs = append(errs, &ValidationError{
						Code:    "missing_extends_reference",
						Message: context + " extends unknown interface: " + ext.Name,
					})
				}
				errs = append(errs, validateReferences(ext, declared, params, context)...)
			}
			seen := make(map[string]bool)
			for _, p := range decl.Properties {
				if seen[p.Name] {
					errs = append(errs, &ValidationError{
						Code:    "duplicate_property",
						Message: context + " declares property " + p.Name + " twice",
					})
				}
				seen[p.Name] = true
				errs = append(errs, validateReferences(p.Type, declared, params, context+"."+p.Name)...)
			}
		case *AliasDecl:
			errs = append(errs, validateReferences(decl.Definition, declared, stringSet(decl.TypeParams), context)...)
		case *EnumDecl:
			for _, mem := range decl.Members {
				switch mem.Value.(type) {
				case string, int64, float64:
				default:
					errs = append(errs, &ValidationError{
						Code:    "invalid_enum_value",
						Message: context + " member " + mem.Name + " has a value that is neither string nor number",
					})
				}
			}
		}
	}

	errs = append(errs, m.detectCircularInheritance()...)

	var result []error
	for _, e := range errs {
		result = append(result, e)
	}
	return result
}

// validateReferences walks t and checks that every named reference resolves to
// a declaration and every free variable is a parameter of the enclosing declaration.
func validateReferences(t Type, declared map[string]Declaration, params map[string]bool, context string) []*ValidationError {
	var errs []*ValidationError
	Walk(t, func(n Type) bool {
		switch v := n.(type) {
		case *Structural:
			if !v.External && declared[v.Name] == nil {
				errs = append(errs, &ValidationError{
					Code:    "missing_type_reference",
					Message: context + " references unknown type: " + v.Name,
				})
			}
		case *Enum:
			if declared[v.Name] == nil && len(v.Literals) == 0 {
				errs = append(errs, &ValidationError{
					Code:    "missing_enum_reference",
					Message: context + " references unknown enum: " + v.Name,
				})
			}
		case *Alias:
			if declared[v.Name] == nil {
				errs = append(errs, &ValidationError{
					Code:    "missing_alias_reference",
					Message: context + " references unknown alias: " + v.Name,
				})
			}
		case *FreeVariable:
			if !params[v.Name] {
				errs = append(errs, &ValidationError{
					Code:    "unbound_type_variable",
					Message: context + " uses type variable " + v.Name + " that is not a declared parameter",
				})
			}
		}
		return true
	})
	return errs
}

// ValidationError represents a model validation error.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// detectCircularInheritance checks for cycles through InterfaceDecl.Extends.
func (m *Model) detectCircularInheritance() []*ValidationError {
	var errs []*ValidationError

	interfaces := make(map[string]*InterfaceDecl)
	var names []string
	for _, d := range m.Declarations {
		if id, ok := d.(*InterfaceDecl); ok {
			name := QualifiedName(id)
			interfaces[name] = id
			names = append(names, name)
		}
	}
	sort.Strings(names)

	visited := make(map[string]bool)
	inStack := make(map[string]bool)

	var visit func(name string, path []string)
	visit = func(name string, path []string) {
		if inStack[name] {
			errs = append(errs, &ValidationError{
				Code:    "circular_inheritance",
				Message: "circular inheritance detected: " + strings.Join(append(path, name), " -> "),
			})
			return
		}
		if visited[name] {
			return
		}
		visited[name] = true
		inStack[name] = true
		if decl, ok := interfaces[name]; ok {
			for _, ext := range decl.Extends {
				visit(ext.Name, append(path, name))
			}
		}
		inStack[name] = false
	}

	for _, name := range names {
		visit(name, nil)
	}
	return errs
}

func stringSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
