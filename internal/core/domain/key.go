package domain

import "go.trai.ch/zerr"

// Kind classifies the entity a dependency key refers to. It is a closed
// enumeration: the four declaration kinds plus two synthetic ones, the
// per-file anchor and the external dependency.
type Kind uint8

const (
	// KindTopLevel is a top-level binding (function, global, typealias).
	KindTopLevel Kind = iota
	// KindNominalType is a nominal type declaration.
	KindNominalType
	// KindMember is a member of a nominal type; Context holds the owner.
	KindMember
	// KindDynamicLookup is a dynamically looked-up member name.
	KindDynamicLookup
	// KindFileAnchor is the synthetic "this file was compiled" node emitted
	// once per report.
	KindFileAnchor
	// KindExternalDepend names an entity defined outside the program,
	// for example an imported library file.
	KindExternalDepend
)

// String returns the report-format spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindTopLevel:
		return "topLevel"
	case KindNominalType:
		return "nominal"
	case KindMember:
		return "member"
	case KindDynamicLookup:
		return "dynamicLookup"
	case KindFileAnchor:
		return "fileAnchor"
	case KindExternalDepend:
		return "externalDepend"
	default:
		return "unknown"
	}
}

// ParseKind converts a report-format kind string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "topLevel":
		return KindTopLevel, nil
	case "nominal":
		return KindNominalType, nil
	case "member":
		return KindMember, nil
	case "dynamicLookup":
		return KindDynamicLookup, nil
	case "fileAnchor":
		return KindFileAnchor, nil
	case "externalDepend":
		return KindExternalDepend, nil
	default:
		return 0, zerr.With(ErrUnknownKind, "kind", s)
	}
}

// Aspect distinguishes the publicly observable facet of a declaration from
// its private one. A use edge recorded against the interface facet forces
// cascading recompilation of the using file.
type Aspect uint8

const (
	// AspectInterface is the publicly observable facet.
	AspectInterface Aspect = iota
	// AspectImplementation is the private facet.
	AspectImplementation
)

// String returns the report-format spelling of the aspect.
func (a Aspect) String() string {
	if a == AspectInterface {
		return "interface"
	}
	return "implementation"
}

// ParseAspect converts a report-format aspect string into an Aspect.
func ParseAspect(s string) (Aspect, error) {
	switch s {
	case "interface":
		return AspectInterface, nil
	case "implementation":
		return AspectImplementation, nil
	default:
		return 0, zerr.With(ErrUnknownAspect, "aspect", s)
	}
}

// Key identifies one program entity (or synthetic anchor) in the dependency
// graph. It is an immutable value type: comparable, usable as a map key.
type Key struct {
	Kind Kind
	// Context scopes member and dynamic-lookup names to their owner.
	// Empty for the other kinds.
	Context InternedString
	Name    InternedString
	Aspect  Aspect
}

// NewKey builds a key for a declared entity.
func NewKey(kind Kind, context, name string, aspect Aspect) Key {
	return Key{
		Kind:    kind,
		Context: NewInternedString(context),
		Name:    NewInternedString(name),
		Aspect:  aspect,
	}
}

// ExternalKey builds the canonical key under which uses of an
// externally-defined name are recorded. External dependencies are always
// observed through their interface.
func ExternalKey(name string) Key {
	return Key{
		Kind:   KindExternalDepend,
		Name:   NewInternedString(name),
		Aspect: AspectInterface,
	}
}

// IsInterface reports whether the key refers to the publicly observable
// facet of its entity.
func (k Key) IsInterface() bool {
	return k.Aspect == AspectInterface
}

// String renders the key for logs and dot output.
func (k Key) String() string {
	s := k.Kind.String() + " " + k.Aspect.String() + " "
	if ctx := k.Context.String(); ctx != "" {
		s += ctx + "."
	}
	return s + k.Name.String()
}
