// Package layout partitions material parameter binding slots between a base
// material and its extension.
//
// A composite material is bound as a single bind group. The base material
// owns slots [BaseFirst, BaseLast] and the extension owns every slot from
// ExtensionFirst upward. Shading programs read parameters at exactly these
// numeric bindings, so renumbering a declared slot is a breaking change.
package layout

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
)

// Slot is a binding slot index inside the material bind group.
type Slot uint32

// Reserved slot ranges.
const (
	BaseFirst      Slot = 0
	BaseLast       Slot = 99
	ExtensionFirst Slot = 100
)

// Fails to compile if the extension range ever starts inside the base range.
const _ uint = uint(ExtensionFirst - BaseLast - 1)

// Declaration errors.
var (
	ErrBaseSlotOutOfRange      = errors.New("layout: base slot outside reserved base range")
	ErrExtensionSlotOutOfRange = errors.New("layout: extension slot inside reserved base range")
	ErrDuplicateSlot           = errors.New("layout: duplicate slot")
	ErrDuplicateName           = errors.New("layout: duplicate parameter name")
	ErrExtensionOrder          = errors.New("layout: extension slots not in ascending order")
	ErrEmptyName               = errors.New("layout: empty name")
)

// Range is an inclusive range of slots.
type Range struct {
	First Slot
	Last  Slot
}

// Base is the range reserved for base material parameters.
var Base = Range{First: BaseFirst, Last: BaseLast}

// Contains reports whether s lies in r.
func (r Range) Contains(s Slot) bool {
	return s >= r.First && s <= r.Last
}

// Overlaps reports whether r and o share at least one slot.
func (r Range) Overlaps(o Range) bool {
	return r.First <= o.Last && o.First <= r.Last
}

// Len returns the number of slots in r.
func (r Range) Len() int {
	if r.Last < r.First {
		return 0
	}
	return int(r.Last-r.First) + 1
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.First, r.Last)
}

// Kind is the resource kind bound at a slot.
type Kind uint8

const (
	KindUniform Kind = iota
	KindTexture
	KindSampler
)

func (k Kind) String() string {
	switch k {
	case KindUniform:
		return "uniform"
	case KindTexture:
		return "texture"
	case KindSampler:
		return "sampler"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Param declares one bound parameter.
type Param struct {
	Name string
	Slot Slot
	Kind Kind

	// Size is the uniform block size in bytes. Ignored for textures and samplers.
	Size uint64
}

// Layout is a validated (base, extension) slot assignment.
type Layout struct {
	name      string
	base      []Param
	extension []Param
}

// Declare validates and returns a layout for the given base and extension
// parameters. Extension parameters must be listed in ascending slot order.
func Declare(name string, base, ext []Param) (*Layout, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	slots := make(map[Slot]string, len(base)+len(ext))
	names := make(map[string]struct{}, len(base)+len(ext))
	check := func(p Param) error {
		if p.Name == "" {
			return fmt.Errorf("%w: parameter at slot %d", ErrEmptyName, p.Slot)
		}
		if other, dup := slots[p.Slot]; dup {
			return fmt.Errorf("%w: %d used by %q and %q", ErrDuplicateSlot, p.Slot, other, p.Name)
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateName, p.Name)
		}
		slots[p.Slot] = p.Name
		names[p.Name] = struct{}{}
		return nil
	}

	for _, p := range base {
		if !Base.Contains(p.Slot) {
			return nil, fmt.Errorf("%w: %q at %d (base range %s)", ErrBaseSlotOutOfRange, p.Name, p.Slot, Base)
		}
		if err := check(p); err != nil {
			return nil, err
		}
	}
	for i, p := range ext {
		if p.Slot < ExtensionFirst {
			return nil, fmt.Errorf("%w: %q at %d (must be >= %d)", ErrExtensionSlotOutOfRange, p.Name, p.Slot, ExtensionFirst)
		}
		if i > 0 && p.Slot <= ext[i-1].Slot {
			return nil, fmt.Errorf("%w: %q at %d follows %q at %d", ErrExtensionOrder, p.Name, p.Slot, ext[i-1].Name, ext[i-1].Slot)
		}
		if err := check(p); err != nil {
			return nil, err
		}
	}

	l := &Layout{
		name:      name,
		base:      slices.Clone(base),
		extension: slices.Clone(ext),
	}
	slices.SortFunc(l.base, func(a, b Param) int { return int(a.Slot) - int(b.Slot) })
	return l, nil
}

// MustDeclare is like Declare but panics on error.
// Intended for package-level layout variables.
func MustDeclare(name string, base, ext []Param) *Layout {
	l, err := Declare(name, base, ext)
	if err != nil {
		panic(err)
	}
	return l
}

// Name returns the layout name.
func (l *Layout) Name() string { return l.name }

// BaseParams returns the base parameters in slot order.
func (l *Layout) BaseParams() []Param { return slices.Clone(l.base) }

// ExtensionParams returns the extension parameters in declared order.
func (l *Layout) ExtensionParams() []Param { return slices.Clone(l.extension) }

// Params returns all parameters in slot order.
func (l *Layout) Params() []Param {
	out := make([]Param, 0, len(l.base)+len(l.extension))
	out = append(out, l.base...)
	return append(out, l.extension...)
}

// BaseRange returns the range spanned by the declared base parameters.
// An empty layout reports the zero-length range {1, 0}.
func (l *Layout) BaseRange() Range {
	return span(l.base)
}

// ExtensionRange returns the range spanned by the declared extension parameters.
func (l *Layout) ExtensionRange() Range {
	return span(l.extension)
}

// Disjoint reports whether the base and extension ranges share no slot and
// every extension slot lies above the reserved base range.
func (l *Layout) Disjoint() bool {
	b, e := l.BaseRange(), l.ExtensionRange()
	if e.Len() == 0 {
		return true
	}
	if e.First <= BaseLast {
		return false
	}
	return b.Len() == 0 || !b.Overlaps(e)
}

// Lookup returns the parameter with the given name.
func (l *Layout) Lookup(name string) (Param, bool) {
	for _, p := range l.Params() {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Entries returns the bind group layout entries for the composite material,
// in slot order.
func (l *Layout) Entries() []gputypes.BindGroupLayoutEntry {
	params := l.Params()
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(params))
	for _, p := range params {
		entries = append(entries, entry(p))
	}
	return entries
}

func entry(p Param) gputypes.BindGroupLayoutEntry {
	switch p.Kind {
	case KindTexture:
		return gputypes.BindGroupLayoutEntry{
			Binding:    uint32(p.Slot),
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		}
	case KindSampler:
		return gputypes.BindGroupLayoutEntry{
			Binding:    uint32(p.Slot),
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		}
	default:
		return gputypes.BindGroupLayoutEntry{
			Binding:    uint32(p.Slot),
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: p.Size,
			},
		}
	}
}

func span(params []Param) Range {
	if len(params) == 0 {
		return Range{First: 1, Last: 0}
	}
	r := Range{First: params[0].Slot, Last: params[0].Slot}
	for _, p := range params[1:] {
		r.First = min(r.First, p.Slot)
		r.Last = max(r.Last, p.Slot)
	}
	return r
}
