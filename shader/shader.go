// Package shader holds the outline material shader and checks WGSL binding
// declarations against a slot layout.
//
// The rendering pipeline reads composite parameters at fixed numeric
// bindings. Check catches any drift between a shader and the layout the
// material store binds with; renumbering either side is a breaking change.
package shader

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/naga"

	"github.com/gogpu/matext/layout"
)

// MaterialGroup is the bind group that holds material parameters.
const MaterialGroup = 2

// Outline is the WGSL source of the outline composite material.
//
//go:embed outline.wgsl
var Outline string

var (
	ErrUndeclaredBinding = errors.New("shader: binding not declared by layout")
	ErrMissingBinding    = errors.New("shader: layout slot not bound by shader")
	ErrKindMismatch      = errors.New("shader: binding kind does not match layout")
	ErrCompile           = errors.New("shader: compile failed")
)

// Binding is one resource variable declared with @group and @binding.
type Binding struct {
	Group uint32
	Slot  layout.Slot
	Name  string

	// Space is the address space in var<...>, empty for handles.
	Space string

	// Type is the declared WGSL type.
	Type string
}

// Kind maps the binding to a layout kind. Storage buffers and other
// resources report false.
func (b Binding) Kind() (layout.Kind, bool) {
	switch {
	case b.Space == "uniform":
		return layout.KindUniform, true
	case b.Space != "":
		return 0, false
	case b.Type == "sampler":
		return layout.KindSampler, true
	case strings.HasPrefix(b.Type, "texture_"):
		return layout.KindTexture, true
	}
	return 0, false
}

func (b Binding) String() string {
	return fmt.Sprintf("@group(%d) @binding(%d) %s: %s", b.Group, b.Slot, b.Name, b.Type)
}

var bindingRE = regexp.MustCompile(
	`@group\(\s*(\d+)\s*\)\s*@binding\(\s*(\d+)\s*\)\s*var\s*(?:<\s*([a-z_]+)[^>]*>)?\s*([A-Za-z_][A-Za-z0-9_]*)\s*:\s*([^;=]+?)\s*;`)

var lineCommentRE = regexp.MustCompile(`//[^\n]*`)

// Declared returns the bindings declared in src, in source order.
func Declared(src string) []Binding {
	src = lineCommentRE.ReplaceAllString(src, "")
	var out []Binding
	for _, m := range bindingRE.FindAllStringSubmatch(src, -1) {
		group, err1 := strconv.ParseUint(m[1], 10, 32)
		slot, err2 := strconv.ParseUint(m[2], 10, 32)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, Binding{
			Group: uint32(group),
			Slot:  layout.Slot(slot),
			Space: m[3],
			Name:  m[4],
			Type:  m[5],
		})
	}
	return out
}

// Check verifies that src binds every slot of l in MaterialGroup with a
// matching kind and binds nothing else in that group. All problems are
// reported together.
func Check(src string, l *layout.Layout) error {
	bound := make(map[layout.Slot]Binding)
	for _, b := range Declared(src) {
		if b.Group == MaterialGroup {
			bound[b.Slot] = b
		}
	}

	var errs []error
	params := make(map[layout.Slot]layout.Param)
	for _, p := range l.Params() {
		params[p.Slot] = p
		b, ok := bound[p.Slot]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s slot %d (%s)", ErrMissingBinding, l.Name(), p.Slot, p.Name))
			continue
		}
		if k, ok := b.Kind(); !ok || k != p.Kind {
			errs = append(errs, fmt.Errorf("%w: %v, want %v", ErrKindMismatch, b, p.Kind))
		}
	}

	slots := make([]layout.Slot, 0, len(bound))
	for s := range bound {
		slots = append(slots, s)
	}
	slices.Sort(slots)
	for _, s := range slots {
		if _, ok := params[s]; !ok {
			errs = append(errs, fmt.Errorf("%w: %v in %s", ErrUndeclaredBinding, bound[s], l.Name()))
		}
	}
	return errors.Join(errs...)
}

// Compile compiles WGSL source to SPIR-V words.
func Compile(src string) ([]uint32, error) {
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V length %d not word aligned", ErrCompile, len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}
