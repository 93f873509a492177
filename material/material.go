// Package material defines the base and extension material records, the
// composite material that merges them, and the shared material store.
//
// Base parameters are bound at slots 0..99 and extension parameters at 100
// and above, as declared by OutlineLayout.
package material

import (
	"encoding/binary"
	"fmt"
	"maps"
	"math"

	"github.com/jinzhu/copier"

	"github.com/gogpu/matext/layout"
)

// TextureSlot names a texture input of the base material.
type TextureSlot string

// Base material texture inputs.
const (
	TextureBaseColor         TextureSlot = "base_color"
	TextureEmissive          TextureSlot = "emissive"
	TextureMetallicRoughness TextureSlot = "metallic_roughness"
	TextureOcclusion         TextureSlot = "occlusion"
	TextureNormal            TextureSlot = "normal"
)

// Base is a physically based surface description.
//
// Many entities may share one Base through a base Ref. The core only reads
// stored Base values; it never mutates them.
type Base struct {
	BaseColor   RGBA    `toml:"base_color"`
	Emissive    RGBA    `toml:"emissive"`
	Metallic    float32 `toml:"metallic"`
	Roughness   float32 `toml:"roughness"`
	Reflectance float32 `toml:"reflectance"`
	AlphaCutoff float32 `toml:"alpha_cutoff"`
	DoubleSided bool    `toml:"double_sided"`
	Unlit       bool    `toml:"unlit"`

	// Textures maps a texture input to a texture path.
	Textures map[TextureSlot]string `toml:"textures"`
}

// DefaultBase returns the default base material: opaque white, fully rough
// dielectric with 0.5 reflectance.
func DefaultBase() Base {
	return Base{
		BaseColor:   White,
		Emissive:    RGBA{A: 1},
		Metallic:    0,
		Roughness:   0.5,
		Reflectance: 0.5,
		AlphaCutoff: 0.5,
	}
}

// Clone returns a deep copy of b that shares no memory with it.
func (b Base) Clone() (Base, error) {
	var out Base
	if err := copier.CopyWithOption(&out, &b, copier.Option{DeepCopy: true}); err != nil {
		return Base{}, fmt.Errorf("material: clone base: %w", err)
	}
	return out, nil
}

// Equal reports whether b and o hold bit-identical parameters.
func (b Base) Equal(o Base) bool {
	return b.BaseColor.bits() == o.BaseColor.bits() &&
		b.Emissive.bits() == o.Emissive.bits() &&
		math.Float32bits(b.Metallic) == math.Float32bits(o.Metallic) &&
		math.Float32bits(b.Roughness) == math.Float32bits(o.Roughness) &&
		math.Float32bits(b.Reflectance) == math.Float32bits(o.Reflectance) &&
		math.Float32bits(b.AlphaCutoff) == math.Float32bits(o.AlphaCutoff) &&
		b.DoubleSided == o.DoubleSided &&
		b.Unlit == o.Unlit &&
		maps.Equal(b.Textures, o.Textures)
}

func (c RGBA) bits() [4]uint32 {
	return [4]uint32{
		math.Float32bits(c.R),
		math.Float32bits(c.G),
		math.Float32bits(c.B),
		math.Float32bits(c.A),
	}
}

// Shader names used by the outline extension.
const (
	OutlineShader = "outline.wgsl"
)

// Extension holds the outline, tint and quantization parameters appended to
// a base material. Values come from caller-supplied defaults at augmentation
// time; they are never read back from the base material.
type Extension struct {
	Tint          RGBA    `toml:"tint"`
	TintStrength  float32 `toml:"tint_strength"`
	QuantizeSteps uint32  `toml:"quantize_steps"`
	OutlineWidth  float32 `toml:"outline_width"`
	OutlineColor  RGBA    `toml:"outline_color"`

	FragmentShader         string `toml:"fragment_shader"`
	DeferredFragmentShader string `toml:"deferred_fragment_shader"`
}

// DefaultExtension returns a yellow tint at 0.8 strength with three
// quantization steps and a thin black outline.
func DefaultExtension() Extension {
	return Extension{
		Tint:                   Yellow,
		TintStrength:           0.8,
		QuantizeSteps:          3,
		OutlineWidth:           0.02,
		OutlineColor:           Black,
		FragmentShader:         OutlineShader,
		DeferredFragmentShader: OutlineShader,
	}
}

// Composite is a base material merged with extension parameters. It owns a
// private copy of the base, so later edits to the original base material do
// not reach it.
type Composite struct {
	Base      Base
	Extension Extension
}

// NewComposite builds a composite from a deep copy of base.
func NewComposite(base Base, ext Extension) (Composite, error) {
	b, err := base.Clone()
	if err != nil {
		return Composite{}, err
	}
	if ext.FragmentShader == "" {
		ext.FragmentShader = OutlineShader
	}
	if ext.DeferredFragmentShader == "" {
		ext.DeferredFragmentShader = ext.FragmentShader
	}
	return Composite{Base: b, Extension: ext}, nil
}

// Layout returns the slot layout the composite binds with.
func (c *Composite) Layout() *layout.Layout { return OutlineLayout }

// Uniform is a packed uniform block bound at Slot.
type Uniform struct {
	Slot layout.Slot
	Data []byte
}

// Uniforms packs the base block (slot 0) and the extension block (slot 100)
// in declared field order, little-endian.
func (c *Composite) Uniforms() []Uniform {
	return []Uniform{
		{Slot: SlotMaterial, Data: c.Base.uniform()},
		{Slot: SlotOutline, Data: c.Extension.uniform()},
	}
}

// Textures returns the texture path bound at each texture slot.
func (c *Composite) Textures() map[layout.Slot]string {
	out := make(map[layout.Slot]string, len(c.Base.Textures))
	for ts, path := range c.Base.Textures {
		if slot, ok := textureSlots[ts]; ok {
			out[slot] = path
		}
	}
	return out
}

// Base uniform block, 64 bytes:
//
//	base_color   vec4<f32>
//	emissive     vec4<f32>
//	metallic     f32
//	roughness    f32
//	reflectance  f32
//	alpha_cutoff f32
//	flags        u32 (+12 bytes padding)
func (b Base) uniform() []byte {
	buf := make([]byte, 0, BaseUniformSize)
	buf = appendColor(buf, b.BaseColor)
	buf = appendColor(buf, b.Emissive)
	buf = appendFloat(buf, b.Metallic)
	buf = appendFloat(buf, b.Roughness)
	buf = appendFloat(buf, b.Reflectance)
	buf = appendFloat(buf, b.AlphaCutoff)

	var flags uint32
	if b.DoubleSided {
		flags |= FlagDoubleSided
	}
	if b.Unlit {
		flags |= FlagUnlit
	}
	for ts := range b.Textures {
		flags |= textureFlags[ts]
	}
	buf = binary.LittleEndian.AppendUint32(buf, flags)
	return append(buf, make([]byte, BaseUniformSize-len(buf))...)
}

// Extension uniform block, 48 bytes:
//
//	tint           vec4<f32>
//	outline_color  vec4<f32>
//	tint_strength  f32
//	outline_width  f32
//	quantize_steps u32 (+4 bytes padding)
func (e Extension) uniform() []byte {
	buf := make([]byte, 0, ExtensionUniformSize)
	buf = appendColor(buf, e.Tint)
	buf = appendColor(buf, e.OutlineColor)
	buf = appendFloat(buf, e.TintStrength)
	buf = appendFloat(buf, e.OutlineWidth)
	buf = binary.LittleEndian.AppendUint32(buf, e.QuantizeSteps)
	return append(buf, make([]byte, ExtensionUniformSize-len(buf))...)
}

func appendColor(buf []byte, c RGBA) []byte {
	buf = appendFloat(buf, c.R)
	buf = appendFloat(buf, c.G)
	buf = appendFloat(buf, c.B)
	return appendFloat(buf, c.A)
}

func appendFloat(buf []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
}
