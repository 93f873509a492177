package material

import "github.com/gogpu/matext/layout"

// Uniform block sizes in bytes.
const (
	BaseUniformSize      = 64
	ExtensionUniformSize = 48
)

// Binding slots of the outline composite material. The base slots mirror the
// standard material bind group; the extension starts at layout.ExtensionFirst.
const (
	SlotMaterial                 layout.Slot = 0
	SlotBaseColorTexture         layout.Slot = 1
	SlotBaseColorSampler         layout.Slot = 2
	SlotEmissiveTexture          layout.Slot = 3
	SlotEmissiveSampler          layout.Slot = 4
	SlotMetallicRoughnessTexture layout.Slot = 5
	SlotMetallicRoughnessSampler layout.Slot = 6
	SlotOcclusionTexture         layout.Slot = 7
	SlotOcclusionSampler         layout.Slot = 8
	SlotNormalTexture            layout.Slot = 9
	SlotNormalSampler            layout.Slot = 10

	SlotOutline layout.Slot = layout.ExtensionFirst
)

// Flags packed into the base uniform block.
const (
	FlagBaseColorTexture uint32 = 1 << iota
	FlagEmissiveTexture
	FlagMetallicRoughnessTexture
	FlagOcclusionTexture
	FlagNormalTexture
	FlagDoubleSided
	FlagUnlit
)

var textureSlots = map[TextureSlot]layout.Slot{
	TextureBaseColor:         SlotBaseColorTexture,
	TextureEmissive:          SlotEmissiveTexture,
	TextureMetallicRoughness: SlotMetallicRoughnessTexture,
	TextureOcclusion:         SlotOcclusionTexture,
	TextureNormal:            SlotNormalTexture,
}

var textureFlags = map[TextureSlot]uint32{
	TextureBaseColor:         FlagBaseColorTexture,
	TextureEmissive:          FlagEmissiveTexture,
	TextureMetallicRoughness: FlagMetallicRoughnessTexture,
	TextureOcclusion:         FlagOcclusionTexture,
	TextureNormal:            FlagNormalTexture,
}

// BaseParams are the slots owned by the base material.
var BaseParams = []layout.Param{
	{Name: "material", Slot: SlotMaterial, Kind: layout.KindUniform, Size: BaseUniformSize},
	{Name: "base_color_texture", Slot: SlotBaseColorTexture, Kind: layout.KindTexture},
	{Name: "base_color_sampler", Slot: SlotBaseColorSampler, Kind: layout.KindSampler},
	{Name: "emissive_texture", Slot: SlotEmissiveTexture, Kind: layout.KindTexture},
	{Name: "emissive_sampler", Slot: SlotEmissiveSampler, Kind: layout.KindSampler},
	{Name: "metallic_roughness_texture", Slot: SlotMetallicRoughnessTexture, Kind: layout.KindTexture},
	{Name: "metallic_roughness_sampler", Slot: SlotMetallicRoughnessSampler, Kind: layout.KindSampler},
	{Name: "occlusion_texture", Slot: SlotOcclusionTexture, Kind: layout.KindTexture},
	{Name: "occlusion_sampler", Slot: SlotOcclusionSampler, Kind: layout.KindSampler},
	{Name: "normal_map_texture", Slot: SlotNormalTexture, Kind: layout.KindTexture},
	{Name: "normal_map_sampler", Slot: SlotNormalSampler, Kind: layout.KindSampler},
}

// OutlineLayout is the composite layout for Base + Extension.
var OutlineLayout = layout.MustDeclare("outline", BaseParams, []layout.Param{
	{Name: "outline", Slot: SlotOutline, Kind: layout.KindUniform, Size: ExtensionUniformSize},
})

func init() {
	layout.Register(OutlineLayout)
}
