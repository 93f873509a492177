package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/matext/layout"
	"github.com/gogpu/matext/material"
)

func TestDeclaredOutline(t *testing.T) {
	if Outline == "" {
		t.Fatal("outline shader source is empty")
	}
	got := Declared(Outline)
	if len(got) != 12 {
		t.Fatalf("Declared() = %d bindings, want 12", len(got))
	}

	first, last := got[0], got[len(got)-1]
	if first.Group != 2 || first.Slot != 0 || first.Name != "material" || first.Space != "uniform" {
		t.Errorf("first binding = %+v", first)
	}
	if last.Slot != material.SlotOutline || last.Name != "outline" || last.Type != "OutlineUniform" {
		t.Errorf("last binding = %+v", last)
	}
}

func TestBindingKind(t *testing.T) {
	tests := []struct {
		b    Binding
		want layout.Kind
		ok   bool
	}{
		{Binding{Space: "uniform", Type: "Params"}, layout.KindUniform, true},
		{Binding{Type: "texture_2d<f32>"}, layout.KindTexture, true},
		{Binding{Type: "texture_depth_2d"}, layout.KindTexture, true},
		{Binding{Type: "sampler"}, layout.KindSampler, true},
		{Binding{Space: "storage", Type: "array<u32>"}, 0, false},
		{Binding{Type: "sampler_comparison"}, 0, false},
	}
	for _, tt := range tests {
		k, ok := tt.b.Kind()
		if ok != tt.ok || (ok && k != tt.want) {
			t.Errorf("%+v.Kind() = %v, %v; want %v, %v", tt.b, k, ok, tt.want, tt.ok)
		}
	}
}

func TestDeclaredIgnoresComments(t *testing.T) {
	src := `
// @group(2) @binding(5) var old: texture_2d<f32>;
@group(0) @binding(0) var<storage, read_write> out: array<u32>;
@group(2)
@binding(7)
var tex: texture_2d<f32>;
`
	got := Declared(src)
	if len(got) != 2 {
		t.Fatalf("Declared() = %+v, want 2 bindings", got)
	}
	if got[0].Space != "storage" || got[0].Name != "out" {
		t.Errorf("storage binding = %+v", got[0])
	}
	if got[1].Slot != 7 || got[1].Type != "texture_2d<f32>" {
		t.Errorf("texture binding = %+v", got[1])
	}
}

func TestCheckOutline(t *testing.T) {
	if err := Check(Outline, material.OutlineLayout); err != nil {
		t.Errorf("Check(Outline) = %v", err)
	}
}

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		name string
		edit func(string) string
		want error
	}{
		{
			name: "renumbered extension",
			edit: func(s string) string { return strings.Replace(s, "@binding(100)", "@binding(99)", 1) },
			want: ErrMissingBinding,
		},
		{
			name: "extra binding",
			edit: func(s string) string {
				return s + "\n@group(2) @binding(101) var extra: texture_2d<f32>;\n"
			},
			want: ErrUndeclaredBinding,
		},
		{
			name: "kind mismatch",
			edit: func(s string) string {
				return strings.Replace(s, "var base_color_sampler: sampler;", "var base_color_sampler: texture_2d<f32>;", 1)
			},
			want: ErrKindMismatch,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.edit(Outline), material.OutlineLayout)
			if !errors.Is(err, tt.want) {
				t.Errorf("Check() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCheckOtherGroupsIgnored(t *testing.T) {
	src := Outline + "\n@group(0) @binding(0) var<uniform> view: mat4x4<f32>;\n"
	if err := Check(src, material.OutlineLayout); err != nil {
		t.Errorf("Check() = %v, want nil", err)
	}
}

func TestCompileOutline(t *testing.T) {
	words, err := Compile(Outline)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") ||
			strings.Contains(msg, "unsupported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("Compile() error = %v", err)
	}
	if len(words) == 0 {
		t.Fatal("SPIR-V output is empty")
	}
	// SPIR-V magic number.
	if words[0] != 0x07230203 {
		t.Errorf("magic = %#x, want 0x07230203", words[0])
	}
}

func TestCompileError(t *testing.T) {
	if _, err := Compile("fn broken( {"); !errors.Is(err, ErrCompile) {
		t.Errorf("Compile() error = %v, want ErrCompile", err)
	}
}
