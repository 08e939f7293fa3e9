package pixelperfect

// pixelPerfectShaderSrc upscales the centered Resolution-sized region of
// the source to fill the viewport with whole virtual pixels, then draws
// bars outside the BarOffset inset.
//
// With screen = Viewport.zw and scale = min(screen / Resolution), a target
// pixel p maps to the virtual position
//
//	virt = (p - screen/2) / scale + Resolution/2
//
// Pixels with virt < BarOffset or virt >= Resolution - BarOffset on either
// axis are bars: BarColor blended over the image by its alpha. All others
// take the source texel at floor(virt + fract(SubpixelTranslation)), so
// every virtual pixel covers one whole texel.
//
// Images[0] is the source. Resolution, SubpixelTranslation, BarColor and
// BarOffset come from the camera uniform; Viewport (x, y, w, h) from the
// view uniform.
const pixelPerfectShaderSrc = `//kage:unit pixels

package main

var Resolution vec2
var SubpixelTranslation vec2
var BarColor vec4
var BarOffset vec2
var Viewport vec4

func Fragment(dstPos vec4, srcPos vec2, color vec4) vec4 {
	screen := Viewport.zw
	pos := dstPos.xy - imageDstOrigin() - Viewport.xy

	scale := min(screen.x/Resolution.x, screen.y/Resolution.y)
	virt := (pos-screen/2)/scale + Resolution/2

	at := screen/2 + floor(virt+fract(SubpixelTranslation)) + vec2(0.5) - Resolution/2
	c := imageSrc0At(imageSrc0Origin() + at)

	if virt.x < BarOffset.x || virt.y < BarOffset.y ||
		virt.x >= Resolution.x-BarOffset.x || virt.y >= Resolution.y-BarOffset.y {
		bar := vec4(BarColor.rgb*BarColor.a, BarColor.a)
		return bar + c*(1-BarColor.a)
	}
	return c
}
`
