// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

//go:embed sprite.vert
var spriteVertex string

//go:embed sprite.frag
var spriteFragment string

// Profile selects the GLSL dialect a source is prepared for.
type Profile int

const (
	// Desktop targets the OpenGL 4.1 core profile.
	Desktop Profile = iota
	// Web targets WebGL2 (GLSL ES 3.00).
	Web
)

// Header returns the lines that must open every shader for the profile.
func (p Profile) Header() string {
	if p == Web {
		return "#version 300 es\nprecision mediump float;\n"
	}
	return "#version 410 core\n"
}

// Sprite returns the textured-quad vertex and fragment sources for the profile.
func Sprite(p Profile) (vertex, fragment string) {
	return p.Header() + spriteVertex, p.Header() + spriteFragment
}
