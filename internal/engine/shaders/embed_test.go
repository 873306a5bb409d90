package shaders

import (
	"strings"
	"testing"
)

func TestSpriteSources(t *testing.T) {
	tests := []struct {
		profile Profile
		version string
	}{
		{Desktop, "#version 410 core"},
		{Web, "#version 300 es"},
	}

	for _, tt := range tests {
		vs, fs := Sprite(tt.profile)
		for _, src := range []string{vs, fs} {
			if !strings.HasPrefix(src, tt.version+"\n") {
				t.Errorf("profile %d: source should start with %q", tt.profile, tt.version)
			}
		}
		for _, name := range []string{"a_position", "a_texCoord", "u_world", "u_object", "u_frame"} {
			if !strings.Contains(vs, name) {
				t.Errorf("vertex shader missing %s", name)
			}
		}
		if !strings.Contains(fs, "u_image") {
			t.Error("fragment shader missing u_image")
		}
	}
}
