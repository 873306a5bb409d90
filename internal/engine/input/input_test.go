//go:build !js

package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name   string
		event  sdl.Event
		want   Event
		wantOK bool
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, Event{Type: EventQuit}, true},
		{"resized", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 1024, Data2: 768},
			Event{Type: EventWindowResize, Width: 1024, Height: 768}, true},
		{"size changed", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 640, Data2: 480},
			Event{Type: EventWindowResize, Width: 640, Height: 480}, true},
		{"window close", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_CLOSE}, Event{Type: EventQuit}, true},
		{"window moved", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_MOVED}, Event{}, false},
		{"key down", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}},
			Event{Type: EventKeyDown, Key: sdl.SCANCODE_ESCAPE}, true},
		{"key up", &sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_A}},
			Event{Type: EventKeyUp, Key: sdl.SCANCODE_A}, true},
		{"key repeat", &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_A}}, Event{}, false},
		{"mouse", &sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 3, Y: 4}, Event{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.event)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Translate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestQuitRequested(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   bool
	}{
		{"nothing", nil, false},
		{"quit", []Event{{Type: EventQuit}}, true},
		{"escape", []Event{{Type: EventKeyDown, Key: sdl.SCANCODE_ESCAPE}}, true},
		{"escape released", []Event{{Type: EventKeyUp, Key: sdl.SCANCODE_ESCAPE}}, false},
		{"other key", []Event{{Type: EventKeyDown, Key: sdl.SCANCODE_SPACE}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := &Input{events: tt.events}
			if got := i.QuitRequested(); got != tt.want {
				t.Errorf("QuitRequested() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLastResize(t *testing.T) {
	i := &Input{events: []Event{
		{Type: EventWindowResize, Width: 100, Height: 50},
		{Type: EventKeyDown, Key: sdl.SCANCODE_A},
		{Type: EventWindowResize, Width: 300, Height: 200},
	}}
	w, h, ok := i.LastResize()
	if !ok || w != 300 || h != 200 {
		t.Errorf("LastResize() = %d, %d, %v; want 300, 200, true", w, h, ok)
	}

	if _, _, ok := New().LastResize(); ok {
		t.Error("LastResize() on empty input should report false")
	}
}
