package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandExpand(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		vars map[string]string
		want []string
	}{
		{
			name: "Default render",
			cmd:  DefaultRenderCommand,
			vars: map[string]string{PlaceholderImage: "image.gif", PlaceholderWindow: "1234"},
			want: []string{"animate", "image.gif", "-window", "1234"},
		},
		{
			name: "Default sound",
			cmd:  DefaultSoundCommand,
			vars: map[string]string{PlaceholderSound: "click.wav"},
			want: []string{"-autoexit", "-nodisp", "click.wav"},
		},
		{
			name: "Path with spaces stays one argument",
			cmd:  DefaultSoundCommand,
			vars: map[string]string{PlaceholderSound: "/home/me/my sounds/click.wav"},
			want: []string{"-autoexit", "-nodisp", "/home/me/my sounds/click.wav"},
		},
		{
			name: "Placeholder inside argument",
			cmd:  Command{Name: "paplay", Args: []string{"--file={sound}"}},
			vars: map[string]string{PlaceholderSound: "a.wav"},
			want: []string{"--file=a.wav"},
		},
		{
			name: "Unknown placeholder left alone",
			cmd:  Command{Name: "x", Args: []string{"{other}"}},
			vars: map[string]string{PlaceholderSound: "a.wav"},
			want: []string{"{other}"},
		},
		{
			name: "No args",
			cmd:  Command{Name: "x"},
			vars: nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.Expand(tt.vars))
		})
	}
}

func TestExpandDoesNotMutateTemplate(t *testing.T) {
	cmd := Command{Name: "ffplay", Args: []string{PlaceholderSound}}
	_ = cmd.Expand(map[string]string{PlaceholderSound: "a.wav"})
	assert.Equal(t, []string{PlaceholderSound}, cmd.Args)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"magick animate {image} -window {window}", DefaultRenderCommand},
		{"  ffplay   -autoexit -nodisp {sound} ", DefaultSoundCommand},
		{"aplay", Command{Name: "aplay", Args: []string{}}},
		{"", Command{}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseCommand(tt.line), "ParseCommand(%q)", tt.line)
	}
}

func TestCommandString(t *testing.T) {
	assert.Equal(t, "ffplay -autoexit -nodisp {sound}", DefaultSoundCommand.String())
	assert.Equal(t, "aplay", Command{Name: "aplay"}.String())
}
