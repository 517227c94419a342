package overlay

import "strings"

// Placeholders substituted into command arguments
const (
	PlaceholderImage  = "{image}"
	PlaceholderWindow = "{window}"
	PlaceholderSound  = "{sound}"
)

// Command is an external program and its argument template
type Command struct {
	Name string
	Args []string
}

// DefaultRenderCommand animates the image onto the overlay window.
var DefaultRenderCommand = Command{
	Name: "magick",
	Args: []string{"animate", PlaceholderImage, "-window", PlaceholderWindow},
}

// DefaultSoundCommand plays the sound once without opening a window.
var DefaultSoundCommand = Command{
	Name: "ffplay",
	Args: []string{"-autoexit", "-nodisp", PlaceholderSound},
}

// Expand returns the argument list with every placeholder replaced.
// Each argument stays a single argv entry whatever the value contains.
func (c Command) Expand(vars map[string]string) []string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, k, v)
	}
	r := strings.NewReplacer(pairs...)

	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = r.Replace(a)
	}
	return args
}

// ParseCommand splits a command line on whitespace. The first field is the
// program.
func ParseCommand(line string) Command {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}
	}
	return Command{Name: fields[0], Args: fields[1:]}
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}
