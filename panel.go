package hauntedhouse

import (
	"fmt"
	"math"
	"strings"
)

// Slider edits a float64 in place.
type Slider struct {
	Name  string
	Value *float64
	Min   float64
	Max   float64
	Step  float64
}

// Set clamps v to [Min, Max] and snaps it to the step grid.
func (s *Slider) Set(v float64) {
	v = clamp(v, s.Min, s.Max)
	if s.Step > 0 {
		v = s.Min + math.Round((v-s.Min)/s.Step)*s.Step
		v = clamp(v, s.Min, s.Max)
	}
	*s.Value = v
}

// Nudge moves the value by whole steps.
func (s *Slider) Nudge(steps int) {
	s.Set(*s.Value + float64(steps)*s.Step)
}

func (s *Slider) precision() int {
	if s.Step <= 0 || s.Step >= 1 {
		return 0
	}
	return int(math.Ceil(-math.Log10(s.Step) - 1e-9))
}

func (s *Slider) String() string {
	return fmt.Sprintf("%-10s %.*f", s.Name, s.precision(), *s.Value)
}

type Folder struct {
	Name    string
	Sliders []*Slider
}

func (f *Folder) Add(name string, value *float64, min, max, step float64) *Slider {
	s := &Slider{Name: name, Value: value, Min: min, Max: max, Step: step}
	f.Sliders = append(f.Sliders, s)
	return s
}

// DebugPanel is a keyboard driven list of sliders.
type DebugPanel struct {
	Visible bool
	Folders []*Folder

	selected int
}

func NewDebugPanel() *DebugPanel {
	return &DebugPanel{Visible: true}
}

func (p *DebugPanel) AddFolder(name string) *Folder {
	f := &Folder{Name: name}
	p.Folders = append(p.Folders, f)
	return f
}

func (p *DebugPanel) sliders() []*Slider {
	var all []*Slider
	for _, f := range p.Folders {
		all = append(all, f.Sliders...)
	}
	return all
}

func (p *DebugPanel) Toggle() {
	p.Visible = !p.Visible
}

func (p *DebugPanel) Selected() *Slider {
	all := p.sliders()
	if len(all) == 0 {
		return nil
	}
	return all[p.selected%len(all)]
}

// Select moves the cursor by delta, wrapping at either end.
func (p *DebugPanel) Select(delta int) {
	n := len(p.sliders())
	if n == 0 {
		return
	}
	p.selected = ((p.selected+delta)%n + n) % n
}

// Adjust nudges the selected slider. Hidden panels ignore input.
func (p *DebugPanel) Adjust(steps int) {
	if !p.Visible {
		return
	}
	if s := p.Selected(); s != nil {
		s.Nudge(steps)
	}
}

func (p *DebugPanel) Lines() []string {
	var lines []string
	selected := p.Selected()
	for _, f := range p.Folders {
		lines = append(lines, f.Name)
		for _, s := range f.Sliders {
			cursor := "  "
			if s == selected {
				cursor = "> "
			}
			lines = append(lines, cursor+s.String())
		}
	}
	return lines
}

func (p *DebugPanel) String() string {
	return strings.Join(p.Lines(), "\n")
}

// NewMoonPanel binds the "Moon Light" folder to the moon's intensity and
// position.
func NewMoonPanel(moon *Node, light *DirectionalLight) *DebugPanel {
	p := NewDebugPanel()
	f := p.AddFolder("Moon Light")
	f.Add("intensity", &light.Intensity, 0, 2, 0.01)
	f.Add("x", &moon.Position[0], -10, 10, 0.1)
	f.Add("y", &moon.Position[1], -10, 10, 0.1)
	f.Add("z", &moon.Position[2], -10, 10, 0.1)
	return p
}
