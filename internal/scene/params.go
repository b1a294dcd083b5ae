package scene

import (
	"fmt"
	"sort"
)

func (p *Params) fields() map[string]*float64 {
	return map[string]*float64{
		"box_size":     &p.BoxSize,
		"spawn_radius": &p.SpawnRadius,
		"min_height":   &p.MinHeight,
		"max_height":   &p.MaxHeight,
		"throw_speed":  &p.ThrowSpeed,
		"spin":         &p.Spin,
		"gravity":      &p.Gravity,
		"friction":     &p.Friction,
		"restitution":  &p.Restitution,
		"ground_size":  &p.GroundSize,
	}
}

// GetParams returns the tunable values by name. Box counts and solver
// iterations are reported as floats.
func (p Params) GetParams() map[string]float64 {
	out := map[string]float64{
		"min_boxes":  float64(p.MinBoxes),
		"max_boxes":  float64(p.MaxBoxes),
		"iterations": float64(p.Iterations),
	}
	for name, f := range p.fields() {
		out[name] = *f
	}
	return out
}

// SetParam updates one tunable value. It does not validate the result.
func (p *Params) SetParam(name string, value float64) error {
	switch name {
	case "min_boxes":
		p.MinBoxes = int(value)
		return nil
	case "max_boxes":
		p.MaxBoxes = int(value)
		return nil
	case "iterations":
		p.Iterations = int(value)
		return nil
	}
	f, ok := p.fields()[name]
	if !ok {
		return fmt.Errorf("unknown scene parameter %q", name)
	}
	*f = value
	return nil
}

// ParamNames lists every name accepted by SetParam.
func ParamNames() []string {
	names := make([]string, 0, 13)
	for name := range DefaultParams().GetParams() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
