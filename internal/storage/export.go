package storage

import (
	"encoding/json"
	"io"
)

type ExportBody struct {
	ID          uint32     `json:"id"`
	Kind        string     `json:"kind"`
	Position    [3]float64 `json:"position"`
	Orientation [4]float64 `json:"orientation"` // w, x, y, z
}

type ExportFrame struct {
	Time   float64      `json:"time"`
	Bodies []ExportBody `json:"bodies"`
}

type ExportData struct {
	Run    RunMetadata   `json:"run"`
	Frames []ExportFrame `json:"frames"`
}

// ExportJSON writes a run's metadata and frames to w as indented JSON.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	frames, err := s.LoadFrames(runID)
	if err != nil {
		return err
	}

	data := ExportData{Run: *meta, Frames: make([]ExportFrame, len(frames))}
	for i, f := range frames {
		ef := ExportFrame{Time: f.Time, Bodies: make([]ExportBody, len(f.Bodies))}
		for j, b := range f.Bodies {
			q := b.Orientation
			ef.Bodies[j] = ExportBody{
				ID:          uint32(b.ID),
				Kind:        b.Kind.String(),
				Position:    [3]float64{b.Position.X(), b.Position.Y(), b.Position.Z()},
				Orientation: [4]float64{q.W, q.V.X(), q.V.Y(), q.V.Z()},
			}
		}
		data.Frames[i] = ef
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
