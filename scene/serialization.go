package scene

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"gltf-viewer/math"
)

type vec3Doc [3]float32

func toVec3Doc(v math.Vec3) vec3Doc {
	return vec3Doc{v.X, v.Y, v.Z}
}

// NodeBounds is one renderable's world box.
type NodeBounds struct {
	Name string  `yaml:"name" json:"name"`
	Min  vec3Doc `yaml:"min,flow" json:"min"`
	Max  vec3Doc `yaml:"max,flow" json:"max"`
}

type BoxDoc struct {
	Min        vec3Doc `yaml:"min,flow" json:"min"`
	Max        vec3Doc `yaml:"max,flow" json:"max"`
	Center     vec3Doc `yaml:"center,flow" json:"center"`
	HalfExtent vec3Doc `yaml:"half_extent,flow" json:"half_extent"`
}

type SphereDoc struct {
	Center vec3Doc `yaml:"center,flow" json:"center"`
	Radius float32 `yaml:"radius" json:"radius"`
}

// BoundsReport summarises the geometry of a loaded asset. Box and Sphere are
// nil when the asset has no geometry.
type BoundsReport struct {
	Path     string       `yaml:"path" json:"path"`
	ID       string       `yaml:"id,omitempty" json:"id,omitempty"`
	Meshes   int          `yaml:"meshes" json:"meshes"`
	Textures int          `yaml:"textures" json:"textures"`
	Nodes    []NodeBounds `yaml:"nodes" json:"nodes"`
	Box      *BoxDoc      `yaml:"box,omitempty" json:"box,omitempty"`
	Sphere   *SphereDoc   `yaml:"sphere,omitempty" json:"sphere,omitempty"`
}

func NewBoundsReport(a *Asset) BoundsReport {
	r := BoundsReport{
		Path:     a.Path,
		Meshes:   len(a.Meshes),
		Textures: len(a.Textures),
		Nodes:    make([]NodeBounds, 0),
	}
	if a.ID != uuid.Nil {
		r.ID = a.ID.String()
	}

	for _, n := range a.Renderables() {
		box, ok := n.WorldBox()
		if !ok {
			continue
		}
		r.Nodes = append(r.Nodes, NodeBounds{
			Name: n.Label(),
			Min:  toVec3Doc(box.Min()),
			Max:  toVec3Doc(box.Max()),
		})
	}

	if box, ok := a.BoundingBox(); ok {
		r.Box = &BoxDoc{
			Min:        toVec3Doc(box.Min()),
			Max:        toVec3Doc(box.Max()),
			Center:     toVec3Doc(box.Center),
			HalfExtent: toVec3Doc(box.HalfExtent),
		}
		s := box.BoundingSphere()
		r.Sphere = &SphereDoc{Center: toVec3Doc(s.Center), Radius: s.Radius}
	}
	return r
}

// Encode writes the report as "yaml" or "json".
func (r BoundsReport) Encode(w io.Writer, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode bounds: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encode bounds: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
