package scene

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gltf-viewer/core"
	"gltf-viewer/internal/logging"
	"gltf-viewer/math"
)

var (
	// ErrNoPosition is returned for primitives without a POSITION attribute.
	ErrNoPosition = errors.New("gltf: primitive has no POSITION attribute")
	// ErrBadAccessor is returned when a primitive names an accessor the
	// document does not have.
	ErrBadAccessor = errors.New("gltf: accessor index out of range")
	// ErrBadIndex is returned when an element index addresses a vertex past
	// the end of the primitive.
	ErrBadIndex = errors.New("gltf: element index out of range")
)

// LoadOptions tunes LoadGLTF. The zero value is usable.
type LoadOptions struct {
	// Concurrency caps parallel image decodes; <= 0 means GOMAXPROCS.
	Concurrency int
	Logger      *zap.Logger
}

// Asset is a loaded glTF file: a node forest ready to attach to a scene plus
// the resources it references. Textures must be uploaded on the render
// goroutine before the first frame that draws the asset.
type Asset struct {
	ID       uuid.UUID
	Path     string
	Roots    []*Node
	Textures []*Texture // unique, in first-use order
	Meshes   []*Mesh
}

// BoundingBox is the union of the renderables' boxes with the roots placed
// at their own transforms. ok is false for an asset without geometry.
func (a *Asset) BoundingBox() (math.Box, bool) {
	return BoundsOf(a.Roots...)
}

// Renderables returns the visible mesh nodes of the asset.
func (a *Asset) Renderables() []*Node {
	return collectRenderables(a.Roots...)
}

// LoadGLTF opens a .glb or .gltf file and builds its default scene.
// Images decode in parallel; byte-identical images share one Texture.
// A primitive or image that fails to load is logged and skipped.
func LoadGLTF(ctx context.Context, path string, opts LoadOptions) (*Asset, error) {
	log := logging.OrNop(opts.Logger).With(zap.String("path", path))

	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	asset := &Asset{ID: uuid.New(), Path: path}

	imageTex, err := loadImages(ctx, doc, filepath.Dir(path), opts.Concurrency, log)
	if err != nil {
		return nil, err
	}
	texCache := make([]*Texture, len(doc.Textures))
	seen := make(map[*Texture]bool)
	for i, gt := range doc.Textures {
		if gt.Source == nil || *gt.Source >= len(imageTex) || imageTex[*gt.Source] == nil {
			continue
		}
		tex := imageTex[*gt.Source]
		texCache[i] = tex
		if !seen[tex] {
			seen[tex] = true
			asset.Textures = append(asset.Textures, tex)
		}
	}

	matCache := make([]*MaterialInstance, len(doc.Materials))
	for i, gm := range doc.Materials {
		matCache[i] = convertMaterial(gm, texCache, log)
	}

	meshPrims := make([][]*Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, prim, log)
			if err != nil {
				log.Warn("skipping primitive", zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
				continue
			}
			if prim.Material != nil && *prim.Material < len(matCache) {
				m.Material = matCache[*prim.Material]
			}
			meshPrims[mi] = append(meshPrims[mi], m)
			asset.Meshes = append(asset.Meshes, m)
		}
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		nodes[i] = convertNode(i, gn, meshPrims)
	}
	for i, gn := range doc.Nodes {
		for _, childIdx := range gn.Children {
			if childIdx < len(nodes) {
				nodes[i].AddChild(nodes[childIdx])
			}
		}
	}

	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, rootIdx := range doc.Scenes[*doc.Scene].Nodes {
			if rootIdx < len(nodes) {
				asset.Roots = append(asset.Roots, nodes[rootIdx])
			}
		}
	} else {
		// No default scene: every parentless node is a root.
		for _, n := range nodes {
			if n.Parent == nil {
				asset.Roots = append(asset.Roots, n)
			}
		}
	}

	log.Debug("gltf loaded",
		zap.Stringer("asset", asset.ID),
		zap.Int("roots", len(asset.Roots)),
		zap.Int("meshes", len(asset.Meshes)),
		zap.Int("textures", len(asset.Textures)),
	)
	return asset, nil
}

// loadImages returns one texture per document image, nil where the image
// could not be read or decoded.
func loadImages(ctx context.Context, doc *gltf.Document, dir string, concurrency int, log *zap.Logger) ([]*Texture, error) {
	out := make([]*Texture, len(doc.Images))

	// Read sequentially, then decode each distinct payload once.
	type job struct {
		name   string
		data   []byte
		images []int
	}
	byHash := make(map[uint64]*job)
	var jobs []*job
	for i, img := range doc.Images {
		data, err := imageBytes(doc, img, dir)
		if err != nil {
			log.Warn("skipping image", zap.Int("image", i), zap.Error(err))
			continue
		}
		h := hashBytes(data)
		if j, ok := byHash[h]; ok {
			j.images = append(j.images, i)
			continue
		}
		name := img.Name
		if name == "" {
			name = fmt.Sprintf("gltf_img_%d", i)
		}
		j := &job{name: name, data: data, images: []int{i}}
		byHash[h] = j
		jobs = append(jobs, j)
	}

	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, j := range jobs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tex, err := DecodeTexture(j.name, j.data)
			if err != nil {
				log.Warn("skipping image", zap.Ints("images", j.images), zap.Error(err))
				return nil
			}
			// Each job owns distinct slots of out.
			for _, i := range j.images {
				out[i] = tex
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("gltf images: %w", err)
	}
	return out, nil
}

func imageBytes(doc *gltf.Document, img *gltf.Image, dir string) ([]byte, error) {
	switch {
	case img.BufferView != nil:
		if *img.BufferView >= len(doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", *img.BufferView)
		}
		return modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
	case img.IsEmbeddedResource():
		return img.MarshalData()
	case img.URI != "":
		p, err := url.PathUnescape(img.URI)
		if err != nil {
			p = img.URI
		}
		return os.ReadFile(filepath.Join(dir, filepath.FromSlash(p)))
	}
	return nil, errors.New("image has no source")
}

func textureAt(cache []*Texture, idx int) *Texture {
	if idx < 0 || idx >= len(cache) {
		return nil
	}
	return cache[idx]
}

func convertMaterial(gm *gltf.Material, texCache []*Texture, log *zap.Logger) *MaterialInstance {
	mi := DefaultMaterial()
	mi.Name = gm.Name

	set := func(name string, v any) {
		if err := mi.SetParameter(name, v); err != nil {
			log.Warn("material parameter", zap.String("material", gm.Name), zap.Error(err))
		}
	}
	setTex := func(name string, idx int) {
		if tex := textureAt(texCache, idx); tex != nil {
			set(name, tex)
		}
	}

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		set(ParamBaseColor, core.Color{R: float32(cf[0]), G: float32(cf[1]), B: float32(cf[2]), A: float32(cf[3])})
		set(ParamMetallic, float32(pbr.MetallicFactorOrDefault()))
		set(ParamRoughness, float32(pbr.RoughnessFactorOrDefault()))
		if pbr.BaseColorTexture != nil {
			setTex(ParamBaseColorMap, pbr.BaseColorTexture.Index)
		}
		if pbr.MetallicRoughnessTexture != nil {
			setTex(ParamMetalRoughMap, pbr.MetallicRoughnessTexture.Index)
		}
	}
	if nt := gm.NormalTexture; nt != nil && nt.Index != nil {
		setTex(ParamNormalMap, *nt.Index)
		set(ParamNormalScale, float32(nt.ScaleOrDefault()))
	}
	if ot := gm.OcclusionTexture; ot != nil && ot.Index != nil {
		setTex(ParamOcclusionMap, *ot.Index)
	}
	if et := gm.EmissiveTexture; et != nil {
		setTex(ParamEmissiveMap, et.Index)
	}
	ef := gm.EmissiveFactor
	set(ParamEmissive, core.Color{R: float32(ef[0]), G: float32(ef[1]), B: float32(ef[2]), A: 1})
	set(ParamDoubleSided, gm.DoubleSided)
	if gm.AlphaMode == gltf.AlphaMask {
		set(ParamAlphaCutoff, float32(gm.AlphaCutoffOrDefault()))
	}
	if _, ok := gm.Extensions["KHR_materials_unlit"]; ok {
		set(ParamUnlit, true)
	}
	return mi
}

func convertNode(i int, gn *gltf.Node, meshPrims [][]*Mesh) *Node {
	name := gn.Name
	if name == "" {
		name = fmt.Sprintf("node_%d", i)
	}
	n := NewNode(name)

	if m := mgl64.Mat4(gn.MatrixOrDefault()); m != mgl64.Ident4() {
		n.SetTransformD(m)
	} else {
		t := gn.TranslationOrDefault()
		s := gn.ScaleOrDefault()
		r := gn.RotationOrDefault() // [x, y, z, w]
		n.SetPosition(math.NewVec3(float32(t[0]), float32(t[1]), float32(t[2])))
		n.SetScale(math.NewVec3(float32(s[0]), float32(s[1]), float32(s[2])))
		n.SetRotation(math.NewQuaternion(float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3])))
	}

	if gn.Mesh == nil || *gn.Mesh >= len(meshPrims) {
		return n
	}
	switch prims := meshPrims[*gn.Mesh]; len(prims) {
	case 0:
	case 1:
		n.Mesh = prims[0]
	default:
		for pi, p := range prims {
			n.AddChild(NewMeshNode(fmt.Sprintf("%s_prim%d", name, pi), p))
		}
	}
	return n
}

// loadGLTFPrimitive converts one glTF mesh primitive into a Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim *gltf.Primitive, log *zap.Logger) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}

	var mode DrawMode
	switch prim.Mode {
	case gltf.PrimitiveTriangles:
		mode = DrawTriangles
	case gltf.PrimitiveLines:
		mode = DrawLines
	case gltf.PrimitivePoints:
		mode = DrawPoints
	default:
		return nil, fmt.Errorf("unsupported primitive mode %v", prim.Mode)
	}

	posIdx, ok := prim.Attributes["POSITION"]
	if !ok || posIdx < 0 || posIdx >= len(doc.Accessors) {
		return nil, ErrNoPosition
	}
	posAcc := doc.Accessors[posIdx]
	positions, err := modeler.ReadPosition(doc, posAcc, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	accessor := func(attr string) (*gltf.Accessor, error) {
		idx, ok := prim.Attributes[attr]
		if !ok {
			return nil, nil
		}
		if idx < 0 || idx >= len(doc.Accessors) {
			return nil, fmt.Errorf("%s accessor %d: %w", attr, idx, ErrBadAccessor)
		}
		return doc.Accessors[idx], nil
	}
	normalAcc, err := accessor("NORMAL")
	if err != nil {
		return nil, err
	}
	uvAcc, err := accessor("TEXCOORD_0")
	if err != nil {
		return nil, err
	}
	colorAcc, err := accessor("COLOR_0")
	if err != nil {
		return nil, err
	}

	// Optional attributes that fail to decode fall back to defaults.
	var normals [][3]float32
	var uvs [][2]float32
	var colors [][4]uint8
	if normalAcc != nil {
		if normals, err = modeler.ReadNormal(doc, normalAcc, nil); err != nil {
			log.Warn("ignoring normals", zap.String("mesh", name), zap.Error(err))
		}
	}
	if uvAcc != nil {
		if uvs, err = modeler.ReadTextureCoord(doc, uvAcc, nil); err != nil {
			log.Warn("ignoring texture coordinates", zap.String("mesh", name), zap.Error(err))
		}
	}
	if colorAcc != nil {
		if colors, err = modeler.ReadColor(doc, colorAcc, nil); err != nil {
			log.Warn("ignoring vertex colors", zap.String("mesh", name), zap.Error(err))
		}
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.NewVec3(p[0], p[1], p[2]),
			Normal:   math.Vec3Up,
			Color:    core.ColorWhite,
		}
		if i < len(normals) {
			v.Normal = math.NewVec3(normals[i][0], normals[i][1], normals[i][2])
		}
		if i < len(uvs) {
			v.UV = math.NewVec2(uvs[i][0], uvs[i][1])
		}
		if i < len(colors) {
			c := colors[i]
			v.Color = core.Color{R: float32(c[0]) / 255, G: float32(c[1]) / 255, B: float32(c[2]) / 255, A: float32(c[3]) / 255}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		idx := *prim.Indices
		if idx < 0 || idx >= len(doc.Accessors) {
			return nil, fmt.Errorf("indices accessor %d: %w", idx, ErrBadAccessor)
		}
		indices, err = modeler.ReadIndices(doc, doc.Accessors[idx], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
		for _, i := range indices {
			if int(i) >= len(verts) {
				return nil, fmt.Errorf("index %d with %d vertices: %w", i, len(verts), ErrBadIndex)
			}
		}
	}

	m := CreateMeshFromData(name, verts, indices)
	m.DrawMode = mode

	// The POSITION accessor is required to carry min/max; prefer the
	// authored bounds when they are well-formed.
	if box, ok, err := accessorBox(posAcc); err != nil {
		log.Warn("ignoring accessor bounds", zap.String("mesh", name), zap.Error(err))
	} else if ok {
		m.SetLocalBox(box)
	}
	return m, nil
}

// accessorBox reads a vec3 accessor's min/max as a Box. ok is false when the
// accessor has no bounds.
func accessorBox(acc *gltf.Accessor) (box math.Box, ok bool, err error) {
	if len(acc.Min) != 3 || len(acc.Max) != 3 {
		return math.Box{}, false, nil
	}
	var lo, hi [3]float32
	for i := range 3 {
		lo[i] = float32(acc.Min[i])
		hi[i] = float32(acc.Max[i])
	}
	box, err = math.NewBoxChecked(math.NewVec3(lo[0], lo[1], lo[2]), math.NewVec3(hi[0], hi[1], hi[2]))
	if err != nil {
		return math.Box{}, false, err
	}
	return box, true, nil
}
