package models

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/skelcull/pkg/culling"
	"github.com/taigrr/skelcull/pkg/math3d"
)

// ErrNoSkin is returned when a document has no skin to take a skeleton from.
var ErrNoSkin = errors.New("no skin in document")

// LoadSkeleton loads the first skin of a GLTF or GLB file.
func LoadSkeleton(path string) (*Skeleton, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return SkeletonFromDocument(doc, name)
}

// SkeletonFromDocument builds a skeleton from the first skin of doc.
//
// Joint positions come from the node hierarchy in its rest pose. The bounds
// cover every skinned mesh bound to that skin and every joint; a skin with no
// skinned geometry falls back to padded joint bounds.
func SkeletonFromDocument(doc *gltf.Document, name string) (*Skeleton, error) {
	if len(doc.Skins) == 0 {
		return nil, ErrNoSkin
	}
	skin := doc.Skins[0]
	if skin.Name != "" && name == "" {
		name = skin.Name
	}

	world := nodeWorldMatrices(doc)

	// node index -> joint index
	jointOf := make(map[int]int, len(skin.Joints))
	for i, n := range skin.Joints {
		if n < 0 || n >= len(doc.Nodes) {
			return nil, fmt.Errorf("skin joint %d references node %d of %d", i, n, len(doc.Nodes))
		}
		jointOf[n] = i
	}

	parentOf := make([]int, len(doc.Nodes))
	for i := range parentOf {
		parentOf[i] = -1
	}
	for i, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(parentOf) {
				parentOf[c] = i
			}
		}
	}

	sk := &Skeleton{Name: name, Joints: make([]Joint, len(skin.Joints))}
	for i, n := range skin.Joints {
		parent := -1
		// nearest ancestor that is also a joint
		for p := parentOf[n]; p >= 0; p = parentOf[p] {
			if j, ok := jointOf[p]; ok {
				parent = j
				break
			}
		}
		sk.Joints[i] = Joint{
			Name:     doc.Nodes[n].Name,
			Parent:   parent,
			Position: world[n].Translation(),
		}
	}

	bounds, ok, err := skinnedMeshBounds(doc, 0)
	if err != nil {
		return nil, err
	}
	joints := JointBounds(sk.Joints, 0)
	if ok {
		sk.Bounds = bounds.Union(joints)
	} else {
		sk.Bounds = JointBounds(sk.Joints, JointPadding)
	}
	return sk, nil
}

// nodeWorldMatrices returns the rest-pose world transform of every node.
func nodeWorldMatrices(doc *gltf.Document) []math3d.Mat4 {
	world := make([]math3d.Mat4, len(doc.Nodes))
	done := make([]bool, len(doc.Nodes))

	var visit func(i int, parent math3d.Mat4)
	visit = func(i int, parent math3d.Mat4) {
		if i < 0 || i >= len(doc.Nodes) || done[i] {
			return
		}
		done[i] = true
		world[i] = parent.Mul(localMatrix(doc.Nodes[i]))
		for _, c := range doc.Nodes[i].Children {
			visit(c, world[i])
		}
	}

	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	for i := range doc.Nodes {
		if !hasParent[i] {
			visit(i, math3d.Identity())
		}
	}
	return world
}

var identity16 = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

// localMatrix returns the node's matrix, or its TRS when no matrix is set.
// Unset rotation and scale take their identity defaults.
func localMatrix(n *gltf.Node) math3d.Mat4 {
	if n.Matrix != identity16 && n.Matrix != [16]float64{} {
		return math3d.Mat4(n.Matrix)
	}

	rot := n.Rotation
	if rot == [4]float64{} {
		rot = [4]float64{0, 0, 0, 1}
	}
	scale := n.Scale
	if scale == [3]float64{} {
		scale = [3]float64{1, 1, 1}
	}
	t := n.Translation
	return math3d.FromTRS(math3d.V3(t[0], t[1], t[2]), rot, math3d.V3(scale[0], scale[1], scale[2]))
}

// skinnedMeshBounds unions the POSITION bounds of every mesh on a node that
// uses skin. It reports false when no such mesh exists.
func skinnedMeshBounds(doc *gltf.Document, skin int) (culling.AABB, bool, error) {
	var (
		out   culling.AABB
		found bool
	)
	for _, n := range doc.Nodes {
		if n.Skin == nil || *n.Skin != skin || n.Mesh == nil || *n.Mesh >= len(doc.Meshes) {
			continue
		}
		for _, prim := range doc.Meshes[*n.Mesh].Primitives {
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}
			box, err := positionBounds(doc, posIdx)
			if err != nil {
				return culling.AABB{}, false, fmt.Errorf("mesh %q: %w", doc.Meshes[*n.Mesh].Name, err)
			}
			if found {
				out = out.Union(box)
			} else {
				out, found = box, true
			}
		}
	}
	return out, found, nil
}

// positionBounds returns the bounds of a POSITION accessor. The accessor's
// min and max are used when present; otherwise the data is scanned.
func positionBounds(doc *gltf.Document, accessorIdx int) (culling.AABB, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return culling.AABB{}, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	acc := doc.Accessors[accessorIdx]
	if len(acc.Min) == 3 && len(acc.Max) == 3 {
		return culling.FromMinMax(
			math3d.V3(acc.Min[0], acc.Min[1], acc.Min[2]),
			math3d.V3(acc.Max[0], acc.Max[1], acc.Max[2]),
		), nil
	}

	positions, err := readVec3Accessor(doc, accessorIdx)
	if err != nil {
		return culling.AABB{}, fmt.Errorf("read positions: %w", err)
	}
	if len(positions) == 0 {
		return culling.AABB{}, errors.New("empty position accessor")
	}
	lo, hi := positions[0], positions[0]
	for _, p := range positions[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return culling.FromMinMax(lo, hi), nil
}

// readVec3Accessor reads float VEC3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 {
		return nil, fmt.Errorf("expected VEC3, got %v", accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float components, got %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]math3d.Vec3, accessor.Count)
	for i := range result {
		b := data[i*stride:]
		result[i] = math3d.V3(readFloat32(b), readFloat32(b[4:]), readFloat32(b[8:]))
	}
	return result, nil
}

// accessorBytes returns the bytes backing accessor, starting at its first
// element, and the element stride.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, errors.New("accessor has no buffer view")
	}
	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]

	if buffer.Data == nil {
		// External buffers are resolved by gltf.Open; an empty one here
		// means the file was not loaded from disk.
		return nil, 0, errors.New("buffer has no data")
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	start := bufferView.ByteOffset + accessor.ByteOffset
	if accessor.Count == 0 {
		return nil, stride, nil
	}
	end := start + (accessor.Count-1)*stride + elemSize
	if start < 0 || end > len(buffer.Data) {
		return nil, 0, fmt.Errorf("accessor spans [%d, %d) of a %d byte buffer", start, end, len(buffer.Data))
	}
	return buffer.Data[start:end], stride, nil
}

// readFloat32 reads a little-endian float32.
func readFloat32(b []byte) float64 {
	return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
}
