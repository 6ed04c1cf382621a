// Package sceneio loads scene geometry and the camera/light sidecar into
// a scene.Scene: a Wavefront OBJ/MTL text parser, a glTF path via
// github.com/qmuntal/gltf, and an XML sidecar for camera pose and the
// material-name-to-emission list.
package sceneio

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"pathtracer/geom"
	"pathtracer/rendererror"
	"pathtracer/scene"
)

// vertexKey dedups (position, normal, uv) index triples the way OBJ faces
// reference them, so shared vertices collapse into a single scene.Mesh
// entry instead of being duplicated per face.
type vertexKey struct {
	p, n, t int
}

// objGroup accumulates one OBJ "o"/"g" group into the flat arrays
// scene.Mesh expects, plus the name of the material last selected by
// "usemtl" for each face — used by the XML loader to resolve which
// groups are emissive.
type objGroup struct {
	name      string
	mesh      scene.Mesh
	faceMat   []string
	vertexMap map[vertexKey]uint32
}

// LoadedMesh is one OBJ group after loading: its scene.Mesh index within
// sc, and the material name its faces predominantly use (this loader
// assumes one material per group, matching how Cornell-box-style test
// scenes are authored — a group with mixed materials keeps its first
// face's name here and the rest are still recorded correctly in
// Mesh.MaterialIDs).
type LoadedMesh struct {
	MeshIndex    int
	MaterialName string
}

// LoadOBJ parses path (and any "mtllib" it references) into sc, adding
// one scene.Mesh per OBJ group and one scene.Material per MTL material.
func LoadOBJ(path string, sc *scene.Scene) ([]LoadedMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, rendererror.Wrap(rendererror.InputMalformed, "sceneio.LoadOBJ: open", err)
	}
	defer f.Close()

	var positions, normals []geom.Vec3
	var uvs []geom.Vec2
	materialIDs := map[string]uint32{}

	newGroup := func(name string) *objGroup {
		return &objGroup{name: name, vertexMap: map[vertexKey]uint32{}}
	}
	groups := []*objGroup{newGroup("default")}
	current := groups[0]
	currentMaterial := ""

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)

		switch parts[0] {
		case "v":
			if len(parts) < 4 {
				continue
			}
			x, _ := strconv.ParseFloat(parts[1], 32)
			y, _ := strconv.ParseFloat(parts[2], 32)
			z, _ := strconv.ParseFloat(parts[3], 32)
			positions = append(positions, geom.Vec3{X: float32(x), Y: float32(y), Z: float32(z)})

		case "vn":
			if len(parts) < 4 {
				continue
			}
			x, _ := strconv.ParseFloat(parts[1], 32)
			y, _ := strconv.ParseFloat(parts[2], 32)
			z, _ := strconv.ParseFloat(parts[3], 32)
			normals = append(normals, geom.Vec3{X: float32(x), Y: float32(y), Z: float32(z)})

		case "vt":
			if len(parts) < 3 {
				continue
			}
			u, _ := strconv.ParseFloat(parts[1], 32)
			v, _ := strconv.ParseFloat(parts[2], 32)
			uvs = append(uvs, geom.Vec2{X: float32(u), Y: float32(v)})

		case "f":
			faceVerts := make([]uint32, 0, len(parts)-1)
			for _, token := range parts[1:] {
				key, err := parseFaceVertex(token, len(positions), len(normals), len(uvs))
				if err != nil {
					return nil, rendererror.Wrap(rendererror.InputMalformed,
						fmt.Sprintf("sceneio.LoadOBJ: line %d", lineNo), err)
				}
				if idx, ok := current.vertexMap[key]; ok {
					faceVerts = append(faceVerts, idx)
					continue
				}
				idx := uint32(len(current.mesh.Positions))
				current.mesh.Positions = append(current.mesh.Positions, positions[key.p])
				if key.n >= 0 {
					current.mesh.Normals = append(current.mesh.Normals, normals[key.n])
				}
				if key.t >= 0 {
					current.mesh.UVs = append(current.mesh.UVs, uvs[key.t])
				}
				current.vertexMap[key] = idx
				faceVerts = append(faceVerts, idx)
			}
			for i := 2; i < len(faceVerts); i++ {
				current.mesh.Indices = append(current.mesh.Indices, [3]uint32{faceVerts[0], faceVerts[i-1], faceVerts[i]})
				current.faceMat = append(current.faceMat, currentMaterial)
			}

		case "o", "g":
			name := "unnamed"
			if len(parts) > 1 {
				name = parts[1]
			}
			g := newGroup(name)
			groups = append(groups, g)
			current = g

		case "usemtl":
			if len(parts) > 1 {
				currentMaterial = parts[1]
			}

		case "mtllib":
			if len(parts) > 1 {
				mtlPath := filepath.Join(filepath.Dir(path), parts[1])
				mats, err := LoadMTL(mtlPath)
				if err != nil {
					return nil, err
				}
				for name, m := range mats {
					materialIDs[name] = uint32(sc.AddMaterial(m))
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, rendererror.Wrap(rendererror.InputMalformed, "sceneio.LoadOBJ: scan", err)
	}

	defaultMaterial := uint32(sc.AddMaterial(&scene.Material{Kd: geom.Vec3{X: 0.6, Y: 0.6, Z: 0.6}}))

	var loaded []LoadedMesh
	for _, g := range groups {
		if len(g.mesh.Positions) == 0 {
			continue
		}
		hasNormals := len(g.mesh.Normals) == len(g.mesh.Positions)
		if !hasNormals {
			g.mesh.Normals = nil
		}
		hasUVs := len(g.mesh.UVs) == len(g.mesh.Positions)
		if !hasUVs {
			g.mesh.UVs = nil
		}

		g.mesh.MaterialIDs = make([]uint32, len(g.faceMat))
		matName := ""
		for i, name := range g.faceMat {
			id, ok := materialIDs[name]
			if !ok {
				id = defaultMaterial
			} else if matName == "" {
				matName = name
			}
			g.mesh.MaterialIDs[i] = id
		}

		idx := sc.AddMesh(&g.mesh)
		loaded = append(loaded, LoadedMesh{MeshIndex: idx, MaterialName: matName})
	}
	return loaded, nil
}

// parseFaceVertex parses one "v", "v/vt", "v//vn" or "v/vt/vn" OBJ face
// token into 0-based (position, normal, uv) indices, -1 where absent.
// OBJ indices are 1-based and may be negative (relative to the current
// count); both forms are resolved here.
func parseFaceVertex(token string, numPos, numNorm, numUV int) (vertexKey, error) {
	fields := strings.Split(token, "/")
	resolve := func(s string, count int) (int, error) {
		if s == "" {
			return -1, nil
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return -1, fmt.Errorf("bad face index %q: %w", s, err)
		}
		if i < 0 {
			i = count + i + 1
		}
		if i < 1 || i > count {
			return -1, fmt.Errorf("face index %d out of range (have %d)", i, count)
		}
		return i - 1, nil
	}

	key := vertexKey{n: -1, t: -1}
	var err error
	key.p, err = resolve(fields[0], numPos)
	if err != nil {
		return key, err
	}
	if len(fields) > 1 {
		if key.t, err = resolve(fields[1], numUV); err != nil {
			return key, err
		}
	}
	if len(fields) > 2 {
		if key.n, err = resolve(fields[2], numNorm); err != nil {
			return key, err
		}
	}
	return key, nil
}

// LoadMTL parses a Wavefront .mtl material library into Materials keyed
// by name. Kd/Ks map directly onto the modified-Phong diffuse/specular
// albedo; Ns is this renderer's literal Phong exponent (unlike a
// roughness-based shading model, no unit conversion applies). Ni/Tf/d are
// parsed into Material.IOR/Tr for parity with original_source's Material
// even though the core BSDF never reads them.
func LoadMTL(path string) (map[string]*scene.Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, rendererror.Wrap(rendererror.InputMalformed, "sceneio.LoadMTL: open", err)
	}
	defer f.Close()

	result := map[string]*scene.Material{}
	var current *scene.Material

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)

		switch parts[0] {
		case "newmtl":
			if len(parts) > 1 {
				current = &scene.Material{N: 1, IOR: 1, Tr: geom.Vec3{X: 1, Y: 1, Z: 1}}
				result[parts[1]] = current
			}
		case "Kd":
			if current != nil && len(parts) >= 4 {
				current.Kd = parseRGB(parts)
			}
		case "Ks":
			if current != nil && len(parts) >= 4 {
				current.Ks = parseRGB(parts)
			}
		case "Ns":
			if current != nil && len(parts) >= 2 {
				n, _ := strconv.ParseFloat(parts[1], 32)
				current.N = float32(n)
			}
		case "Ni":
			if current != nil && len(parts) >= 2 {
				ior, _ := strconv.ParseFloat(parts[1], 32)
				current.IOR = float32(ior)
			}
		case "Tf":
			if current != nil && len(parts) >= 4 {
				current.Tr = parseRGB(parts)
			}
		case "d":
			if current != nil && len(parts) >= 2 {
				dissolve, _ := strconv.ParseFloat(parts[1], 32)
				t := 1 - float32(dissolve)
				current.Tr = geom.Vec3{X: t, Y: t, Z: t}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, rendererror.Wrap(rendererror.InputMalformed, "sceneio.LoadMTL: scan", err)
	}
	return result, nil
}

func parseRGB(parts []string) geom.Vec3 {
	r, _ := strconv.ParseFloat(parts[1], 32)
	g, _ := strconv.ParseFloat(parts[2], 32)
	b, _ := strconv.ParseFloat(parts[3], 32)
	return geom.Vec3{X: float32(r), Y: float32(g), Z: float32(b)}
}
