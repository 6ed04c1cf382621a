package sceneio

import (
	"encoding/xml"
	"fmt"
	"os"

	"pathtracer/camera"
	"pathtracer/geom"
	"pathtracer/rendererror"
)

// sceneXML mirrors the sidecar's element layout: camera parameters plus
// a flat list of light entries mapping a material name to an emitted
// radiance triple, as named in the mesh's accompanying ".xml" file.
type sceneXML struct {
	XMLName xml.Name     `xml:"scene"`
	Camera  cameraXML    `xml:"camera"`
	Lights  []lightEntry `xml:"lights>light"`
}

type cameraXML struct {
	Width  int     `xml:"width,attr"`
	Height int     `xml:"height,attr"`
	FovY   float32 `xml:"fovY,attr"`
	Eye    vec3XML `xml:"eye"`
	LookAt vec3XML `xml:"lookAt"`
	Up     vec3XML `xml:"up"`
}

type vec3XML struct {
	X float32 `xml:"x,attr"`
	Y float32 `xml:"y,attr"`
	Z float32 `xml:"z,attr"`
}

func (v vec3XML) toVec3() geom.Vec3 { return geom.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// lightEntry binds a material name (as used by "usemtl" in the sibling
// OBJ/MTL) to the radiance it emits.
type lightEntry struct {
	Material string  `xml:"material,attr"`
	R        float32 `xml:"r,attr"`
	G        float32 `xml:"g,attr"`
	B        float32 `xml:"b,attr"`
}

// SceneConfig is the parsed result of a scene's ".xml" sidecar: a ready
// camera.Camera plus the material-name -> emitted-radiance table the
// caller resolves against sceneio.LoadedMesh.MaterialName to build the
// mesh-index -> radiance map scene.Scene.Preprocess expects.
type SceneConfig struct {
	Camera    *camera.Camera
	Emissions map[string]geom.Vec3
}

// LoadSceneXML parses a scene's camera and light-entry sidecar.
func LoadSceneXML(path string) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rendererror.Wrap(rendererror.InputMalformed, "sceneio.LoadSceneXML: read", err)
	}

	var parsed sceneXML
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return nil, rendererror.Wrap(rendererror.InputMalformed, "sceneio.LoadSceneXML: unmarshal", err)
	}
	if parsed.Camera.Width <= 0 || parsed.Camera.Height <= 0 {
		return nil, rendererror.Wrap(rendererror.ConfigInvalid, "sceneio.LoadSceneXML",
			fmt.Errorf("camera width/height must be positive, got %dx%d", parsed.Camera.Width, parsed.Camera.Height))
	}

	cam := camera.New(parsed.Camera.Width, parsed.Camera.Height, parsed.Camera.FovY,
		parsed.Camera.Eye.toVec3(), parsed.Camera.LookAt.toVec3(), parsed.Camera.Up.toVec3())

	emissions := make(map[string]geom.Vec3, len(parsed.Lights))
	for _, l := range parsed.Lights {
		emissions[l.Material] = geom.Vec3{X: l.R, Y: l.G, Z: l.B}
	}

	return &SceneConfig{Camera: cam, Emissions: emissions}, nil
}

// ResolveEmission maps a SceneConfig's material-name emission table onto
// the mesh indices LoadOBJ (or LoadGLTF) returned, producing the
// mesh-index -> radiance map scene.Scene.Preprocess requires.
func ResolveEmission(cfg *SceneConfig, meshes []LoadedMesh) map[int]geom.Vec3 {
	out := map[int]geom.Vec3{}
	for _, m := range meshes {
		if rad, ok := cfg.Emissions[m.MaterialName]; ok {
			out[m.MeshIndex] = rad
		}
	}
	return out
}
