// pathtrace renders a scene directory ("./scenes/<name>/<name>.obj" plus
// its ".xml" sidecar) with either the unidirectional path integrator or
// BDPT, writing an HDR EXR, a tonemapped PNG, and albedo/normal AOVs.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"pathtracer/imageio"
	"pathtracer/render"
	"pathtracer/rendererror"
	"pathtracer/rlog"
	"pathtracer/scene"
	"pathtracer/sceneio"
)

var (
	threads  = flag.Int("threads", runtime.NumCPU(), "thread pool size")
	threadsT = flag.Int("t", 0, "alias for -threads")
	spp      = flag.Int("spp", 64, "samples per pixel")
	sppS     = flag.Int("s", 0, "alias for -spp")
	noGUI    = flag.Bool("no-gui", false, "disable on-screen viewer")
	useBDPT  = flag.Bool("bdpt", false, "select the BDPT integrator (default: unidirectional path integrator)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "pathtrace - offline physically-based renderer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: pathtrace [options] <scene>\n\n")
		fmt.Fprintf(os.Stderr, "<scene> resolves to ./scenes/<scene>/<scene>.obj and .xml\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(-1)
	}
	sceneName := flag.Arg(0)

	cfg := render.Config{
		Threads: firstNonZero(*threadsT, *threads),
		SPP:     firstNonZero(*sppS, *spp),
		UseBDPT: *useBDPT,
	}
	_ = *noGUI // no on-screen viewer is implemented; the flag is accepted for CLI compatibility

	if err := run(sceneName, cfg); err != nil {
		rlog.Error("render failed", "error", err)
		fmt.Fprintf(os.Stderr, "pathtrace: %v\n", err)
		if rendererror.Is(err, rendererror.ConfigInvalid) {
			os.Exit(-1)
		}
		os.Exit(1)
	}
}

func firstNonZero(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}

// resolveMeshPath picks which of a scene directory's mesh files to load:
// glTF takes priority over OBJ when both a ".gltf"/".glb" and a ".obj"
// file exist for the same scene name, since a binary glTF is the more
// complete asset (it can carry materials and node transforms the
// Wavefront sidecar can't).
func resolveMeshPath(dir, sceneName string) string {
	for _, ext := range []string{".gltf", ".glb"} {
		p := filepath.Join(dir, sceneName+ext)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return filepath.Join(dir, sceneName+".obj")
}

func run(sceneName string, cfg render.Config) error {
	dir := filepath.Join("scenes", sceneName)
	meshPath := resolveMeshPath(dir, sceneName)
	xmlPath := filepath.Join(dir, sceneName+".xml")

	var sc scene.Scene
	var meshes []sceneio.LoadedMesh
	var err error
	switch filepath.Ext(meshPath) {
	case ".gltf", ".glb":
		meshes, err = sceneio.LoadGLTF(meshPath, &sc)
	default:
		meshes, err = sceneio.LoadOBJ(meshPath, &sc)
	}
	if err != nil {
		return err
	}

	cfgXML, err := sceneio.LoadSceneXML(xmlPath)
	if err != nil {
		return err
	}
	sc.Preprocess(sceneio.ResolveEmission(cfgXML, meshes))

	rlog.Info("scene loaded", "scene", sceneName, "meshes", len(sc.Meshes), "materials", len(sc.Materials))

	result, err := render.Run(&sc, cfgXML.Camera, cfg)
	if err != nil {
		return err
	}

	if err := imageio.WriteEXR(filepath.Join(dir, "result.exr"), result.Beauty); err != nil {
		return err
	}
	if err := imageio.WritePNG(filepath.Join(dir, "result.png"), result.Beauty); err != nil {
		return err
	}
	if err := imageio.WriteEXR(filepath.Join(dir, "albedo.exr"), result.Albedo); err != nil {
		return err
	}
	if err := imageio.WriteEXR(filepath.Join(dir, "normal.exr"), result.Normal); err != nil {
		return err
	}
	return nil
}
