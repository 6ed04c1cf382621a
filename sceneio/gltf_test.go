package sceneio

import (
	"os"
	"path/filepath"
	"testing"

	"pathtracer/rendererror"
	"pathtracer/scene"
)

// testGLTF is a minimal single-triangle document: one buffer holding 3
// packed float32 VEC3 positions (embedded as a base64 data URI so the
// test needs no sibling .bin file), one mesh primitive referencing it,
// one material, and a scene with a single root node.
const testGLTF = `{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0}],
  "meshes": [{
    "name": "tri",
    "primitives": [{
      "attributes": {"POSITION": 0},
      "material": 0
    }]
  }],
  "materials": [{
    "name": "red",
    "pbrMetallicRoughness": {
      "baseColorFactor": [1, 0, 0, 1],
      "roughnessFactor": 0.5,
      "metallicFactor": 0.2
    }
  }],
  "accessors": [{
    "bufferView": 0,
    "componentType": 5126,
    "count": 3,
    "type": "VEC3",
    "min": [0, 0, 0],
    "max": [1, 1, 0]
  }],
  "bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": 36}],
  "buffers": [{
    "byteLength": 36,
    "uri": "data:application/octet-stream;base64,AAAAAAAAAAAAAAAAAACAPwAAAAAAAAAAAAAAAAAAgD8AAAAA"
  }]
}`

func writeTempGLTF(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.gltf")
	if err := os.WriteFile(path, []byte(testGLTF), 0o644); err != nil {
		t.Fatalf("write gltf: %v", err)
	}
	return path
}

func TestLoadGLTFAddsMeshAndMaterial(t *testing.T) {
	path := writeTempGLTF(t)
	var sc scene.Scene
	meshes, err := LoadGLTF(path, &sc)
	if err != nil {
		t.Fatalf("LoadGLTF: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 primitive, got %d", len(meshes))
	}
	if meshes[0].MaterialName != "red" {
		t.Errorf("material name = %q, want %q", meshes[0].MaterialName, "red")
	}

	mesh := sc.Meshes[meshes[0].MeshIndex]
	if len(mesh.Positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(mesh.Positions))
	}
	if mesh.FaceCount() != 1 {
		t.Errorf("expected 1 face, got %d", mesh.FaceCount())
	}

	mat := sc.Materials[0]
	if mat.Kd.X != 1 || mat.Kd.Y != 0 || mat.Kd.Z != 0 {
		t.Errorf("Kd = %+v, want (1, 0, 0)", mat.Kd)
	}
}

func TestLoadGLTFMissingFileIsInputMalformed(t *testing.T) {
	var sc scene.Scene
	_, err := LoadGLTF(filepath.Join(t.TempDir(), "missing.gltf"), &sc)
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if !rendererror.Is(err, rendererror.InputMalformed) {
		t.Errorf("expected an InputMalformed error, got %v", err)
	}
}
