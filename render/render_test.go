package render

import (
	"math"
	"testing"

	"pathtracer/camera"
	"pathtracer/geom"
	"pathtracer/imageio"
	"pathtracer/scene"
)

func testScene() *scene.Scene {
	var s scene.Scene
	s.AddMesh(&scene.Mesh{
		Positions: []geom.Vec3{
			{X: -5, Y: 0, Z: -5}, {X: 5, Y: 0, Z: -5}, {X: 5, Y: 0, Z: 5}, {X: -5, Y: 0, Z: 5},
		},
		Indices:     [][3]uint32{{0, 2, 1}, {0, 3, 2}},
		MaterialIDs: []uint32{0, 0},
	})
	s.AddMaterial(&scene.Material{Kd: geom.Vec3{X: 0.7, Y: 0.7, Z: 0.7}})

	lightIdx := s.AddMesh(&scene.Mesh{
		Positions: []geom.Vec3{
			{X: -1, Y: 4, Z: -1}, {X: 1, Y: 4, Z: -1}, {X: 1, Y: 4, Z: 1}, {X: -1, Y: 4, Z: 1},
		},
		Indices:     [][3]uint32{{0, 1, 2}, {0, 2, 3}},
		MaterialIDs: []uint32{0, 0},
	})
	s.AddMaterial(&scene.Material{})
	s.Preprocess(map[int]geom.Vec3{lightIdx: {X: 10, Y: 10, Z: 10}})
	return &s
}

func testCamera() *camera.Camera {
	return camera.New(16, 16, 50, geom.Vec3{X: 0, Y: 2, Z: -8}, geom.Vec3{X: 0, Y: 1, Z: 0}, geom.Vec3Up)
}

func TestRunPathProducesFiniteImage(t *testing.T) {
	res, err := Run(testScene(), testCamera(), Config{Threads: 2, SPP: 4})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	assertFinite(t, res.Beauty)
	assertFinite(t, res.Albedo)
	assertFinite(t, res.Normal)
}

func TestRunBDPTProducesFiniteImage(t *testing.T) {
	res, err := Run(testScene(), testCamera(), Config{Threads: 2, SPP: 4, UseBDPT: true, MaxDepth: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	assertFinite(t, res.Beauty)
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	if _, err := Run(testScene(), testCamera(), Config{Threads: 0, SPP: 4}); err == nil {
		t.Error("expected an error for zero threads")
	}
	if _, err := Run(testScene(), testCamera(), Config{Threads: 1, SPP: 0}); err == nil {
		t.Error("expected an error for zero spp")
	}
}

func assertFinite(t *testing.T, img *imageio.HDRImage) {
	t.Helper()
	for i, v := range img.Pixels {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			t.Fatalf("non-finite pixel value at index %d: %v", i, v)
		}
		if v < 0 {
			t.Fatalf("negative pixel value at index %d: %v", i, v)
		}
	}
}
