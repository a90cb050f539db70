package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-diffuse-pathtracer/pkg/core"
	"github.com/df07/go-diffuse-pathtracer/pkg/geometry"
	"github.com/df07/go-diffuse-pathtracer/pkg/renderer"
	"github.com/df07/go-diffuse-pathtracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection.
// Positions are in view space: camera at the origin looking down +Z.
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	GeometryType string         `json:"geometryType,omitempty"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	Material     *MaterialInfo  `json:"material,omitempty"`
	Geometry     map[string]any `json:"geometry,omitempty"`
}

// MaterialInfo describes the material of an inspected surface
type MaterialInfo struct {
	Color     string     `json:"color"` // #rrggbb
	Albedo    [3]float64 `json:"albedo"`
	Metalness float64    `json:"metalness"`
}

// InspectResult contains the hit and the primitive that produced it
type InspectResult struct {
	Hit       bool
	Ray       core.Ray
	HitRecord core.Hit
	Primitive core.Primitive
}

// inspectPixel casts an unjittered ray through the center of pixel (x, y).
// The scene must already be preprocessed.
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) InspectResult {
	camera := renderer.NewCamera(width, height)
	ray := core.NewRay(core.NewVec3(0, 0, 0), camera.RayDirection(pixelX, pixelY, 0.5, 0.5)).Normalized()

	hit, ok := sceneObj.FindClosest(ray)
	if !ok {
		return InspectResult{Ray: ray}
	}

	// FindClosest reports the hit, not the primitive; find the one that agrees
	for _, p := range sceneObj.Primitives {
		if h, isHit := p.Intersect(ray); isHit && h.T == hit.T {
			return InspectResult{Hit: true, Ray: ray, HitRecord: hit, Primitive: p}
		}
	}
	return InspectResult{Hit: true, Ray: ray, HitRecord: hit}
}

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func channelByte(v float64) int {
	return int(max(0, min(1, v)) * 255)
}

func extractMaterialInfo(mat core.Material) *MaterialInfo {
	c := mat.Color
	return &MaterialInfo{
		Color:     fmt.Sprintf("#%02x%02x%02x", channelByte(c.R), channelByte(c.G), channelByte(c.B)),
		Albedo:    [3]float64{c.R, c.G, c.B},
		Metalness: mat.Metalness,
	}
}

// extractGeometryInfo extracts detailed geometry information
func extractGeometryInfo(p core.Primitive) (string, map[string]any) {
	properties := make(map[string]any)

	switch geom := p.(type) {
	case *geometry.Sphere:
		properties["center"] = vecArray(geom.Center)
		properties["radius"] = geom.Radius
		return "sphere", properties

	case *geometry.Plane:
		properties["point"] = vecArray(geom.Point)
		properties["normal"] = vecArray(geom.Normal)
		return "plane", properties

	case *geometry.Triangle:
		properties["vertices"] = [3][3]float64{vecArray(geom.A), vecArray(geom.B), vecArray(geom.C)}
		return "triangle", properties

	default:
		return "unknown", properties
	}
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	inspectReq := &RenderRequest{}
	if err := s.parseCommonSceneParams(r, inspectReq); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= inspectReq.Width || pixelY < 0 || pixelY >= inspectReq.Height {
		s.writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	sceneObj, err := s.loadScene(inspectReq.Scene)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := inspectPixel(sceneObj, inspectReq.Width, inspectReq.Height, pixelX, pixelY)
	if !result.Hit {
		s.writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	geometryType, geometryProps := extractGeometryInfo(result.Primitive)
	s.writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		GeometryType: geometryType,
		Point:        vecArray(result.Ray.At(result.HitRecord.T)),
		Normal:       vecArray(result.HitRecord.Normal),
		Distance:     result.HitRecord.T,
		Material:     extractMaterialInfo(result.HitRecord.Material),
		Geometry:     geometryProps,
	})
}
