package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"sphere-row", "Sphere Row"},
		{"purple_triangle", "Purple Triangle"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func writeScene(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestParseSceneMetadata(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name:    "complete_metadata.yaml",
			content: "name: Two Spheres\ndescription: Two spheres on a plane\ngroup: Examples\ncamera: {direction: [0, 0, 1]}\n",
			expected: SceneInfo{
				ID:          "file:complete_metadata",
				Name:        "Two Spheres",
				DisplayName: "Two Spheres",
				Description: "Two spheres on a plane",
				Group:       "Examples",
				Type:        "file",
			},
		},
		{
			name:    "no-metadata.yml",
			content: "camera: {direction: [0, 0, 1]}\n",
			expected: SceneInfo{
				ID:          "file:no-metadata",
				Name:        "No Metadata",
				DisplayName: "No Metadata",
				Group:       "Scene Files",
				Type:        "file",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeScene(t, dir, tc.name, tc.content)
			tc.expected.FilePath = path

			result, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata() error: %v", err)
			}
			if result != tc.expected {
				t.Errorf("ParseSceneMetadata() = %+v, want %+v", result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata_InvalidFile(t *testing.T) {
	if _, err := ParseSceneMetadata("nonexistent.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}

	path := writeScene(t, t.TempDir(), "broken.yaml", "name: [unterminated\n")
	info, err := ParseSceneMetadata(path)
	if err == nil {
		t.Error("Expected error for malformed YAML")
	}
	if info.ID != "file:broken" {
		t.Errorf("Expected fallback ID, got %q", info.ID)
	}
}

func TestListScenes(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "b.yaml", "name: Bravo\n")
	writeScene(t, dir, "a.yml", "name: Alpha\n")
	writeScene(t, dir, "broken.yaml", "name: [unterminated\n")
	writeScene(t, dir, "notes.txt", "not a scene")

	scenes, err := ListScenes(dir)
	if err != nil {
		t.Fatalf("ListScenes() error: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scenes, got %d: %+v", len(scenes), scenes)
	}
	if scenes[0].DisplayName != "Alpha" || scenes[1].DisplayName != "Bravo" {
		t.Errorf("Scenes not sorted by display name: %+v", scenes)
	}
}

func TestListScenes_MissingDirectory(t *testing.T) {
	scenes, err := ListScenes(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Errorf("ListScenes() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", scenes)
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	writeScene(t, dir, "extra.yaml", "name: Extra\ngroup: Examples\n")

	response, err := ListAllScenes(dir)
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}
	if len(response.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(response.Groups))
	}

	builtIn := response.Groups[0]
	if builtIn.Name != "Built-in Scenes" {
		t.Errorf("First group = %q, want Built-in Scenes", builtIn.Name)
	}
	expectedScenes := []string{"default", "triangle", "single-sphere"}
	if len(builtIn.Scenes) != len(expectedScenes) {
		t.Fatalf("Built-in scenes count = %d, want %d", len(builtIn.Scenes), len(expectedScenes))
	}
	for i, id := range expectedScenes {
		if builtIn.Scenes[i].ID != id {
			t.Errorf("Built-in scene %d = %q, want %q", i, builtIn.Scenes[i].ID, id)
		}
		if builtIn.Scenes[i].Type != "builtin" {
			t.Errorf("Built-in scene %q has type %q", id, builtIn.Scenes[i].Type)
		}
	}

	if response.Groups[1].Name != "Examples" || response.Groups[1].Scenes[0].ID != "file:extra" {
		t.Errorf("Unexpected file group: %+v", response.Groups[1])
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := writeScene(t, dir, "probe.yaml", "camera: {direction: [0, 0, 1]}\nprimitives:\n  - type: sphere\n    center: [0, 0, 5]\n    radius: 1\n")

	tests := []struct {
		ref         string
		expectError bool
		expectName  string
	}{
		{ref: "default", expectName: "default"},
		{ref: "file:probe", expectName: "probe"},
		{ref: path, expectName: "probe"},
		{ref: "file:missing", expectError: true},
		{ref: "file:../probe", expectError: true},
		{ref: "no-such-scene", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			s, err := Open(tt.ref, dir)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open(%q) error: %v", tt.ref, err)
			}
			if s.Name != tt.expectName {
				t.Errorf("Name = %q, want %q", s.Name, tt.expectName)
			}
		})
	}
}
