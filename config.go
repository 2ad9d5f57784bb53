package twin

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds editor tuning shared by both renderers.
type Config struct {
	Background    string          `toml:"background"`
	ScreenshotDir string          `toml:"screenshot_dir"`
	Grid          GridConfig      `toml:"grid"`
	Viewport      ViewportConfig  `toml:"viewport"`
	Snap          SnapConfig      `toml:"snap"`
	Selection     SelectionConfig `toml:"selection"`
	Camera        CameraConfig    `toml:"camera"`
}

// GridConfig controls the background grid. Size is in scene pixels.
type GridConfig struct {
	Visible    bool    `toml:"visible"`
	Size       float64 `toml:"size"`
	MinSpacing float64 `toml:"min_spacing"`
	Color      string  `toml:"color"`
}

// ViewportConfig controls 2D pan and zoom.
type ViewportConfig struct {
	MinZoom        float64 `toml:"min_zoom"`
	MaxZoom        float64 `toml:"max_zoom"`
	ZoomStep       float64 `toml:"zoom_step"`
	PanOnEmptyDrag bool    `toml:"pan_on_empty_drag"`
	ScrollDuration float64 `toml:"scroll_duration"`
}

// SnapConfig rounds interactive transforms. Zero disables snapping.
type SnapConfig struct {
	Translation float64 `toml:"translation"`
	Rotation    float64 `toml:"rotation"`
}

// SelectionConfig styles the selection decoration.
type SelectionConfig struct {
	Color        string  `toml:"color"`
	HandleSize   float64 `toml:"handle_size"`
	RotateOffset float64 `toml:"rotate_offset"`
}

// CameraConfig configures the 3D camera and its controls. Distances and
// positions are in world units, angles in degrees.
type CameraConfig struct {
	Fov         float64 `toml:"fov"`
	Near        float64 `toml:"near"`
	Far         float64 `toml:"far"`
	Position    Vec3    `toml:"position"`
	Target      Vec3    `toml:"target"`
	MinDistance float64 `toml:"min_distance"`
	MaxDistance float64 `toml:"max_distance"`
	Damping     float64 `toml:"damping"`
	FlySpeed    float64 `toml:"fly_speed"`
	LookSpeed   float64 `toml:"look_speed"`
	FocusTime   float64 `toml:"focus_time"`
}

// DefaultConfig returns the built-in editor settings.
func DefaultConfig() Config {
	return Config{
		Background:    "#f5f5f5",
		ScreenshotDir: "screenshots",
		Grid: GridConfig{
			Visible:    true,
			Size:       50,
			MinSpacing: 8,
			Color:      "#dddddd",
		},
		Viewport: ViewportConfig{
			MinZoom:        DefaultMinZoom,
			MaxZoom:        DefaultMaxZoom,
			ZoomStep:       DefaultZoomStep,
			ScrollDuration: 0.3,
		},
		Selection: SelectionConfig{
			Color:        "#1e90ff",
			HandleSize:   8,
			RotateOffset: 24,
		},
		Camera: CameraConfig{
			Fov:         60,
			Near:        0.1,
			Far:         1000,
			Position:    Vec3{X: 10, Y: 10, Z: 10},
			MinDistance: 1,
			MaxDistance: 500,
			Damping:     0.05,
			FlySpeed:    5,
			LookSpeed:   1.5,
			FocusTime:   0.5,
		},
	}
}

// ParseConfig decodes TOML over DefaultConfig, so omitted keys keep their
// defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return ParseConfig(data)
}

// Validate reports settings that would break the viewport or camera.
func (c Config) Validate() error {
	v := c.Viewport
	if v.MinZoom <= 0 || v.MaxZoom < v.MinZoom {
		return fmt.Errorf("config: invalid zoom range [%g, %g]", v.MinZoom, v.MaxZoom)
	}
	if v.ZoomStep <= 0 {
		return fmt.Errorf("config: zoom_step must be positive, got %g", v.ZoomStep)
	}
	cam := c.Camera
	if cam.Fov <= 0 || cam.Fov >= 180 {
		return fmt.Errorf("config: camera fov must be in (0, 180), got %g", cam.Fov)
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		return fmt.Errorf("config: invalid clip range [%g, %g]", cam.Near, cam.Far)
	}
	if cam.MaxDistance < cam.MinDistance {
		return fmt.Errorf("config: max_distance %g below min_distance %g", cam.MaxDistance, cam.MinDistance)
	}
	return nil
}

// configColor resolves a config color string, falling back to def.
func configColor(s string, def Color) Color {
	if c, ok := ParseColor(s); ok {
		return c
	}
	return def
}
