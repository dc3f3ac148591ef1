package engine

import (
	"maps"
	"slices"
	"sync"

	"github.com/danderson/obsipc/property"
)

// Source is a producer of audio or video, such as an image, a media
// file or a scene.
type Source struct {
	engine *Engine
	typeID string
	props  func() []property.Property

	mu       sync.Mutex
	name     string
	settings map[string]any
	scene    *Scene
	released bool
}

// TypeID returns the source's type identifier, such as
// "image_source".
func (s *Source) TypeID() string { return s.typeID }

// Name returns the source's unique name.
func (s *Source) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// SetName renames the source.
func (s *Source) SetName(name string) error {
	return s.engine.rename(s, name)
}

// Released reports whether the source has been released.
func (s *Source) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Scene returns the scene backed by s, or nil if s is not a scene.
func (s *Source) Scene() *Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

// Settings returns a copy of the source's settings.
func (s *Source) Settings() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.settings)
}

// Update merges settings into the source's settings.
func (s *Source) Update(settings map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrReleased
	}
	maps.Copy(s.settings, settings)
	return nil
}

// Properties returns descriptors of the source's configurable
// settings.
func (s *Source) Properties() []property.Property {
	return s.props()
}

// SceneTypeID is the type identifier of scene sources.
const SceneTypeID = "scene"

type sourceType struct {
	defaults   func() map[string]any
	properties func() []property.Property
}

// SourceTypes returns the identifiers of the source types that
// CreateSource accepts.
func SourceTypes() []string {
	ret := slices.Collect(maps.Keys(sourceTypes))
	ret = slices.DeleteFunc(ret, func(s string) bool { return s == SceneTypeID })
	slices.Sort(ret)
	return ret
}

func visible(name, desc string) property.Common {
	return property.Common{Name: name, Description: desc, Enabled: true, Visible: true}
}

var sourceTypes = map[string]sourceType{
	SceneTypeID: {
		defaults:   func() map[string]any { return map[string]any{} },
		properties: func() []property.Property { return nil },
	},
	"color_source": {
		defaults: func() map[string]any {
			return map[string]any{"color": uint64(0xffffffff), "width": int64(1920), "height": int64(1080)}
		},
		properties: func() []property.Property {
			return []property.Property{
				&property.Color{Common: visible("color", "Color")},
				&property.Integer{Common: visible("width", "Width"), Min: 0, Max: 4096, Step: 1},
				&property.Integer{Common: visible("height", "Height"), Min: 0, Max: 4096, Step: 1},
			}
		},
	},
	"image_source": {
		defaults: func() map[string]any {
			return map[string]any{"file": "", "unload": false}
		},
		properties: func() []property.Property {
			return []property.Property{
				&property.Path{
					Common:   visible("file", "Image File"),
					PathType: property.PathFile,
					Filter:   "All Image Files (*.bmp *.tga *.png *.jpeg *.jpg *.gif *.psd);;All Files (*.*)",
				},
				&property.Boolean{Common: visible("unload", "Unload image when not showing")},
			}
		},
	},
	"text_ft2_source": {
		defaults: func() map[string]any {
			return map[string]any{"text": "", "outline": false, "color1": uint64(0xffffffff), "color2": uint64(0xffffffff)}
		},
		properties: func() []property.Property {
			return []property.Property{
				&property.Font{Common: visible("font", "Font")},
				&property.Text{Common: visible("text", "Text"), TextType: property.TextMultiLine},
				&property.Boolean{Common: visible("outline", "Outline")},
				&property.Color{Common: visible("color1", "Color 1")},
				&property.Color{Common: visible("color2", "Color 2")},
			}
		},
	},
	"ffmpeg_source": {
		defaults: func() map[string]any {
			return map[string]any{"is_local_file": true, "local_file": "", "looping": false, "speed_percent": int64(100), "color_range": int64(0)}
		},
		properties: func() []property.Property {
			return []property.Property{
				&property.Boolean{Common: visible("is_local_file", "Local File")},
				&property.Path{
					Common:   visible("local_file", "Local File"),
					PathType: property.PathFile,
					Filter:   "Media Files (*.mp4 *.ts *.mov *.flv *.mkv *.avi *.mp3 *.ogg *.aac *.wav *.gif *.webm);;All Files (*.*)",
				},
				&property.Boolean{Common: visible("looping", "Loop")},
				&property.Integer{Common: visible("speed_percent", "Speed"), NumberType: property.NumberSlider, Min: 1, Max: 200, Step: 1},
				&property.List{
					Common:   visible("color_range", "YUV Color Range"),
					ListType: property.ListList,
					Format:   property.FormatInt,
					Items: []property.ListItem{
						{Name: "Auto", Enabled: true, Int: 0},
						{Name: "Partial", Enabled: true, Int: 1},
						{Name: "Full", Enabled: true, Int: 2},
					},
				},
				&property.Button{Common: visible("restart", "Restart")},
			}
		},
	},
	"vlc_source": {
		defaults: func() map[string]any {
			return map[string]any{"loop": true, "shuffle": false, "playback_behavior": "stop_restart", "volume": 1.0}
		},
		properties: func() []property.Property {
			return []property.Property{
				&property.EditableList{
					Common:   visible("playlist", "Playlist"),
					ListType: property.EditableFilesAndURLs,
					Filter:   "Media Files (*.mp4 *.mkv *.mp3 *.ogg);;All Files (*.*)",
				},
				&property.Boolean{Common: visible("loop", "Loop Playlist")},
				&property.Boolean{Common: visible("shuffle", "Shuffle Playlist")},
				&property.List{
					Common:   visible("playback_behavior", "Visibility Behavior"),
					ListType: property.ListList,
					Format:   property.FormatString,
					Items: []property.ListItem{
						{Name: "Stop when not visible, restart when visible", Enabled: true, String: "stop_restart"},
						{Name: "Pause when not visible, unpause when visible", Enabled: true, String: "pause_unpause"},
						{Name: "Always play even when not visible", Enabled: true, String: "always_play"},
					},
				},
				&property.Float{Common: visible("volume", "Volume"), NumberType: property.NumberSlider, Min: 0, Max: 1, Step: 0.01},
			}
		},
	},
	"video_capture_device": {
		defaults: func() map[string]any {
			return map[string]any{"device": "", "frame_interval": int64(-1)}
		},
		properties: func() []property.Property {
			return []property.Property{
				&property.Text{Common: visible("device", "Device")},
				&property.FrameRate{
					Common: visible("frame_interval", "FPS"),
					Ranges: []property.FrameRateRange{
						{Min: property.Fraction{Num: 1, Den: 1}, Max: property.Fraction{Num: 60, Den: 1}},
					},
					Options: []property.FrameRateOption{
						{Name: "match_output", Description: "Match Output FPS"},
						{Name: "highest", Description: "Highest FPS"},
					},
				},
				&property.Button{Common: visible("video_config", "Configure Video")},
			}
		},
	},
}
