package script

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/coreman2200/funtimes-marquee/internal/audio"
	"github.com/coreman2200/funtimes-marquee/internal/raster"
	"github.com/coreman2200/funtimes-marquee/internal/render"
)

var (
	ErrUnknownAsset = errors.New("unknown asset")
	ErrUnknownEase  = errors.New("unknown easing")
)

// SpriteSpec describes one drawable. Exactly one of Sheet, Box, Label or
// Composite is set.
type SpriteSpec struct {
	Sheet       string   `yaml:"sheet,omitempty"`
	FrameWidth  int      `yaml:"frameWidth,omitempty"`
	FrameHeight int      `yaml:"frameHeight,omitempty"`
	Box         string   `yaml:"box,omitempty"` // hex colour
	HueStep     float64  `yaml:"hueStep,omitempty"`
	Label       string   `yaml:"label,omitempty"` // hex text colour
	Composite   []string `yaml:"composite,omitempty"`
	Frames      int      `yaml:"frames,omitempty"`
}

type SoundSpec struct {
	WAV string `yaml:"wav"`
}

type AssetSpec struct {
	Sprites map[string]SpriteSpec `yaml:"sprites"`
	Sounds  map[string]SoundSpec  `yaml:"sounds"`
}

// Assets resolves names used by actions to drawables and sounds.
type Assets struct {
	Sprites map[string]render.Drawable
	Sounds  map[string]audio.Sound
}

func NewAssets() *Assets {
	return &Assets{Sprites: map[string]render.Drawable{}, Sounds: map[string]audio.Sound{}}
}

func (a *Assets) sprite(name string) (render.Drawable, error) {
	if name == "" {
		return nil, nil
	}
	d, ok := a.Sprites[name]
	if !ok {
		return nil, fmt.Errorf("%w: sprite %q", ErrUnknownAsset, name)
	}
	return d, nil
}

func (a *Assets) sound(name string) (audio.Sound, error) {
	s, ok := a.Sounds[name]
	if !ok {
		return nil, fmt.Errorf("%w: sound %q", ErrUnknownAsset, name)
	}
	return s, nil
}

// Build loads every asset in spec. Relative paths resolve against dir. Sounds
// need a deck.
func (a *Assets) Build(spec AssetSpec, dir string, deck *audio.Deck) error {
	names := make([]string, 0, len(spec.Sprites))
	for name := range spec.Sprites {
		names = append(names, name)
	}
	sort.Strings(names)
	visiting := map[string]bool{}
	for _, name := range names {
		if err := a.buildSprite(name, spec.Sprites, dir, visiting); err != nil {
			return err
		}
	}

	for name, s := range spec.Sounds {
		if deck == nil {
			return fmt.Errorf("sound %q: no audio deck", name)
		}
		clip, err := audio.LoadWAV(deck, resolve(dir, s.WAV))
		if err != nil {
			return fmt.Errorf("sound %q: %w", name, err)
		}
		a.Sounds[name] = clip
	}
	return nil
}

func (a *Assets) buildSprite(name string, specs map[string]SpriteSpec, dir string, visiting map[string]bool) error {
	if _, done := a.Sprites[name]; done {
		return nil
	}
	spec, ok := specs[name]
	if !ok {
		return fmt.Errorf("%w: sprite %q", ErrUnknownAsset, name)
	}
	if visiting[name] {
		return fmt.Errorf("sprite %q: composite cycle", name)
	}
	visiting[name] = true
	defer delete(visiting, name)

	var d render.Drawable
	switch {
	case spec.Sheet != "":
		sh, err := raster.LoadSheet(resolve(dir, spec.Sheet), spec.FrameWidth, spec.FrameHeight)
		if err != nil {
			return fmt.Errorf("sprite %q: %w", name, err)
		}
		d = sh
	case spec.Box != "":
		c, err := colorful.Hex(spec.Box)
		if err != nil {
			return fmt.Errorf("sprite %q: %w", name, err)
		}
		d = raster.Box{Color: c, HueStep: spec.HueStep, N: spec.Frames}
	case spec.Label != "":
		c, err := colorful.Hex(spec.Label)
		if err != nil {
			return fmt.Errorf("sprite %q: %w", name, err)
		}
		d = raster.Label{Color: c}
	case len(spec.Composite) > 0:
		cp := raster.Composite{N: spec.Frames}
		for _, child := range spec.Composite {
			if err := a.buildSprite(child, specs, dir, visiting); err != nil {
				return fmt.Errorf("sprite %q: %w", name, err)
			}
			cp.Children = append(cp.Children, a.Sprites[child])
		}
		d = cp
	default:
		return fmt.Errorf("sprite %q: no sheet, box, label or composite", name)
	}
	a.Sprites[name] = d
	return nil
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}
