package twin

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title   string
	Width   int
	Height  int
	ShowFPS bool
	// Script, when set, replaces live input until it finishes.
	Script *Script
	// ExitAfterScript ends Run once Script is done and its last
	// screenshot has been written.
	ExitAfterScript bool
	// OnUpdate runs every tick after input has been dispatched. Returning
	// an error stops the game; ebiten.Termination stops it cleanly.
	OnUpdate func() error
}

// Run opens a window hosting c and blocks until it is closed.
func Run(c *Coordinator, cfg RunConfig) error {
	if c == nil || c.disposed {
		return ErrDisposed
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = c.canvas.Size()
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := newHost(c, cfg)
	err := ebiten.RunGame(g)
	if err == nil && cfg.Script != nil {
		err = cfg.Script.Err()
	}
	return err
}

// host adapts a Coordinator to ebiten.Game.
type host struct {
	c          *Coordinator
	cfg        RunConfig
	input      *EbitenInput
	afterDone  int
	fpsElapsed float64
	fpsText    string
}

func newHost(c *Coordinator, cfg RunConfig) *host {
	return &host{c: c, cfg: cfg, input: NewEbitenInput(c.canvas)}
}

func (g *host) Update() error {
	dt := 1 / float64(ebiten.TPS())

	if s := g.cfg.Script; s != nil && !s.Done() {
		g.c.canvas.SetHovered(true)
		s.Step(g.c, g.c.canvas)
	} else {
		g.input.Poll(g.c)
		if s != nil && g.cfg.ExitAfterScript {
			// one more Draw flushes queued screenshots
			if g.afterDone++; g.afterDone > 1 {
				return ebiten.Termination
			}
		}
	}

	if g.cfg.OnUpdate != nil {
		if err := g.cfg.OnUpdate(); err != nil {
			return err
		}
	}
	g.c.Update(dt)

	g.fpsElapsed += dt
	if g.cfg.ShowFPS && g.fpsElapsed >= 0.5 {
		g.fpsElapsed = 0
		g.fpsText = fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nMode: %s", ebiten.ActualFPS(), ebiten.ActualTPS(), g.c.SceneMode())
	}
	return nil
}

func (g *host) Draw(screen *ebiten.Image) {
	g.c.Draw(screen)
	if g.cfg.ShowFPS {
		ebitenutil.DebugPrint(screen, g.fpsText)
	}
}

func (g *host) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.c.canvas.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}
