package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"

	"github.com/taigrr/skelcull/pkg/culling"
	"github.com/taigrr/skelcull/pkg/math3d"
	"github.com/taigrr/skelcull/pkg/render"
)

// hudRows is the number of terminal rows below the map.
const hudRows = 2

// OrbitAxis is one orbit angle whose velocity decays through a spring.
type OrbitAxis struct {
	Angle    float64
	Velocity float64
	velAccel float64
	spring   harmonica.Spring
}

// NewOrbitAxis creates an axis starting at angle.
func NewOrbitAxis(fps int, angle float64) OrbitAxis {
	return OrbitAxis{
		Angle:  angle,
		spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update advances the angle by one frame and decays the velocity.
func (a *OrbitAxis) Update(dt float64) {
	a.Angle += a.Velocity * dt
	a.Velocity, a.velAccel = a.spring.Update(a.Velocity, a.velAccel, 0)
}

// FPSCounter measures the frame rate over one second windows.
type FPSCounter struct {
	fps    float64
	frames int
	since  time.Time
}

// Tick counts a frame.
func (c *FPSCounter) Tick() {
	c.frames++
	if elapsed := time.Since(c.since); elapsed >= time.Second {
		c.fps = float64(c.frames) / elapsed.Seconds()
		c.frames = 0
		c.since = time.Now()
	}
}

func viewCmd(opts *options) *cobra.Command {
	var fps int

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Watch the culling results on a top-down map",
		Long: `view animates the crowd and draws it from above. In the camera pass
visible instances are green; in the light pass casters take the color of
the nearest cascade they render into. Arrows orbit the camera, l rotates the
light, s toggles the sphere test, c switches passes, b toggles batch
outlines and esc quits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runView(ctx, opts, max(fps, 1))
		},
	}
	cmd.Flags().IntVar(&fps, "fps", 30, "target FPS")
	return cmd
}

func runView(ctx context.Context, opts *options, fps int) error {
	world, err := opts.world(ctx, fps)
	if err != nil {
		return err
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	cleanup := func() {
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	fb := render.NewFramebuffer(width, max(height-hudRows, 1)*2)
	topDown := render.NewTopDown(fb, math3d.Vec3{}, 1)
	topDown.Fit(world.Bounds())

	cam := render.NewCamera()
	cam.SetClipPlanes(0.1, 2*opts.spread+50)
	disp := culling.NewDispatcher(opts.workers)
	defer disp.Close()

	r := &rig{cam: cam, disp: disp, cfg: opts.cascadeConfig(), lightDir: sunDir}
	dist := max(opts.spread*0.5, 5)
	yaw := NewOrbitAxis(fps, 0)
	pitch := NewOrbitAxis(fps, -0.3)
	lightYaw := math.Atan2(sunDir.X, sunDir.Z)

	var (
		mode    = render.MapLight
		outline bool
		counter = FPSCounter{since: time.Now()}
	)

	const impulse = 1.5
	events := term.Events()
	frame := time.Second / time.Duration(fps)

	for {
		start := time.Now()

	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev := <-events:
				switch ev := ev.(type) {
				case uv.WindowSizeEvent:
					width, height = ev.Width, ev.Height
					term.Erase()
					term.Resize(width, height)
					fb.Resize(width, max(height-hudRows, 1)*2)
					topDown.Fit(world.Bounds())

				case uv.KeyPressEvent:
					switch {
					case ev.MatchString("escape", "ctrl+c", "q"):
						return nil
					case ev.MatchString("left"):
						yaw.Velocity -= impulse
					case ev.MatchString("right"):
						yaw.Velocity += impulse
					case ev.MatchString("up"):
						pitch.Velocity -= impulse / 2
					case ev.MatchString("down"):
						pitch.Velocity += impulse / 2
					case ev.MatchString("l"):
						lightYaw += math.Pi / 12
						r.lightDir = math3d.V3(math.Sin(lightYaw)*0.5, -1, math.Cos(lightYaw)*0.5)
					case ev.MatchString("s"):
						r.cfg.SphereTest = !r.cfg.SphereTest
					case ev.MatchString("c"):
						if mode == render.MapLight {
							mode = render.MapCamera
						} else {
							mode = render.MapLight
						}
					case ev.MatchString("b"):
						outline = !outline
					}
				}
			default:
				break drain
			}
		}

		dt := frame.Seconds()
		yaw.Update(dt)
		pitch.Update(dt)
		pitch.Angle = min(max(pitch.Angle, -1.4), -0.05)
		cam.Orbit(math3d.Vec3{}, dist, pitch.Angle, yaw.Angle)

		world.Step()
		p, err := r.cull(world.Gather(), mode == render.MapCamera)
		if err != nil {
			return err
		}

		drawMap(topDown, world.Gather(), cam, p.shadow, mode, outline)
		fb.Draw(term, uv.Rect(0, 0, width, max(height-hudRows, 1)))

		counter.Tick()
		for i, line := range hudLines(p, mode, r, counter.fps) {
			uv.NewStyledString(line).Draw(term, uv.Rect(0, height-hudRows+i, width, 1))
		}
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		if elapsed := time.Since(start); elapsed < frame {
			time.Sleep(frame - elapsed)
		}
	}
}

// hudLines returns the status rows drawn below the map.
func hudLines(p pass, mode render.MapMode, r *rig, fps float64) [hudRows]string {
	const (
		reset = "\x1b[0m"
		bold  = "\x1b[1m"
		dim   = "\x1b[2m"
	)

	passName := "light"
	if mode == render.MapCamera {
		passName = "camera"
	}
	sphere := "off"
	if r.cfg.SphereTest {
		sphere = "on"
	}

	return [hudRows]string{
		fmt.Sprintf("%s%s pass%s  %.0f fps  camera %d/%d visible %s  light %d casters %s  receiver-rejected %d  sphere test %s (%d rejected)",
			bold, passName, reset, fps,
			p.camera.Visible, p.camera.Objects, p.camera.Elapsed.Round(time.Microsecond),
			p.light.Visible, p.light.Elapsed.Round(time.Microsecond),
			p.light.Receiver, sphere, p.light.SphereRejected),
		dim + "arrows orbit  l light  s sphere test  c camera/light  b batches  esc quit" + reset,
	}
}
