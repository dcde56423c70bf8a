package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/taigrr/skelcull/pkg/cascade"
	"github.com/taigrr/skelcull/pkg/culling"
	"github.com/taigrr/skelcull/pkg/math3d"
	"github.com/taigrr/skelcull/pkg/render"
)

// sunDir is the light direction used unless the view rotates it.
var sunDir = math3d.V3(-0.4, -1, -0.3)

// rig is the per-frame culling state shared by bench and view.
type rig struct {
	cam      *render.Camera
	disp     *culling.Dispatcher
	cfg      cascade.Config
	lightDir math3d.Vec3
	serial   bool
}

// pass holds the results of culling one frame.
type pass struct {
	camera culling.Stats
	light  culling.Stats
	shadow *cascade.Light
}

// cull runs the camera and light passes over batches. The batch masks hold
// the results of the pass run last: the light pass unless cameraLast is set.
func (r *rig) cull(batches []*culling.Batch, cameraLast bool) (pass, error) {
	var p pass

	camSplits, err := cascade.BuildCamera(r.cam)
	if err != nil {
		return p, err
	}
	p.shadow, err = cascade.BuildDirectional(r.cam, r.lightDir, r.cfg)
	if err != nil {
		return p, fmt.Errorf("build cascades: %w", err)
	}

	run := func(view culling.ViewType, splits *culling.Splits) culling.Stats {
		if r.serial {
			return culling.CullSerial(view, splits, batches)
		}
		return r.disp.Cull(view, splits, batches)
	}
	if cameraLast {
		p.light = run(culling.ViewLight, p.shadow.Splits)
		p.camera = run(culling.ViewCamera, camSplits)
	} else {
		p.camera = run(culling.ViewCamera, camSplits)
		p.light = run(culling.ViewLight, p.shadow.Splits)
	}
	return p, nil
}

func benchCmd(opts *options) *cobra.Command {
	var (
		frames  int
		mapPath string
		verbose bool
		serial  bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Cull an animated crowd and print pass statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			world, err := opts.world(cmd.Context(), 60)
			if err != nil {
				return err
			}

			cam := render.NewCamera()
			cam.SetClipPlanes(0.1, 2*opts.spread+50)
			disp := culling.NewDispatcher(opts.workers)
			defer disp.Close()

			r := &rig{cam: cam, disp: disp, cfg: opts.cascadeConfig(), lightDir: sunDir, serial: serial}
			dist := max(opts.spread*0.5, 5)

			fmt.Printf("%d instances in %d batches, %d cascades, %d workers\n",
				len(world.Instances), len(world.Gather()), r.cfg.Cascades, disp.Workers())

			var (
				camTotal, lightTotal culling.Stats
				camTime, lightTime   time.Duration
				last                 pass
			)
			for f := range frames {
				world.Step()
				cam.Orbit(math3d.Vec3{}, dist, -0.3, float64(f)*2*math.Pi/float64(max(frames, 1)))

				p, err := r.cull(world.Gather(), false)
				if err != nil {
					return err
				}
				last = p
				camTotal.Add(&p.camera)
				lightTotal.Add(&p.light)
				camTime += p.camera.Elapsed
				lightTime += p.light.Elapsed

				if verbose {
					fmt.Printf("frame %4d  camera %5d visible %8s  light %5d casters %8s  receiver-rejected %d\n",
						f, p.camera.Visible, p.camera.Elapsed.Round(time.Microsecond),
						p.light.Visible, p.light.Elapsed.Round(time.Microsecond), p.light.Receiver)
				}
			}

			if frames == 0 {
				return nil
			}
			n := time.Duration(frames)
			fmt.Printf("\ncamera pass: %s/frame, %.1f visible, batches in/out/partial %d/%d/%d\n",
				(camTime / n).Round(time.Microsecond), float64(camTotal.Visible)/float64(frames),
				camTotal.In, camTotal.Out, camTotal.Partial)
			fmt.Printf("light pass:  %s/frame, %.1f casters, receiver-rejected %d, sphere-rejected %d\n",
				(lightTime / n).Round(time.Microsecond), float64(lightTotal.Visible)/float64(frames),
				lightTotal.Receiver, lightTotal.SphereRejected)
			for s := range r.cfg.Cascades {
				c := last.shadow.Cascades[s]
				fmt.Printf("  cascade %d [%6.2f, %6.2f]  %.1f casters\n",
					s, c.Near, c.Far, float64(lightTotal.SplitVisible[s])/float64(frames))
			}

			if mapPath != "" {
				if err := saveMap(mapPath, world.Gather(), world.Bounds(), cam, last.shadow); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "Wrote %s\n", mapPath)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&frames, "frames", "f", 300, "frames to simulate")
	cmd.Flags().StringVar(&mapPath, "map", "", "write a top-down PNG of the last frame's light pass")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every frame")
	cmd.Flags().BoolVar(&serial, "serial", false, "cull on the calling goroutine instead of the worker pool")
	return cmd
}

// drawMap draws the batches, the camera frustum and the cascade boxes.
func drawMap(m *render.TopDown, batches []*culling.Batch, cam *render.Camera, shadow *cascade.Light, mode render.MapMode, outline bool) {
	m.Clear(10)
	m.DrawBatches(batches, mode, outline)
	if mode == render.MapLight && shadow != nil {
		for i, c := range shadow.Cascades {
			m.DrawCorners(c.Box, render.SplitColors[i%len(render.SplitColors)])
		}
	}
	m.DrawCorners(render.Corners(cam.ViewProjectionMatrix()), render.ColorFrustum)
}

func saveMap(path string, batches []*culling.Batch, bounds culling.AABB, cam *render.Camera, shadow *cascade.Light) error {
	fb := render.NewFramebuffer(800, 800)
	m := render.NewTopDown(fb, bounds.Center, 1)
	m.Fit(bounds)
	drawMap(m, batches, cam, shadow, render.MapLight, true)
	return fb.SavePNG(path)
}
