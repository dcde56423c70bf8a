// skelcull - batched frustum and shadow cascade culling of skeleton bounds.
//
// Commands:
//
//	bench  - Cull a crowd for a number of frames and print pass statistics
//	view   - Watch the culling results on a top-down map in the terminal
//
// View controls:
//
//	Arrows  - Orbit the camera
//	L       - Rotate the light
//	S       - Toggle the caster sphere test
//	C       - Switch between the camera and light pass
//	B       - Toggle batch outlines
//	Esc     - Quit
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/taigrr/skelcull/pkg/cascade"
	"github.com/taigrr/skelcull/pkg/models"
	"github.com/taigrr/skelcull/pkg/scene"
)

var version = "dev"

// options holds the flags shared by every command.
type options struct {
	models      []string
	count       int
	cascades    int
	spread      float64
	workers     int
	seed        int64
	lambda      float64
	maxDistance float64
	extrusion   float64
	noSphere    bool
	noReceiver  bool
}

func main() {
	if err := fang.Execute(context.Background(), rootCmd(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &options{}
	sceneDefaults := scene.DefaultConfig()
	cascadeDefaults := cascade.DefaultConfig()

	root := &cobra.Command{
		Use:   "skelcull",
		Short: "Batched frustum and shadow cascade culling of skeleton bounds",
		Long: `skelcull scatters skinned skeletons over a ground plane, groups their
bounds into batches of 128 and culls them against a camera frustum and
the cascades of a directional light.`,
		SilenceUsage: true,
	}

	f := root.PersistentFlags()
	f.StringArrayVarP(&opts.models, "model", "m", nil, "glTF/GLB model with a skin (repeatable); box skeletons are used when omitted")
	f.IntVarP(&opts.count, "count", "n", sceneDefaults.Count, "number of skeleton instances")
	f.IntVar(&opts.cascades, "cascades", cascadeDefaults.Cascades, "number of shadow cascades")
	f.Float64Var(&opts.spread, "spread", sceneDefaults.Spread, "half-width of the square the instances stand in")
	f.IntVarP(&opts.workers, "workers", "w", 0, "culling workers (0 = one per CPU)")
	f.Int64Var(&opts.seed, "seed", sceneDefaults.Seed, "placement and animation seed")
	f.Float64Var(&opts.lambda, "lambda", cascadeDefaults.Lambda, "cascade split blend, 0 = uniform, 1 = logarithmic")
	f.Float64Var(&opts.maxDistance, "shadow-distance", cascadeDefaults.MaxDistance, "how far from the camera shadows are received")
	f.Float64Var(&opts.extrusion, "extrusion", cascadeDefaults.Extrusion, "limit how far toward the light casters may sit (0 = unlimited)")
	f.BoolVar(&opts.noSphere, "no-sphere-test", false, "disable the caster sphere test")
	f.BoolVar(&opts.noReceiver, "no-receiver-rejection", false, "disable receiver plane rejection")

	root.AddCommand(benchCmd(opts), viewCmd(opts))
	return root
}

// cascadeConfig returns the cascade configuration selected by the flags.
func (o *options) cascadeConfig() cascade.Config {
	cfg := cascade.DefaultConfig()
	cfg.Cascades = o.cascades
	cfg.Lambda = o.lambda
	cfg.MaxDistance = o.maxDistance
	cfg.Extrusion = o.extrusion
	cfg.SphereTest = !o.noSphere
	cfg.ReceiverRejection = !o.noReceiver
	return cfg
}

// world loads the models and scatters the instances.
func (o *options) world(ctx context.Context, fps int) (*scene.World, error) {
	var skels []*models.Skeleton
	if len(o.models) == 0 {
		skels = []*models.Skeleton{models.BoxSkeleton("box", models.DefaultHeight)}
	} else {
		var err error
		skels, err = models.LoadAll(ctx, o.models)
		if err != nil {
			return nil, err
		}
		for _, sk := range skels {
			fmt.Fprintf(os.Stderr, "Loaded: %s (%d joints)\n", sk.Name, len(sk.Joints))
		}
	}

	cfg := scene.DefaultConfig()
	cfg.Count = o.count
	cfg.Spread = o.spread
	cfg.Seed = o.seed
	cfg.FPS = fps

	w, err := scene.NewWorld(skels, cfg)
	if err != nil {
		return nil, fmt.Errorf("build world: %w", err)
	}
	return w, nil
}
