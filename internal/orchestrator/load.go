package orchestrator

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/unitymerge/internal/scene"
)

// Inputs are the three documents of a merge.
type Inputs struct {
	Base   *scene.Graph
	Local  *scene.Graph
	Remote *scene.Graph
}

type loadTask struct {
	role string
	path string
	dst  **scene.Graph
}

// LoadInputs parses and links base, local and remote in parallel. The graphs
// share nothing, so each goroutine owns its own. The first failure cancels
// the loads that have not started yet. onProgress may be nil.
func LoadInputs(ctx context.Context, req Request, onProgress func(ProgressEvent)) (*Inputs, error) {
	in := &Inputs{}
	tasks := []loadTask{
		{"base", req.Base, &in.Base},
		{"local", req.Local, &in.Local},
		{"remote", req.Remote, &in.Remote},
	}
	emit := func(ev ProgressEvent) {
		if onProgress != nil {
			onProgress(ev)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		emit(ProgressEvent{Stage: StageLoad, Section: task.role, Status: ProgressPending})
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(ProgressEvent{Stage: StageLoad, Section: task.role, Status: ProgressWorking})
			graph, err := scene.LoadFile(task.path)
			if err != nil {
				emit(ProgressEvent{Stage: StageLoad, Section: task.role, Status: ProgressFailed, Message: err.Error()})
				return fmt.Errorf("load %s: %w", task.role, err)
			}
			*task.dst = graph
			emit(ProgressEvent{
				Stage:   StageLoad,
				Section: task.role,
				Status:  ProgressComplete,
				Message: fmt.Sprintf("%d objects", graph.Len()),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}
