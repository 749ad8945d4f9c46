package decompose

import (
	"math"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
)

// Task type labels assigned by the strategies.
const (
	taskTypeWork      = "work"
	taskTypeJoin      = "join"
	taskTypeAggregate = "aggregate"
)

// sequential produces a strict finish-to-start chain, one task per step.
// Confidence is non-increasing along the chain: each link decays by
// chainDecay.
func (d *Decomposer) sequential(goal string, goalCtx map[string]any) (*domain.TaskGraph, error) {
	stepList, err := steps(goal, goalCtx)
	if err != nil {
		return nil, err
	}

	g := &domain.TaskGraph{}
	var prev *domain.Task
	for i, desc := range stepList {
		task := domain.NewTask(desc, taskTypeWork)
		task.Confidence = constants.DefaultTaskConfidence * math.Pow(chainDecay, float64(i))
		g.Tasks = append(g.Tasks, task)

		if prev != nil {
			g.Dependencies = append(g.Dependencies, domain.Dependency{
				PredecessorID: prev.ID,
				SuccessorID:   task.ID,
				Type:          constants.FinishToStart,
			})
		}
		prev = task
	}
	return g, nil
}

// parallel produces independent siblings joined by a single join task with
// finish-to-start edges from every sibling. The join's confidence is the
// minimum of the sibling confidences: the join is only as likely as its
// weakest input.
func (d *Decomposer) parallel(goal string, goalCtx map[string]any) (*domain.TaskGraph, error) {
	stepList, err := steps(goal, goalCtx)
	if err != nil {
		return nil, err
	}

	g := &domain.TaskGraph{}
	siblings := make([]*domain.Task, 0, len(stepList))
	for _, desc := range stepList {
		task := domain.NewTask(desc, taskTypeWork)
		g.Tasks = append(g.Tasks, task)
		siblings = append(siblings, task)
	}

	if len(siblings) > 1 {
		join := domain.NewTask("join: "+goal, taskTypeJoin)
		join.Confidence = minConfidence(siblings)
		g.Tasks = append(g.Tasks, join)
		for _, s := range siblings {
			g.Dependencies = append(g.Dependencies, domain.Dependency{
				PredecessorID: s.ID,
				SuccessorID:   join.ID,
				Type:          constants.FinishToStart,
			})
		}
	}
	return g, nil
}

// hierarchical splits the goal recursively into sub-goal branches, to the
// configured depth limit. Each branch is a finish-to-start chain of its
// children; a compound branch ends in an aggregate task whose confidence is
// the product of its direct children's confidences discounted by depth.
// Top-level branches are chained sequentially.
func (d *Decomposer) hierarchical(goal string, goalCtx map[string]any) (*domain.TaskGraph, error) {
	stepList, err := steps(goal, goalCtx)
	if err != nil {
		return nil, err
	}

	g := &domain.TaskGraph{}
	var prevTail *domain.Task
	for _, desc := range stepList {
		head, tail := d.buildBranch(g, desc, 1)
		if prevTail != nil {
			g.Dependencies = append(g.Dependencies, domain.Dependency{
				PredecessorID: prevTail.ID,
				SuccessorID:   head.ID,
				Type:          constants.FinishToStart,
			})
		}
		prevTail = tail
	}
	return g, nil
}

// buildBranch recursively builds one branch of the hierarchy, appending its
// tasks and internal dependencies to g. It returns the branch's first and
// last tasks so the caller can chain branches.
func (d *Decomposer) buildBranch(g *domain.TaskGraph, desc string, depth int) (head, tail *domain.Task) {
	var parts []string
	if depth < d.depthLimit {
		parts = splitText(desc)
	} else {
		parts = []string{desc}
	}

	if len(parts) == 1 {
		leaf := domain.NewTask(desc, taskTypeWork)
		leaf.Confidence = constants.DefaultTaskConfidence * math.Pow(constants.DepthDiscount, float64(depth-1))
		g.Tasks = append(g.Tasks, leaf)
		return leaf, leaf
	}

	product := 1.0
	var prevTail *domain.Task
	for _, part := range parts {
		childHead, childTail := d.buildBranch(g, part, depth+1)
		product *= childTail.Confidence
		if head == nil {
			head = childHead
		}
		if prevTail != nil {
			g.Dependencies = append(g.Dependencies, domain.Dependency{
				PredecessorID: prevTail.ID,
				SuccessorID:   childHead.ID,
				Type:          constants.FinishToStart,
			})
		}
		prevTail = childTail
	}

	aggregate := domain.NewTask("aggregate: "+desc, taskTypeAggregate)
	aggregate.Confidence = clampConfidence(product * math.Pow(constants.DepthDiscount, float64(depth-1)))
	g.Tasks = append(g.Tasks, aggregate)
	g.Dependencies = append(g.Dependencies, domain.Dependency{
		PredecessorID: prevTail.ID,
		SuccessorID:   aggregate.ID,
		Type:          constants.FinishToStart,
	})
	return head, aggregate
}

// hybrid chains phases of parallel siblings sequentially: the parallel
// join rule applies within a phase, the sequential decay rule across
// phases.
func (d *Decomposer) hybrid(goal string, goalCtx map[string]any) (*domain.TaskGraph, error) {
	phaseList, err := phases(goal, goalCtx)
	if err != nil {
		return nil, err
	}

	g := &domain.TaskGraph{}
	var prevTerminal *domain.Task
	for phaseIdx, phase := range phaseList {
		decay := math.Pow(chainDecay, float64(phaseIdx))

		siblings := make([]*domain.Task, 0, len(phase))
		for _, desc := range phase {
			task := domain.NewTask(desc, taskTypeWork)
			task.Confidence = constants.DefaultTaskConfidence * decay
			g.Tasks = append(g.Tasks, task)
			siblings = append(siblings, task)

			if prevTerminal != nil {
				g.Dependencies = append(g.Dependencies, domain.Dependency{
					PredecessorID: prevTerminal.ID,
					SuccessorID:   task.ID,
					Type:          constants.FinishToStart,
				})
			}
		}

		terminal := siblings[0]
		if len(siblings) > 1 {
			join := domain.NewTask("join: phase "+phase[0], taskTypeJoin)
			join.Confidence = minConfidence(siblings)
			g.Tasks = append(g.Tasks, join)
			for _, s := range siblings {
				g.Dependencies = append(g.Dependencies, domain.Dependency{
					PredecessorID: s.ID,
					SuccessorID:   join.ID,
					Type:          constants.FinishToStart,
				})
			}
			terminal = join
		}
		prevTerminal = terminal
	}
	return g, nil
}

// minConfidence returns the lowest confidence among tasks.
func minConfidence(tasks []*domain.Task) float64 {
	minimum := tasks[0].Confidence
	for _, t := range tasks[1:] {
		if t.Confidence < minimum {
			minimum = t.Confidence
		}
	}
	return minimum
}
