package commands

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type task struct {
	id     string
	text   string
	status TaskStatus
}

// plans holds the engine's plans. Plans live only as long as the engine.
type plans struct {
	mu sync.Mutex
	m  map[string][]*task
}

func newPlans() *plans {
	return &plans{m: make(map[string][]*task)}
}

func (e *Engine) plan(c Plan) Result {
	id := uuid.NewString()
	tasks := make([]*task, len(c.Tasks))
	var b strings.Builder
	fmt.Fprintf(&b, "Created plan %s", id)
	for i, text := range c.Tasks {
		tasks[i] = &task{id: strconv.Itoa(i + 1), text: text, status: TaskPending}
		fmt.Fprintf(&b, "\n  %d. [%s] %s", i+1, TaskPending, text)
	}

	e.plans.mu.Lock()
	e.plans.m[id] = tasks
	e.plans.mu.Unlock()
	e.log.Infow("plan created", "plan", id, "tasks", len(tasks))
	return success(KindPlan, "%s", b.String())
}

func (e *Engine) updatePlan(c UpdatePlan) Result {
	e.plans.mu.Lock()
	defer e.plans.mu.Unlock()

	tasks, ok := e.plans.m[c.PlanID]
	if !ok {
		return failure(KindUpdatePlan, "Plan not found: %s", c.PlanID)
	}
	for _, t := range tasks {
		if t.id == c.TaskID {
			t.status = c.Status
			e.log.Infow("plan updated", "plan", c.PlanID, "task", t.id, "status", c.Status)
			return success(KindUpdatePlan, "Task %s of plan %s is now %s", t.id, c.PlanID, c.Status)
		}
	}
	return failure(KindUpdatePlan, "Task %s not found in plan %s", c.TaskID, c.PlanID)
}
