// Read-side facade over the task store.
package engine

import (
	"github.com/mesh-intelligence/capsules/pkg/types"
)

// GetTask returns a task with its full relation set, or ErrNotFound.
func (s *Service) GetTask(id string) (*types.Task, error) {
	return s.store.Tasks().Get(id)
}

// ListTasksByCapsule returns the top-level tasks of a capsule (tasks with
// no parent), newest-first.
func (s *Service) ListTasksByCapsule(capsuleID string) ([]*types.Task, error) {
	return s.store.Tasks().ListByCapsule(capsuleID)
}

// ListSubtasks returns the subtasks of the given parent, newest-first.
func (s *Service) ListSubtasks(parentID string) ([]*types.Task, error) {
	return s.store.Tasks().ListByParent(parentID)
}

// GetTaskDependencies returns the task's blocker set, or ErrNotFound for
// an unknown task.
func (s *Service) GetTaskDependencies(id string) ([]*types.Task, error) {
	task, err := s.store.Tasks().Get(id)
	if err != nil {
		return nil, err
	}
	if task.Blockers == nil {
		return []*types.Task{}, nil
	}
	return task.Blockers, nil
}
