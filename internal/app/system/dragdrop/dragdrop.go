// Package dragdrop resolves drop payloads. A drop target can receive three
// kinds of drags (a task card, a board column, or a sidebar project) and
// the payload's drag-data keys disambiguate them. A payload carrying a
// column or project index is a reorder even when it lands on a board
// column.
package dragdrop

import "strconv"

// Drag-data keys.
const (
	KeyTaskID       = "task-id"
	KeyColumnIndex  = "draggedColumnIndex"
	KeyProjectIndex = "draggedProjectIndex"
)

// Kind of drop resolved from a payload.
type Kind int

const (
	// Invalid means the payload carried none of the known keys.
	Invalid Kind = iota
	// TaskMove moves a task to the target column's status.
	TaskMove
	// ColumnReorder moves a board column to the target index.
	ColumnReorder
	// ProjectReorder moves a sidebar project to the target index.
	ProjectReorder
)

// Drop is a resolved drop action.
type Drop struct {
	Kind Kind

	// TaskID is set for TaskMove.
	TaskID string
	// SourceIndex is set for ColumnReorder and ProjectReorder.
	SourceIndex int
}

// Resolve inspects which data key is present. Reorder keys win over
// task-id: a column drag that ends on a board column must not be treated
// as a task status move.
func Resolve(payload map[string]string) Drop {
	if raw, ok := payload[KeyColumnIndex]; ok {
		if idx, err := strconv.Atoi(raw); err == nil && idx >= 0 {
			return Drop{Kind: ColumnReorder, SourceIndex: idx}
		}
		return Drop{Kind: Invalid}
	}
	if raw, ok := payload[KeyProjectIndex]; ok {
		if idx, err := strconv.Atoi(raw); err == nil && idx >= 0 {
			return Drop{Kind: ProjectReorder, SourceIndex: idx}
		}
		return Drop{Kind: Invalid}
	}
	if id, ok := payload[KeyTaskID]; ok && id != "" {
		return Drop{Kind: TaskMove, TaskID: id}
	}
	return Drop{Kind: Invalid}
}

// Reorder splices the element at draggedIndex to dropIndex and returns the
// new slice. A self-drop or an out-of-range index returns the input
// unchanged.
func Reorder[T any](items []T, draggedIndex, dropIndex int) []T {
	if draggedIndex == dropIndex {
		return items
	}
	if draggedIndex < 0 || draggedIndex >= len(items) || dropIndex < 0 || dropIndex >= len(items) {
		return items
	}
	out := make([]T, 0, len(items))
	out = append(out, items...)
	dragged := out[draggedIndex]
	out = append(out[:draggedIndex], out[draggedIndex+1:]...)
	out = append(out[:dropIndex], append([]T{dragged}, out[dropIndex:]...)...)
	return out
}
