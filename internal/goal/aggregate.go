package goal

import "github.com/leminhq/remindbot/internal/task"

// Block groups the selected tasks that belong to one goal.
type Block struct {
	Goal  Snapshot
	Tasks []task.Task
}

// Aggregate buckets selected tasks under their linked goals. A task linked to
// several goals appears under each of them; the returned total counts those
// goal-task touches, not unique tasks. Blocks follow snapshot order, and
// goals with no matching task produce no block.
func Aggregate(selected []task.Task, snapshots []Snapshot) ([]Block, int) {
	blocks := make([]Block, 0, len(snapshots))
	total := 0
	for _, snap := range snapshots {
		var bucket []task.Task
		for _, t := range selected {
			for _, id := range t.GoalIDs {
				if id == snap.ID {
					bucket = append(bucket, t)
					break
				}
			}
		}
		if len(bucket) == 0 {
			continue
		}
		blocks = append(blocks, Block{Goal: snap, Tasks: bucket})
		total += len(bucket)
	}
	return blocks, total
}
