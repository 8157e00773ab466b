package services

import (
	"context"
	"fmt"

	"devcamper/internal/utils"

	"github.com/sirupsen/logrus"
)

// Aggregates keeps a bootcamp's averageCost and averageRating in step with
// its children. Recompute failures are logged and never returned.
type Aggregates struct {
	Bootcamps BootcampStore
	Courses   CourseStore
	Reviews   ReviewStore
	Log       logrus.FieldLogger
}

// Cost sets averageCost to the ceiling of the mean tuition, or clears it
// when the bootcamp has no courses left.
func (a Aggregates) Cost(ctx context.Context, bootcampID int64) {
	avg, err := a.Courses.AverageTuition(ctx, bootcampID)
	if err == nil {
		err = a.Bootcamps.SetAverageCost(ctx, bootcampID, utils.CeilAverage(avg))
	}
	if err != nil {
		utils.LogWarn(ctx, a.Log, "aggregates", "average_cost", fmt.Errorf("bootcamp %d: %w", bootcampID, err))
		return
	}
	utils.LogEvent(ctx, a.Log, "aggregates", "average_cost", fmt.Sprintf("bootcamp_id=%d", bootcampID))
}

// Rating is Cost for review ratings.
func (a Aggregates) Rating(ctx context.Context, bootcampID int64) {
	avg, err := a.Reviews.AverageRating(ctx, bootcampID)
	if err == nil {
		err = a.Bootcamps.SetAverageRating(ctx, bootcampID, utils.CeilAverage(avg))
	}
	if err != nil {
		utils.LogWarn(ctx, a.Log, "aggregates", "average_rating", fmt.Errorf("bootcamp %d: %w", bootcampID, err))
		return
	}
	utils.LogEvent(ctx, a.Log, "aggregates", "average_rating", fmt.Sprintf("bootcamp_id=%d", bootcampID))
}
