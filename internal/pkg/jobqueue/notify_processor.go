package jobqueue

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"petalert/app/repository"
	"petalert/internal/pkg/facebook"
	"petalert/internal/pkg/gazetteer"
	"petalert/internal/pkg/matching"
	"petalert/internal/pkg/notify"
)

// processNotifyReportJob runs the notification fan-out for one report. The
// report and its photos are re-fetched here because the worker owns its own
// database session; the HTTP request that enqueued the job has long since
// been answered, so nothing that goes wrong here may surface anywhere but
// the log.
func (q *Queue) processNotifyReportJob(ctx context.Context, job *Job) error {
	payload, perr := NotifyReportJobPayloadFromMap(job.Payload)
	if perr != nil {
		return fmt.Errorf("failed to parse notify report payload: %w", perr)
	}

	repos := repository.GetGlobalRepositories()

	report, err := repos.PetReport.GetByID(payload.ReportID)
	if err != nil {
		// The report may have been deleted before the worker got to it.
		log.Warnf("[NotifyJob] Report %d not found, skipping: %v", payload.ReportID, err)
		return nil
	}

	prior, err := repos.PetReport.UnresolvedMissingBefore(report.RegisteredOn)
	if err != nil {
		log.Errorf("[NotifyJob] Candidate query for report %d failed, notifying owner only: %v", report.ID, err)
		prior = nil
	}

	dispatcher := notify.NewDispatcher(gazetteer.Get(), matching.OptionsFromEnv(), facebook.NewClientFromEnv())
	dispatcher.Dispatch(report, prior, notify.AttachmentsFromPhotos(report.Photos))
	return nil
}
