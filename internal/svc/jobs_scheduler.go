package svc

import (
	"github.com/propertyplus/propertyplus/internal/cleanup"
	"github.com/propertyplus/propertyplus/internal/env"
	"github.com/propertyplus/propertyplus/internal/jobs"
)

func (r *Registry) GetJobsScheduler() *jobs.Scheduler {
	return r.jobsScheduler
}

func (r *Registry) createJobsScheduler() (*jobs.Scheduler, error) {
	scheduler, err := jobs.NewScheduler(r.GetLogger(), r.GetDbPool(), r.GetTracers().Always())
	if err != nil {
		return nil, err
	}

	if cron := env.CleanupVerificationSessionCron(); cron != nil {
		err = scheduler.RegisterCronJob(
			*cron,
			jobs.NewJob(
				"VerificationSessionCleanup",
				cleanup.RunVerificationSessionCleanup(r.GetVerificationStore()),
				env.CleanupVerificationSessionTimeout(),
			),
		)
		if err != nil {
			return nil, err
		}
	}

	if cron := env.CleanupSecurityEventCron(); cron != nil {
		err = scheduler.RegisterCronJob(
			*cron,
			jobs.NewJob(
				"SecurityEventCleanup",
				cleanup.RunSecurityEventCleanup,
				env.CleanupSecurityEventTimeout(),
			),
		)
		if err != nil {
			return nil, err
		}
	}

	return scheduler, nil
}
