package roster

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Job reconciles the local roster with the external user service by
// full-replace-by-diff: every run re-fetches the entire external roster,
// upserts all of it, then deletes local records absent from the fetched
// set. Running it twice with no upstream changes makes no writes of effect.
type Job struct {
	source   Source
	roster   *Service
	take     int
	interval time.Duration
	log      *zap.SugaredLogger
}

func NewJob(source Source, roster *Service, take int, interval time.Duration, log *zap.SugaredLogger) *Job {
	return &Job{source: source, roster: roster, take: take, interval: interval, log: log}
}

// Run performs one full sync. Errors are logged and end the run without
// retry; the next scheduled invocation is the retry mechanism. The deletion
// pass only happens after a complete external fetch, so a fetch that fails
// midway can leave partial upserts behind but never deletes anything.
func (j *Job) Run(ctx context.Context) {
	token, err := j.source.Login(ctx)
	if err != nil {
		j.log.Errorw("could not sync users", "error", err)
		return
	}

	var fetched []ExternalUser
	page := 1
	for {
		list, err := j.source.ListUsers(ctx, token, page, j.take)
		if err != nil {
			j.log.Errorw("could not sync users", "page", page, "error", err)
			return
		}
		for i := range list.Users {
			if _, err := j.roster.Upsert(ctx, &list.Users[i]); err != nil {
				j.log.Errorw("could not upsert user", "userId", list.Users[i].ID, "error", err)
				return
			}
		}
		fetched = append(fetched, list.Users...)
		if int64(page*j.take) >= list.Total {
			break
		}
		page++
	}

	deleted, err := j.roster.DeleteOld(ctx, fetched, j.take)
	if err != nil {
		j.log.Errorw("could not delete old users", "error", err)
		return
	}
	j.log.Infow("synced users", "fetched", len(fetched), "deleted", deleted)
}

// Start runs one sync on boot, then one per interval until ctx is done.
// Runs are expected to finish well inside the interval; overlap is not
// guarded against.
func (j *Job) Start(ctx context.Context) {
	go func() {
		j.Run(ctx)
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.Run(ctx)
			}
		}
	}()
}
