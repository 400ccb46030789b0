package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the process's recurring jobs: one backup trigger per
// application plus housekeeping. Jobs are registered at startup and
// cancelled together at shutdown; nothing persists across restarts.
type Scheduler struct {
	cron *cron.Cron

	mu   sync.Mutex
	jobs map[string]entry
}

type entry struct {
	id   cron.EntryID
	spec string
}

// JobInfo describes one scheduled job for status queries.
type JobInfo struct {
	Name string
	Spec string
	Prev time.Time
	Next time.Time
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		jobs: make(map[string]entry),
	}
}

// AddJob registers a named recurring job. An invalid cadence expression is
// rejected here, before anything is scheduled. Fires of the same job do not
// overlap: if a prior run is still going when the next fire is due, the
// fire is skipped; distinct jobs run concurrently.
func (s *Scheduler) AddJob(name, spec string, job func(context.Context) error) error {
	wrapped := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(
		cron.FuncJob(func() {
			_ = job(context.Background())
		}),
	)

	id, err := s.cron.AddJob(spec, wrapped)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.jobs[name] = entry{id: id, spec: spec}
	s.mu.Unlock()

	return nil
}

// Jobs lists registered jobs sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for name, e := range s.jobs {
		cronEntry := s.cron.Entry(e.id)
		infos = append(infos, JobInfo{
			Name: name,
			Spec: e.spec,
			Prev: cronEntry.Prev,
			Next: cronEntry.Next,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels all triggers and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
