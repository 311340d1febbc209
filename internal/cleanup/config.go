package cleanup

import "time"

type Config struct {
	KeepCount   int
	PerPage     int
	PagePause   time.Duration
	DeletePause time.Duration
	DryRun      bool

	// Projects and ProjectsFile replace live project enumeration with a
	// static list. ProjectsFile wins when both are set.
	Projects           []string
	ProjectsFile       string
	ProjectsSinglePage bool
	Exclude            []string
}

func (c Config) Policy() Policy {
	return Policy{KeepCount: c.KeepCount}
}

func (c Config) Pager(sleeper Sleeper) Pager {
	return Pager{
		PerPage: c.PerPage,
		Pause:   c.PagePause,
		Sleeper: sleeper,
	}
}
