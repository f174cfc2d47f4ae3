// Package runner drives a full run: aggregate packages from the sources,
// then star each one through its target.
package runner

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/starsync/stars/pkg/source"
	"github.com/starsync/stars/pkg/target"
)

// Status is the progress display updated during a run.
type Status interface {
	SetPrefix(prefix string)
	SetMessage(msg string)
	SetTotal(total int)
	Inc()
	Finish()
}

// Summary counts the outcome of a run.
type Summary struct {
	Found   int
	Starred int
	Failed  int
	Skipped int
}

type Runner struct {
	Sources *source.Registry
	Targets *target.Registry
	Status  Status
	Logger  zerolog.Logger
	// DryRun classifies packages without starring them.
	DryRun bool
}

// Run aggregates every package before starring the first one. Failures are
// contained in the registries and only show up in the summary.
func (r *Runner) Run(ctx context.Context) Summary {
	status := r.Status
	if status == nil {
		status = nopStatus{}
	}

	status.SetPrefix("Aggregating packages...")
	pkgs := r.Sources.Aggregate(ctx, r.Targets)
	summary := Summary{Found: len(pkgs)}
	r.Logger.Info().Int("packages", len(pkgs)).Msgf("found %d packages", len(pkgs))

	status.SetPrefix("Starring packages...")
	status.SetTotal(len(pkgs))
	for _, p := range pkgs {
		status.SetMessage(p.Name)
		if r.DryRun {
			r.Logger.Debug().Str("target", p.Target).Str("identifier", p.Identifier).Msgf("dry-run: star %s, ignored", p)
			summary.Skipped++
			status.Inc()
			continue
		}

		switch r.Targets.Star(ctx, p) {
		case target.ResultStarred:
			summary.Starred++
		case target.ResultFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
		status.Inc()
	}
	status.Finish()

	r.Logger.Info().
		Int("starred", summary.Starred).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("Done!")
	return summary
}

type nopStatus struct{}

func (nopStatus) SetPrefix(string)  {}
func (nopStatus) SetMessage(string) {}
func (nopStatus) SetTotal(int)      {}
func (nopStatus) Inc()              {}
func (nopStatus) Finish()           {}
