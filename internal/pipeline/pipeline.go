// Package pipeline assembles the ingestion and adjustment workflows from
// their steps.
package pipeline

import (
	"context"

	"github.com/jasonCodeSpace/articles-x-sub000/internal/indexing"
	"github.com/jasonCodeSpace/articles-x-sub000/internal/workflow"
)

// IngestDefinition is the full harvest run: fetch timelines, extract and
// save articles, then enrich and clean up.
func (d *Deps) IngestDefinition() workflow.Definition {
	return workflow.Definition{
		Name: "article-ingest",
		Steps: []workflow.Step{
			d.FetchListsStep(),
			d.ExtractArticlesStep(),
			d.SaveArticlesStep(),
			d.GenerateSummariesStep(),
			d.CleanupLowScoreStep(),
		},
	}
}

// AdjustmentDefinition is the nightly index maintenance run: promote
// fresh qualifying articles, then enforce the floor and ceiling.
func AdjustmentDefinition(adj *indexing.Adjuster) workflow.Definition {
	return workflow.Definition{
		Name: "daily-adjustment",
		Steps: []workflow.Step{
			{
				Name: "promote-recent",
				Execute: func(ctx context.Context, _ any, run *workflow.Run) workflow.Result {
					change, err := adj.PromoteRecent(ctx)
					if err != nil {
						return workflow.Result{Err: err}
					}
					run.Data["promoted_recent"] = len(change.Promoted)
					return workflow.Result{Output: change}
				},
			},
			{
				Name: "enforce-quota",
				Execute: func(ctx context.Context, _ any, run *workflow.Run) workflow.Result {
					change, err := adj.EnforceQuota(ctx)
					if err != nil {
						return workflow.Result{Err: err}
					}
					run.Data["promoted"] = len(change.Promoted)
					run.Data["demoted"] = len(change.Demoted)
					run.Data["total_indexed"] = change.Total
					return workflow.Result{Output: change}
				},
			},
		},
	}
}
