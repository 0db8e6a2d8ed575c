package cli

import (
	"context"
	"flag"
	"fmt"

	"reglens/internal/recommend"
	"reglens/internal/wizard"
)

// RunRecommend handles the 'recommend' command: call the classification
// agent directly and print the normalized topics. Useful for tuning the
// prompt without driving the whole wizard.
func RunRecommend(ctx context.Context, recommender recommend.Recommender, args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	description := fs.String("description", "", "Business description (required, min 50 chars)")
	sector := fs.String("sector", "", "Business sector")
	country := fs.String("country", "", "ISO country code (required)")
	maxTopics := fs.Int("max", wizard.MaxSelectedTopics, "Maximum topics to return")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if result := wizard.ValidateDescription(*description); !result.OK {
		return fmt.Errorf("error: %s", result.FieldErrors["business_description"])
	}
	if *country == "" {
		fs.Usage()
		return fmt.Errorf("error: --country flag is required")
	}

	analysis, err := recommender.Recommend(ctx, recommend.Request{
		Description: *description,
		Sector:      *sector,
		Country:     *country,
		MaxTopics:   *maxTopics,
	})
	if err != nil {
		return fmt.Errorf("recommendation failed: %w", err)
	}

	fmt.Printf("Summary: %s\n\n", analysis.Summary)
	for i, t := range analysis.Topics {
		fmt.Printf("%2d. [%-6s] %s (%s)\n", i+1, t.Relevance, t.Title, t.Ambit)
		if t.Reason != "" {
			fmt.Printf("      %s\n", t.Reason)
		}
	}
	return nil
}
