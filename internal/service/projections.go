package service

import (
	"context"
	"sort"
	"time"

	"github.com/cityfeedback/feedback-service/internal/domain"
	"github.com/cityfeedback/feedback-service/internal/observability"
)

// FeedbackSummary is the public view of a published, still active item.
type FeedbackSummary struct {
	ID           string
	Title        string
	Category     domain.Category
	Status       domain.Status
	FeedbackDate time.Time
}

// FeedbackStatistics aggregates the whole feedback set. Dates are nil for an empty set.
type FeedbackStatistics struct {
	TotalCount     int
	PublishedCount int
	ClosedCount    int
	OpenCount      int
	OldestDate     *time.Time
	NewestDate     *time.Time
}

// CountByStatus returns how many items are in each status. Every status is present.
func CountByStatus(items []*domain.Feedback) map[domain.Status]int {
	counts := make(map[domain.Status]int, len(domain.Statuses))
	for _, status := range domain.Statuses {
		counts[status] = 0
	}
	for _, f := range items {
		counts[f.Status()]++
	}
	return counts
}

// GroupTitlesByCategory maps each category that has items to their titles, in input order.
func GroupTitlesByCategory(items []*domain.Feedback) map[domain.Category][]string {
	groups := make(map[domain.Category][]string)
	for _, f := range items {
		groups[f.Category()] = append(groups[f.Category()], f.Title())
	}
	return groups
}

// SummarizePublishedActive keeps published, non-closed items ordered by date, newest first.
func SummarizePublishedActive(items []*domain.Feedback) []FeedbackSummary {
	summaries := make([]FeedbackSummary, 0, len(items))
	for _, f := range items {
		if !f.IsPublished() || f.Status() == domain.StatusClosed {
			continue
		}
		summaries = append(summaries, FeedbackSummary{
			ID:           f.ID(),
			Title:        f.Title(),
			Category:     f.Category(),
			Status:       f.Status(),
			FeedbackDate: f.FeedbackDate(),
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].FeedbackDate.After(summaries[j].FeedbackDate)
	})
	return summaries
}

// ComputeStatistics derives the aggregate counters.
func ComputeStatistics(items []*domain.Feedback) FeedbackStatistics {
	stats := FeedbackStatistics{TotalCount: len(items)}
	for _, f := range items {
		if f.IsPublished() {
			stats.PublishedCount++
		}
		switch f.Status() {
		case domain.StatusClosed:
			stats.ClosedCount++
		case domain.StatusOpen:
			stats.OpenCount++
		}
		date := f.FeedbackDate()
		if stats.OldestDate == nil || date.Before(*stats.OldestDate) {
			stats.OldestDate = &date
		}
		if stats.NewestDate == nil || date.After(*stats.NewestDate) {
			stats.NewestDate = &date
		}
	}
	return stats
}

func (s *FeedbackService) StatusHistogram(ctx context.Context) (map[domain.Status]int, error) {
	return observability.Observe(ctx, s.instr, "FeedbackService.StatusHistogram", func(ctx context.Context) (map[domain.Status]int, error) {
		items, err := s.store.Feedback().FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return CountByStatus(items), nil
	})
}

func (s *FeedbackService) TitlesByCategory(ctx context.Context) (map[domain.Category][]string, error) {
	return observability.Observe(ctx, s.instr, "FeedbackService.TitlesByCategory", func(ctx context.Context) (map[domain.Category][]string, error) {
		items, err := s.store.Feedback().FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return GroupTitlesByCategory(items), nil
	})
}

func (s *FeedbackService) PublishedActiveSummary(ctx context.Context) ([]FeedbackSummary, error) {
	return observability.Observe(ctx, s.instr, "FeedbackService.PublishedActiveSummary", func(ctx context.Context) ([]FeedbackSummary, error) {
		items, err := s.store.Feedback().FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return SummarizePublishedActive(items), nil
	})
}

func (s *FeedbackService) Statistics(ctx context.Context) (FeedbackStatistics, error) {
	return observability.Observe(ctx, s.instr, "FeedbackService.Statistics", func(ctx context.Context) (FeedbackStatistics, error) {
		items, err := s.store.Feedback().FindAll(ctx)
		if err != nil {
			return FeedbackStatistics{}, err
		}
		return ComputeStatistics(items), nil
	})
}
