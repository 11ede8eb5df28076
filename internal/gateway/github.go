// Package gateway provides a gateway to the GitHub API, abstracting
// away the underlying REST client from the rest of the application.
package gateway

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/aviv-k/pr-analytics/internal/domain"
)

// pageSize is the listing page size. A page returning fewer items than
// this is the termination signal for pagination.
const pageSize = 100

// Fetcher defines the behavior of a gateway for fetching pull request
// data from a code-hosting API.
type Fetcher interface {
	// FetchPullRequests returns the complete set of pull requests for
	// one repository, covering all states. Any upstream error aborts
	// the whole fetch; partial results are never returned.
	FetchPullRequests(ctx context.Context, owner, repo string) ([]domain.PullRequestRecord, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	client *github.Client
	logger *zap.Logger
}

// NewGitHubGateway creates a gateway authenticated with the given
// token. Requests go through a rate-limit-aware transport that sleeps
// through secondary rate limits instead of failing the run.
func NewGitHubGateway(token string, logger *zap.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		client: github.NewClient(httpClient),
		logger: logger,
	}, nil
}

// FetchPullRequests lists every pull request of owner/repo in creation
// order (newest first) and normalizes each into a flat record. Listing
// and per-PR enrichment calls are issued sequentially; expected volumes
// are a few thousand records.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context, owner, repo string) ([]domain.PullRequestRecord, error) {
	g.logger.Info("starting pull request fetch",
		zap.String("repository", owner+"/"+repo))

	opts := &github.PullRequestListOptions{
		State:       "all",
		Sort:        "created",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	var records []domain.PullRequestRecord
	for page := 1; ; page++ {
		opts.Page = page
		prs, _, err := g.client.PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list pull requests (page %d): %w", page, err)
		}

		for _, pr := range prs {
			record, err := g.buildRecord(ctx, owner, repo, pr)
			if err != nil {
				return nil, err
			}
			if record == nil {
				continue // skipped malformed record, already logged
			}
			records = append(records, *record)
		}

		g.logger.Debug("fetched page", zap.Int("page", page), zap.Int("items", len(prs)))
		if len(prs) < pageSize {
			break
		}
	}

	g.logger.Info("completed pull request fetch", zap.Int("total", len(records)))
	return records, nil
}

// buildRecord normalizes one listed pull request, issuing the secondary
// per-PR queries for size counters and review counts. A nil record with
// nil error means the item was malformed and skipped.
func (g *GitHubGateway) buildRecord(ctx context.Context, owner, repo string, pr *github.PullRequest) (*domain.PullRequestRecord, error) {
	number := pr.GetNumber()
	if number == 0 {
		// The PR number is the identity field; without it the snapshot
		// cannot be trusted.
		return nil, fmt.Errorf("pull request without a number in %s/%s listing", owner, repo)
	}
	if pr.User == nil || pr.User.GetLogin() == "" {
		g.logger.Warn("skipping pull request without an author", zap.Int("number", number))
		return nil, nil
	}

	// The listing payload omits size counters and comment totals; a
	// secondary query per PR fills them in.
	full, _, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull request #%d: %w", number, err)
	}

	reviewCount, err := g.countReviews(ctx, owner, repo, number)
	if err != nil {
		return nil, err
	}

	record := domain.PullRequestRecord{
		Number:       number,
		Title:        g.sanitizeText(number, "title", full.GetTitle()),
		Author:       g.sanitizeText(number, "author", pr.User.GetLogin()),
		CreatedAt:    full.GetCreatedAt().Time,
		ChangedFiles: full.GetChangedFiles(),
		Additions:    full.GetAdditions(),
		Deletions:    full.GetDeletions(),
		ReviewCount:  reviewCount,
		CommentCount: full.GetComments() + full.GetReviewComments(),
	}
	if full.ClosedAt != nil {
		t := full.ClosedAt.Time
		record.ClosedAt = &t
	}
	if full.MergedAt != nil {
		t := full.MergedAt.Time
		record.MergedAt = &t
		record.TimeToMergeHours = roundHours(t.Sub(record.CreatedAt).Hours())
	}
	record.State = domain.StateFor(record.ClosedAt, record.MergedAt)

	for _, label := range full.Labels {
		if name := label.GetName(); name != "" {
			record.Labels = append(record.Labels, name)
		}
	}

	return &record, nil
}

// countReviews returns the total number of review actions on a PR,
// regardless of review outcome.
func (g *GitHubGateway) countReviews(ctx context.Context, owner, repo string, number int) (int, error) {
	opts := &github.ListOptions{PerPage: pageSize}
	count := 0
	for page := 1; ; page++ {
		opts.Page = page
		reviews, _, err := g.client.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return 0, fmt.Errorf("failed to list reviews for #%d: %w", number, err)
		}
		count += len(reviews)
		if len(reviews) < pageSize {
			return count, nil
		}
	}
}

// sanitizeText passes arbitrary upstream text through unchanged unless
// it is not valid UTF-8, in which case invalid sequences become the
// replacement character and the occurrence is logged. This is never a
// reason to abort the run.
func (g *GitHubGateway) sanitizeText(number int, field, text string) string {
	valid := strings.ToValidUTF8(text, "�")
	if valid != text {
		g.logger.Warn("replaced invalid UTF-8 in upstream text",
			zap.Int("number", number), zap.String("field", field))
	}
	return valid
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
