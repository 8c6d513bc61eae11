/*
Copyright © 2025 Pkgsmith, Inc.

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

// Package github wraps the forge API calls the checker depends on: reading
// a pull request's diff, checking organization membership, and posting the
// report back as a comment.
package github

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/go-github/v70/github"
)

// New builds a client from an explicit token, falling back to GITHUB_TOKEN,
// falling back to an unauthenticated client. Membership checks only look at
// public membership, so the default CI token is enough.
func New(token string) *Client {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return NewUnauthenticated()
	}

	return &Client{
		gh: github.NewClient(nil).WithAuthToken(token),
	}
}

func NewUnauthenticated() *Client {
	return &Client{
		gh: github.NewClient(nil),
	}
}

type Client struct {
	gh *github.Client
}

// PullRequestDiff returns the raw unified diff for a pull request.
func (c *Client) PullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	for {
		raw, _, err := c.gh.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{Type: github.Diff})
		if sleepOnRateLimitError(ctx, err) {
			continue
		}

		return raw, err
	}
}

// IsPublicMember reports whether the user is a publicly visible member of
// the organization. A 404 means "not a member", not an error.
func (c *Client) IsPublicMember(ctx context.Context, org, user string) (bool, error) {
	for {
		member, _, err := c.gh.Organizations.IsPublicMember(ctx, org, user)
		if sleepOnRateLimitError(ctx, err) {
			continue
		}

		return member, err
	}
}

// CreateComment posts the rendered report on the pull request.
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	for {
		_, _, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
			Body: github.Ptr(body),
		})
		if sleepOnRateLimitError(ctx, err) {
			continue
		}

		return err
	}
}

func sleepOnRateLimitError(ctx context.Context, err error) bool {
	var rateLimitErr *github.RateLimitError
	if !errors.As(err, &rateLimitErr) {
		return false
	}

	sleepDelay := time.Until(rateLimitErr.Rate.Reset.Time)
	fmt.Printf("Rate limit exceeded, waiting %d seconds for reset...\n", int64(sleepDelay.Seconds()))

	select {
	case <-ctx.Done():
	case <-time.After(sleepDelay):
	}

	return true
}
