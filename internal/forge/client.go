package forge

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/repoctl/repoctl/pkg/ratelimit"
)

// Client is the GitHub Forge Client (spec §4.1). A Client built by NewClient
// with an empty token operates in read-only-local mode: classify_owner/repo_exists are
// still served via unauthenticated requests, but create_repo/create_branch
// return a permission error and the Reconciler skips the remote-ensure step
// for that entry.
type Client struct {
	mu          sync.Mutex
	gh          *github.Client
	token       string
	authMode    AuthMode
	rateLimiter *ratelimit.Limiter
}

// NewClient builds a Client. token may be empty, in which case the Client
// runs in read-only-local mode (spec §4.1, §7).
func NewClient(token string, authMode AuthMode) *Client {
	c := &Client{
		token:       token,
		authMode:    authMode,
		rateLimiter: ratelimit.NewLimiter(5000),
	}
	c.initClient()
	return c
}

func (c *Client) initClient() {
	if c.token == "" {
		c.gh = github.NewClient(nil)
		return
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: c.token})
	httpClient := oauth2.NewClient(context.Background(), ts)
	c.gh = github.NewClient(httpClient)
}

// ReadOnly reports whether this Client has no credentials and can therefore
// only classify owners and check existence, never mutate the forge.
func (c *Client) ReadOnly() bool {
	return c.token == ""
}

// ValidateToken exercises the token against the authenticated-user endpoint.
// A malformed or empty response is reported as a retryable network error; an
// explicit "Bad credentials" / "Requires authentication" response is a hard
// invalid-token error that should not be retried (spec §4.1, §7).
func (c *Client) ValidateToken(ctx context.Context) error {
	if c.token == "" {
		return &Error{Kind: KindInvalidToken, Operation: "validate_token", Cause: fmt.Errorf("no token configured")}
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	_, resp, err := c.gh.Users.Get(ctx, "")
	if resp != nil {
		c.rateLimiter.UpdateFromHeaders(resp.Response)
	}
	if err == nil {
		return nil
	}

	msg := err.Error()
	if strings.Contains(msg, "Bad credentials") || strings.Contains(msg, "Requires authentication") {
		return &Error{Kind: KindInvalidToken, Operation: "validate_token", Cause: err}
	}
	return &Error{Kind: KindNetwork, Operation: "validate_token", Cause: err}
}

// ClassifyOwner reports whether owner is a user or an organization, which
// determines which endpoint create_repo must call (spec §4.1). It reads the
// "type" field off the user-info response (GitHub's GET /users/{username}
// reports "User" or "Organization" there); if that field is absent or
// unrecognized, it returns OwnerUnknown rather than guessing.
func (c *Client) ClassifyOwner(ctx context.Context, owner string) (OwnerKind, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	user, resp, err := c.gh.Users.Get(ctx, owner)
	if resp != nil {
		c.rateLimiter.UpdateFromHeaders(resp.Response)
	}
	if err != nil {
		return "", classifyAPIError("classify_owner", owner, "", err, resp)
	}

	switch user.GetType() {
	case "Organization":
		return OwnerOrg, nil
	case "User":
		return OwnerUser, nil
	default:
		return OwnerUnknown, nil
	}
}

// RepoExists reports whether owner/repo exists on GitHub.
func (c *Client) RepoExists(ctx context.Context, owner, repo string) (bool, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return false, err
	}

	_, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if resp != nil {
		c.rateLimiter.UpdateFromHeaders(resp.Response)
	}
	if err == nil {
		return true, nil
	}
	if isNotFound(resp) {
		return false, nil
	}
	return false, classifyAPIError("repo_exists", owner, repo, err, resp)
}

// CreateRepo creates owner/repo with the given visibility and an initial
// commit (auto_init), so the default branch exists for create_branch to
// target (spec §4.1, §4.5).
func (c *Client) CreateRepo(ctx context.Context, owner, repo string, kind OwnerKind, vis Visibility) error {
	if c.ReadOnly() {
		return &Error{Kind: KindPermission, Operation: "create_repo", Owner: owner, Repo: repo,
			Cause: fmt.Errorf("no credentials configured, running read-only-local")}
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	newRepo := &github.Repository{
		Name:     github.String(repo),
		Private:  github.Bool(vis == VisibilityPrivate),
		AutoInit: github.Bool(true),
	}

	org := ""
	if kind == OwnerOrg {
		org = owner
	}

	_, resp, err := c.gh.Repositories.Create(ctx, org, newRepo)
	if resp != nil {
		c.rateLimiter.UpdateFromHeaders(resp.Response)
	}
	if err == nil {
		return nil
	}
	if isAlreadyExists(err) {
		return &Error{Kind: KindAlreadyExists, Operation: "create_repo", Owner: owner, Repo: repo, Cause: err}
	}
	return classifyAPIError("create_repo", owner, repo, err, resp)
}

// BranchExists reports whether branch exists on owner/repo's remote.
func (c *Client) BranchExists(ctx context.Context, owner, repo, branch string) (bool, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return false, err
	}

	_, resp, err := c.gh.Repositories.GetBranch(ctx, owner, repo, branch, 0)
	if resp != nil {
		c.rateLimiter.UpdateFromHeaders(resp.Response)
	}
	if err == nil {
		return true, nil
	}
	if isNotFound(resp) {
		return false, nil
	}
	return false, classifyAPIError("branch_exists", owner, repo, err, resp)
}

// CreateBranch creates branch on owner/repo, pointed at the tip of the
// repository's default branch (spec §4.1: reads the default branch, reads
// its tip SHA, then POSTs a new ref).
func (c *Client) CreateBranch(ctx context.Context, owner, repo, branch string) error {
	if c.ReadOnly() {
		return &Error{Kind: KindPermission, Operation: "create_branch", Owner: owner, Repo: repo,
			Cause: fmt.Errorf("no credentials configured, running read-only-local")}
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return err
	}

	repoInfo, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if resp != nil {
		c.rateLimiter.UpdateFromHeaders(resp.Response)
	}
	if err != nil {
		return classifyAPIError("create_branch", owner, repo, err, resp)
	}

	defaultBranch := repoInfo.GetDefaultBranch()

	ref, resp, err := c.gh.Git.GetRef(ctx, owner, repo, "refs/heads/"+defaultBranch)
	if resp != nil {
		c.rateLimiter.UpdateFromHeaders(resp.Response)
	}
	if err != nil {
		return classifyAPIError("create_branch", owner, repo, err, resp)
	}

	newRef := &github.Reference{
		Ref:    github.String("refs/heads/" + branch),
		Object: &github.GitObject{SHA: ref.Object.SHA},
	}

	_, resp, err = c.gh.Git.CreateRef(ctx, owner, repo, newRef)
	if resp != nil {
		c.rateLimiter.UpdateFromHeaders(resp.Response)
	}
	if err == nil {
		return nil
	}
	if isAlreadyExists(err) {
		return &Error{Kind: KindAlreadyExists, Operation: "create_branch", Owner: owner, Repo: repo, Cause: err}
	}
	return classifyAPIError("create_branch", owner, repo, err, resp)
}

// Status reports the Client's current rate-limit view, for verbose logging.
func (c *Client) Status() RateLimitStatus {
	remaining, limit, reset := c.rateLimiter.Status()
	return RateLimitStatus{Remaining: remaining, Limit: limit, ResetAt: reset}
}

func isNotFound(resp *github.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusNotFound
}

func isAlreadyExists(err error) bool {
	return strings.Contains(err.Error(), "already exists") || strings.Contains(err.Error(), "name already exists")
}

func classifyAPIError(op, owner, repo string, err error, resp *github.Response) *Error {
	kind := KindOther
	switch {
	case resp == nil:
		kind = KindNetwork
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		kind = KindRateLimited
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		kind = KindPermission
	case resp.StatusCode >= 500:
		kind = KindNetwork
	}
	return &Error{Kind: kind, Operation: op, Owner: owner, Repo: repo, Cause: err}
}
