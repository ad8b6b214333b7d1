package store

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"
	"github.com/router-for-me/MailRelayGateway/internal/models"
)

// GitHubStore keeps the collection as one file in a GitHub repository. The
// contents API blob SHA is the version marker: an update conditioned on a
// stale SHA is rejected by the host, which is the whole concurrency story.
// Each save's change description becomes the commit message.
type GitHubStore struct {
	client *github.Client
	owner  string
	repo   string
	path   string
	branch string
}

// NewGitHubClient builds an authenticated GitHub API client.
func NewGitHubClient(token string) *github.Client {
	return github.NewClient(nil).WithAuthToken(token)
}

// NewGitHubStore constructs a GitHubStore over an existing client.
func NewGitHubStore(client *github.Client, owner, repo, path, branch string) *GitHubStore {
	return &GitHubStore{client: client, owner: owner, repo: repo, path: path, branch: branch}
}

// Load fetches the document and its blob SHA from the contents API.
func (s *GitHubStore) Load(ctx context.Context) (models.Collection, string, error) {
	file, _, resp, errGet := s.client.Repositories.GetContents(ctx, s.owner, s.repo, s.path, &github.RepositoryContentGetOptions{Ref: s.branch})
	if errGet != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, "", fmt.Errorf("%w: %s/%s:%s@%s", ErrNotFound, s.owner, s.repo, s.path, s.branch)
		}
		return nil, "", fmt.Errorf("%w: github get contents: %v", ErrUnavailable, errGet)
	}
	if file == nil {
		return nil, "", fmt.Errorf("%w: github path %s is not a file", ErrUnavailable, s.path)
	}

	body, errContent := file.GetContent()
	if errContent != nil {
		return nil, "", fmt.Errorf("store: github decode content: %w", errContent)
	}
	users, errDecode := decodeCollection([]byte(body))
	if errDecode != nil {
		return nil, "", errDecode
	}
	return users, file.GetSHA(), nil
}

// Save writes the document back conditioned on the blob SHA.
func (s *GitHubStore) Save(ctx context.Context, users models.Collection, version, message string) error {
	data, errEncode := encodeCollection(users)
	if errEncode != nil {
		return errEncode
	}

	opts := &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: data,
		SHA:     github.String(version),
		Branch:  github.String(s.branch),
	}
	_, resp, errPut := s.client.Repositories.UpdateFile(ctx, s.owner, s.repo, s.path, opts)
	if errPut != nil {
		// GitHub answers 409 when the SHA is stale, 422 when it does not
		// reference the current blob at all.
		if resp != nil && (resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity) {
			return fmt.Errorf("%w: %v", ErrConflict, errPut)
		}
		return fmt.Errorf("%w: github update contents: %v", ErrUnavailable, errPut)
	}
	return nil
}
