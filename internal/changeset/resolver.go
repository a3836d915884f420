package changeset

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/shipwright/internal/logfields"
)

// Resolver computes change sets from a local git repository.
type Resolver struct {
	repoPath string
}

// NewResolver creates a resolver over the repository at repoPath.
func NewResolver(repoPath string) *Resolver { return &Resolver{repoPath: repoPath} }

// Resolve computes the paths that differ between prevRef and currentRef.
// prevRef may be empty (first run); that and every failure mode (bad ref,
// diff error, context timeout) yields the All sentinel rather than an
// error. Idempotent for a fixed commit pair.
func (r *Resolver) Resolve(ctx context.Context, prevRef, currentRef string) ChangeSet {
	if prevRef == "" {
		slog.Info("No previous ref, treating all paths as changed", logfields.Ref(currentRef))
		return All()
	}

	cs, err := r.diff(ctx, prevRef, currentRef)
	if err != nil {
		slog.Warn("Change set diff failed, falling back to full rebuild",
			logfields.Ref(prevRef), logfields.Error(err))
		return All()
	}
	return cs
}

func (r *Resolver) diff(ctx context.Context, prevRef, currentRef string) (ChangeSet, error) {
	repo, err := git.PlainOpen(r.repoPath)
	if err != nil {
		return ChangeSet{}, fmt.Errorf("open repository: %w", err)
	}

	prevTree, err := treeAt(repo, prevRef)
	if err != nil {
		return ChangeSet{}, fmt.Errorf("resolve %s: %w", prevRef, err)
	}
	currentTree, err := treeAt(repo, currentRef)
	if err != nil {
		return ChangeSet{}, fmt.Errorf("resolve %s: %w", currentRef, err)
	}

	changes, err := object.DiffTreeWithOptions(ctx, prevTree, currentTree, object.DefaultDiffTreeOptions)
	if err != nil {
		return ChangeSet{}, fmt.Errorf("diff trees: %w", err)
	}

	paths := make([]string, 0, len(changes))
	for _, change := range changes {
		// Renames carry distinct from/to names; both sides count as changed.
		if change.From.Name != "" {
			paths = append(paths, change.From.Name)
		}
		if change.To.Name != "" && change.To.Name != change.From.Name {
			paths = append(paths, change.To.Name)
		}
	}
	return FromPaths(paths), nil
}

func treeAt(repo *git.Repository, rev string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, err
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("get commit object: %w", err)
	}
	return commit.Tree()
}
