// Copyright Claudio Mattera 2019-2026.
//
// Distributed under the MIT License.

package release

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/datawire/dlib/dlog"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/claudiomattera/temperature-ds18s20-stanley-driver/pkg/reproducible"
)

// WriteTarball exports the tree of a commit as a gzipped tarball, like
// `git archive --format tar.gz`.  revision is anything the repository can
// resolve (a tag name, a branch, a hash); the empty string means HEAD.
// Every entry is prefixed with prefix (pass "" for none) and carries the
// commit timestamp, clamped by SOURCE_DATE_EPOCH, so exporting the same
// tag twice yields identical bytes.
func WriteTarball(ctx context.Context, repoDir, revision, prefix string, w io.Writer) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("tarball: %w", err)
		}
	}()

	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		return err
	}

	var hash plumbing.Hash
	if revision == "" {
		head, err := repo.Head()
		if err != nil {
			return err
		}
		hash = head.Hash()
	} else {
		resolved, err := repo.ResolveRevision(plumbing.Revision(revision))
		if err != nil {
			return err
		}
		hash = *resolved
	}

	commit, err := repo.CommitObject(hash)
	if err != nil {
		return err
	}
	tree, err := commit.Tree()
	if err != nil {
		return err
	}

	modTime := reproducible.Clamp(commit.Committer.When.UTC())
	dlog.Debugf(ctx, "exporting %s (%s) with entry timestamp %s",
		revision, hash, modTime)

	gzWriter := gzip.NewWriter(w)
	tarWriter := tar.NewWriter(gzWriter)

	if prefix != "" {
		if err := tarWriter.WriteHeader(&tar.Header{
			Typeflag: tar.TypeDir,
			Name:     prefix + "/",
			Mode:     0o755,
			ModTime:  modTime,
		}); err != nil {
			return err
		}
	}

	// Tree iteration order is git's own sorted order, which keeps the
	// output stable.
	err = tree.Files().ForEach(func(file *object.File) error {
		return writeEntry(tarWriter, file, prefix, modTime)
	})
	if err != nil {
		return err
	}

	if err := tarWriter.Close(); err != nil {
		return err
	}
	return gzWriter.Close()
}

func writeEntry(tarWriter *tar.Writer, file *object.File, prefix string, modTime time.Time) error {
	name := file.Name
	if prefix != "" {
		name = prefix + "/" + name
	}

	header := &tar.Header{
		Name:    name,
		ModTime: modTime,
	}

	switch file.Mode {
	case filemode.Symlink:
		target, err := file.Contents()
		if err != nil {
			return err
		}
		header.Typeflag = tar.TypeSymlink
		header.Linkname = target
		header.Mode = 0o777
		return tarWriter.WriteHeader(header)
	case filemode.Executable:
		header.Mode = 0o755
	default:
		header.Mode = 0o644
	}
	header.Typeflag = tar.TypeReg
	header.Size = file.Size

	if err := tarWriter.WriteHeader(header); err != nil {
		return err
	}
	reader, err := file.Reader()
	if err != nil {
		return err
	}
	if _, err := io.Copy(tarWriter, reader); err != nil {
		_ = reader.Close()
		return err
	}
	return reader.Close()
}
