package repository

import "github.com/spf13/afero"

// FileSystemRepository is the filesystem run journals and fetch metadata are
// read from and written to.
type FileSystemRepository interface {
	afero.Fs
}

// NewOsFileSystem returns the host filesystem. Journal locks use real paths,
// so the journal must not be layered on a base-path or in-memory filesystem.
func NewOsFileSystem() FileSystemRepository {
	return afero.NewOsFs()
}
