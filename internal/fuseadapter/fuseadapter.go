// Package fuseadapter exposes a repository.Repository as a bazil.org/fuse
// filesystem: Dir and File nodes that translate FUSE operations into the
// repository's Get/ListChildren/HasChildren/Mkdir/Remove/Rename calls.
// Grounded on the
// teacher's internal/fs package (dir.go, file.go, unsorted.go,
// interfaces.go), generalized from a single fixed source directory to an
// arbitrary virtual-path repository.
package fuseadapter

import (
	"context"
	"io"
	"os"
	"strconv"
	"sync"
	"syscall"

	"github.com/msojda/repository/internal/errs"
	"github.com/msojda/repository/internal/logging"
	"github.com/msojda/repository/internal/pathutil"
	"github.com/msojda/repository/internal/repository"
	"github.com/msojda/repository/internal/resource"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"
)

var logger = logging.GetLogger().WithPrefix("fuseadapter")

// FS is the bazil.org/fuse filesystem rooted at the repository's "/".
type FS struct {
	repo *repository.Repository
	uid  uint32
	gid  uint32
}

// New creates an FS serving repo. UID/GID default to the current process's,
// overridable via PUID/PGID, matching the teacher's container-friendly
// convention.
func New(repo *repository.Repository) *FS {
	uid := uint32(os.Getuid())
	gid := uint32(os.Getgid())

	if v := os.Getenv("PUID"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			uid = uint32(n)
		}
	}
	if v := os.Getenv("PGID"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			gid = uint32(n)
		}
	}

	return &FS{repo: repo, uid: uid, gid: gid}
}

// Root implements fusefs.FS.
func (f *FS) Root() (fusefs.Node, error) {
	return &Dir{fs: f, path: pathutil.Root}, nil
}

// Dir is a directory node backed by a virtual path, whether it resolves
// to a real on-disk directory, a virtual alias, or nothing on disk yet.
type Dir struct {
	fs   *FS
	path string
	mu   sync.RWMutex
}

func (d *Dir) Attr(_ context.Context, a *fuse.Attr) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a.Mode = os.ModeDir | 0o755
	a.Uid = d.fs.uid
	a.Gid = d.fs.gid

	res, err := d.fs.repo.Get(d.path)
	if err == nil && res.FsPath != "" {
		if info, statErr := os.Stat(res.FsPath); statErr == nil {
			a.Mtime = info.ModTime()
			a.Atime = info.ModTime()
			a.Ctime = info.ModTime()
		}
	}
	return nil
}

func (d *Dir) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	childPath := pathutil.Join(d.path, name)
	logger.Debug("lookup %q in %q", name, d.path)

	res, err := d.fs.repo.Get(childPath)
	if err != nil {
		if errs.Is(err, errs.ResourceNotFound) {
			return nil, syscall.ENOENT
		}
		return nil, toFuseError(err)
	}

	if res.Kind == resource.KindDirectory || res.Kind == resource.KindGeneric {
		return &Dir{fs: d.fs, path: childPath}, nil
	}
	return &File{fs: d.fs, path: childPath, fsPath: res.FsPath}, nil
}

func (d *Dir) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	logger.Debug("readdir %q", d.path)

	entries, err := d.fs.repo.ListChildren(d.path)
	if err != nil {
		return nil, toFuseError(err)
	}

	dirents := make([]fuse.Dirent, 0, len(entries)+2)
	dirents = append(dirents,
		fuse.Dirent{Name: ".", Type: fuse.DT_Dir},
		fuse.Dirent{Name: "..", Type: fuse.DT_Dir},
	)

	for _, entry := range entries {
		name := pathutil.Base(entry.VirtualPath)
		dt := fuse.DT_File
		if entry.Kind == resource.KindDirectory {
			dt = fuse.DT_Dir
		}
		dirents = append(dirents, fuse.Dirent{Name: name, Type: dt})
	}
	return dirents, nil
}

// Mkdir creates a virtual-only directory: a store key with an empty target
// stack, anchoring the tree without a backing file, per spec.md §3's
// "present-with-stack" (here, an empty stack) state.
func (d *Dir) Mkdir(_ context.Context, req *fuse.MkdirRequest) (fusefs.Node, error) {
	childPath := pathutil.Join(d.path, req.Name)
	logger.Info("mkdir %q", childPath)

	if err := d.fs.repo.Mkdir(childPath); err != nil {
		return nil, toFuseError(err)
	}
	return &Dir{fs: d.fs, path: childPath}, nil
}

func (d *Dir) Remove(_ context.Context, req *fuse.RemoveRequest) error {
	childPath := pathutil.Join(d.path, req.Name)
	logger.Info("remove %q (isDir=%v)", childPath, req.Dir)

	if req.Dir {
		if has, err := d.fs.repo.HasChildren(childPath); err == nil && has {
			return syscall.ENOTEMPTY
		}
	}

	if _, err := d.fs.repo.Remove(childPath); err != nil {
		return toFuseError(err)
	}
	return nil
}

// Rename moves the mapping at oldName to newName under newDirNode, via
// Repository.Rename. The adapter only translates the FUSE request into old
// and new virtual paths; the key remapping itself is done by the
// repository, unlike the teacher's Dir.Rename, which rewrote a PathMapper
// directly.
func (d *Dir) Rename(_ context.Context, req *fuse.RenameRequest, newDir fusefs.Node) error {
	newDirNode, ok := newDir.(*Dir)
	if !ok {
		return syscall.EXDEV
	}

	oldPath := pathutil.Join(d.path, req.OldName)
	newPath := pathutil.Join(newDirNode.path, req.NewName)
	logger.Info("rename %q -> %q", oldPath, newPath)

	if _, err := d.fs.repo.Rename(oldPath, newPath); err != nil {
		return toFuseError(err)
	}
	return nil
}

// Getxattr, Setxattr, Listxattr, and Removexattr let extended attributes
// attach to a virtual directory's own mapping, the same way File does for
// leaf resources.
func (d *Dir) Getxattr(_ context.Context, req *fuse.GetxattrRequest, resp *fuse.GetxattrResponse) error {
	value, ok := d.fs.repo.Xattrs().Get(d.path, req.Name)
	if !ok {
		return fuse.ErrNoXattr
	}
	resp.Xattr = value
	return nil
}

func (d *Dir) Setxattr(_ context.Context, req *fuse.SetxattrRequest) error {
	d.fs.repo.Xattrs().Set(d.path, req.Name, req.Xattr)
	return nil
}

func (d *Dir) Listxattr(_ context.Context, _ *fuse.ListxattrRequest, resp *fuse.ListxattrResponse) error {
	for _, name := range d.fs.repo.Xattrs().List(d.path) {
		resp.Append(name)
	}
	return nil
}

func (d *Dir) Removexattr(_ context.Context, req *fuse.RemovexattrRequest) error {
	if !d.fs.repo.Xattrs().Remove(d.path, req.Name) {
		return fuse.ErrNoXattr
	}
	return nil
}

// File is a leaf node backed by a resolved filesystem path.
type File struct {
	fs     *FS
	path   string
	fsPath string
	mu     sync.RWMutex
}

func (f *File) Attr(_ context.Context, a *fuse.Attr) error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	info, err := os.Stat(f.fsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return syscall.ENOENT
		}
		return err
	}

	a.Mode = info.Mode()
	a.Size = uint64(info.Size())
	a.Mtime = info.ModTime()
	a.Atime = info.ModTime()
	a.Ctime = info.ModTime()
	a.Uid = f.fs.uid
	a.Gid = f.fs.gid
	a.BlockSize = 4096
	a.Blocks = uint64((info.Size() + 511) / 512)
	return nil
}

func (f *File) Open(_ context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	flags := int(req.Flags)
	if flags&os.O_WRONLY != 0 || flags&os.O_RDWR != 0 {
		return nil, syscall.EPERM
	}

	file, err := os.OpenFile(f.fsPath, flags, 0)
	if err != nil {
		return nil, err
	}

	resp.Flags |= fuse.OpenDirectIO
	return &FileHandle{file: file, path: f.path}, nil
}

func (f *File) Getxattr(_ context.Context, req *fuse.GetxattrRequest, resp *fuse.GetxattrResponse) error {
	value, ok := f.fs.repo.Xattrs().Get(f.path, req.Name)
	if !ok {
		return fuse.ErrNoXattr
	}
	resp.Xattr = value
	return nil
}

func (f *File) Setxattr(_ context.Context, req *fuse.SetxattrRequest) error {
	f.fs.repo.Xattrs().Set(f.path, req.Name, req.Xattr)
	return nil
}

func (f *File) Listxattr(_ context.Context, _ *fuse.ListxattrRequest, resp *fuse.ListxattrResponse) error {
	for _, name := range f.fs.repo.Xattrs().List(f.path) {
		resp.Append(name)
	}
	return nil
}

func (f *File) Removexattr(_ context.Context, req *fuse.RemovexattrRequest) error {
	if !f.fs.repo.Xattrs().Remove(f.path, req.Name) {
		return fuse.ErrNoXattr
	}
	return nil
}

// FileHandle wraps an open file descriptor on the resolved fs path.
type FileHandle struct {
	file *os.File
	path string
	mu   sync.RWMutex
}

func (fh *FileHandle) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	fh.mu.RLock()
	defer fh.mu.RUnlock()

	resp.Data = make([]byte, req.Size)
	n, err := fh.file.ReadAt(resp.Data, req.Offset)
	if err != nil && err != io.EOF {
		return err
	}
	resp.Data = resp.Data[:n]
	return nil
}

func (fh *FileHandle) Release(_ context.Context, _ *fuse.ReleaseRequest) error {
	fh.mu.Lock()
	defer fh.mu.Unlock()
	return fh.file.Close()
}

// toFuseError converts a repository-level error into the syscall error
// FUSE expects, mirroring the teacher's ToFuseError but driven by the
// repository's own error taxonomy instead of a FUSE-specific one.
func toFuseError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errs.Is(err, errs.InvalidPath):
		return syscall.EINVAL
	case errs.Is(err, errs.ResourceNotFound):
		return syscall.ENOENT
	case errs.Is(err, errs.UnsupportedLanguage), errs.Is(err, errs.UnsupportedResource):
		return syscall.EINVAL
	case errs.Is(err, errs.UnsupportedOperation):
		return syscall.EPERM
	default:
		logger.Error("unmapped repository error: %v", err)
		return syscall.EIO
	}
}
