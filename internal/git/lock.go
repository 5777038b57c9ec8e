package git

import "sync"

// repoLocks is a global lock registry keyed by canonical repo path.
var repoLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{locks: make(map[string]*sync.Mutex)}

// getRepoLock returns (or creates) a mutex for the given repo path.
// The path must be canonical (absolute, resolved symlinks, cleaned).
func getRepoLock(path string) *sync.Mutex {
	repoLocks.Lock()
	defer repoLocks.Unlock()
	if repoLocks.locks[path] == nil {
		repoLocks.locks[path] = &sync.Mutex{}
	}
	return repoLocks.locks[path]
}

// LockRepo serializes mutating operations against the repo at path (spec.md
// §5: concurrent mutations to the same repo must not race). Callers acquire
// it before any git call that touches the working tree or index and release
// it via the returned func on every exit path:
//
//	unlock := git.LockRepo(repo.Root)
//	defer unlock()
func LockRepo(path string) func() {
	lock := getRepoLock(path)
	lock.Lock()
	return lock.Unlock
}
