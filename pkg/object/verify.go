package object

import (
	"errors"
	"fmt"
	"os"
	"sort"
)

// VerifySummary reports the outcome of Verify.
type VerifySummary struct {
	LooseObjects int
	ByType       map[ObjectType]int
}

// Verify checks every loose object in repo: the file must decompress, its
// frame length must match, its type must be known and its content must hash
// to the name it is stored under.
func Verify(repo Repository) (*VerifySummary, error) {
	hashes, err := ListLoose(repo)
	if err != nil {
		return nil, err
	}

	report := &VerifySummary{ByType: make(map[ObjectType]int)}
	for _, h := range hashes {
		path, err := repo.File(false, "objects", string(h[:2]), string(h[2:]))
		if err != nil {
			return nil, WrapError(KindIO, err, "verify %s", h)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, WrapError(KindIO, err, "verify %s", h)
		}
		decoded, err := inflate(raw)
		if err != nil {
			return nil, WrapError(KindIO, err, "verify %s: decompress", h)
		}
		if actual := HashBytes(decoded); actual != h {
			return nil, Errorf(KindMalformedObject, "verify %s: hash mismatch (computed %s)", h, actual)
		}

		obj, err := Read(repo, h)
		if err != nil {
			return nil, fmt.Errorf("verify: %w", err)
		}
		report.ByType[obj.Type()]++
		report.LooseObjects++
	}
	return report, nil
}

// ListLoose returns the hashes of all loose objects in repo, sorted.
func ListLoose(repo Repository) ([]Hash, error) {
	objectsDir, err := repo.Dir(false, "objects")
	if err != nil {
		return nil, nil
	}
	fanoutDirs, err := os.ReadDir(objectsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, WrapError(KindIO, err, "read objects dir")
	}

	hashes := make([]Hash, 0)
	for _, fanoutDir := range fanoutDirs {
		if !fanoutDir.IsDir() {
			continue
		}
		prefix := fanoutDir.Name()
		if len(prefix) != 2 || !isHex(prefix) {
			continue
		}

		objectDir, err := repo.Dir(false, "objects", prefix)
		if err != nil {
			return nil, WrapError(KindIO, err, "read objects fanout %s", prefix)
		}
		entries, err := os.ReadDir(objectDir)
		if err != nil {
			return nil, WrapError(KindIO, err, "read objects fanout %s", prefix)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			name := prefix + entry.Name()
			if !IsHash(name) {
				continue
			}
			hashes = append(hashes, NormalizeHash(name))
		}
	}

	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i] < hashes[j]
	})
	return hashes, nil
}
