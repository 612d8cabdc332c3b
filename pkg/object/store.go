package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/klauspost/compress/zlib"
	"go.uber.org/multierr"

	"github.com/odvcencio/wit/pkg/scan"
)

// CompressionLeveler is implemented by repositories that configure the zlib
// level used for new objects. Repositories without it get zlib's default.
type CompressionLeveler interface {
	CompressionLevel() int
}

// Read loads the object stored under h. The on-disk format is the zlib
// compressed frame "type len\0content" at objects/<h[:2]>/<h[2:]>. The
// declared length is checked against the payload on every read.
func Read(repo Repository, h Hash) (Object, error) {
	if repo == nil {
		return nil, Errorf(KindRepoNotFound, "object read %s: no repository", h)
	}
	if !IsHash(string(h)) {
		return nil, Errorf(KindEncoding, "object read %q: not a %d-character hex digest", h, HashSize)
	}
	h = NormalizeHash(string(h))

	path, err := repo.File(false, "objects", string(h[:2]), string(h[2:]))
	if err != nil {
		return nil, WrapError(KindIO, err, "object read %s", h)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapError(KindIO, err, "object read %s", h)
	}
	decoded, err := inflate(raw)
	if err != nil {
		return nil, WrapError(KindIO, err, "object read %s: decompress", h)
	}

	objType, payload, err := parseFrame(decoded)
	if err != nil {
		var oe *Error
		if errors.As(err, &oe) {
			oe.Msg = fmt.Sprintf("object read %s: %s", h, oe.Msg)
			return nil, oe
		}
		return nil, err
	}

	obj, err := Build(objType, repo, payload)
	if err != nil {
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return obj, nil
}

// parseFrame splits "type len\0payload" and checks the declared length.
func parseFrame(decoded []byte) (ObjectType, []byte, error) {
	x, err := scan.Find(decoded, ' ')
	if err != nil {
		return "", nil, WrapError(KindMalformedObject, err, "missing type separator")
	}
	y, err := scan.FindFrom(decoded, 0, x)
	if err != nil {
		return "", nil, WrapError(KindMalformedObject, err, "missing header terminator")
	}

	kind := decoded[:x]
	if !utf8.Valid(kind) {
		return "", nil, Errorf(KindEncoding, "object type is not valid UTF-8")
	}
	lenField := decoded[x+1 : y]
	if !utf8.Valid(lenField) {
		return "", nil, Errorf(KindEncoding, "object length is not valid UTF-8")
	}
	size, err := strconv.ParseUint(string(lenField), 10, 64)
	if err != nil {
		return "", nil, WrapError(KindEncoding, err, "invalid length %q", lenField)
	}
	actual := len(decoded) - y - 1
	if size != uint64(actual) {
		return "", nil, Errorf(KindMalformedObject, "bad length (header=%d, actual=%d)", size, actual)
	}
	return ObjectType(kind), decoded[y+1:], nil
}

// Write serializes obj and returns its content hash. When persist is false
// only the hash is computed. When persist is true the compressed frame is
// written to the object's repository; writing an object that already exists
// is a no-op. Writes are atomic: data is written to a temp file and then
// renamed into place.
func Write(obj Object, persist bool) (Hash, error) {
	data, err := obj.Serialize()
	if err != nil {
		return "", fmt.Errorf("object write %s: %w", obj.Type(), err)
	}
	h := HashObject(obj.Type(), data)
	if !persist {
		return h, nil
	}

	repo := obj.Repo()
	if repo == nil {
		return "", Errorf(KindRepoNotFound, "object write %s: no repository for %s object", h, obj.Type())
	}
	if err := writeLoose(repo, h, Frame(obj.Type(), data)); err != nil {
		return "", err
	}
	return h, nil
}

func writeLoose(repo Repository, h Hash, frame []byte) (retErr error) {
	dest, err := repo.File(true, "objects", string(h[:2]), string(h[2:]))
	if err != nil {
		return WrapError(KindIO, err, "object write %s: mkdir", h)
	}

	// Fast path: content addressing makes an existing file identical.
	if Has(repo, h) {
		return nil
	}

	level := zlib.DefaultCompression
	if cl, ok := repo.(CompressionLeveler); ok {
		level = cl.CompressionLevel()
	}
	compressed, err := deflate(frame, level)
	if err != nil {
		return WrapError(KindIO, err, "object write %s: compress", h)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".tmp-*")
	if err != nil {
		return WrapError(KindIO, err, "object write %s: tmpfile", h)
	}
	tmpName := tmp.Name()
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(compressed); err != nil {
		return WrapError(KindIO, multierr.Append(err, tmp.Close()), "object write %s", h)
	}
	if err := tmp.Close(); err != nil {
		return WrapError(KindIO, err, "object write %s: close", h)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return WrapError(KindIO, err, "object write %s: rename", h)
	}
	return nil
}

// Build constructs an object of the given kind. Blobs and trees require data.
// Commits and tags are allocated empty and then populated from data when it
// is non-nil.
func Build(objType ObjectType, repo Repository, data []byte) (Object, error) {
	var obj Object
	switch objType {
	case TypeBlob:
		if data == nil {
			return nil, Errorf(KindMissingData, "data is required to construct a blob")
		}
		return NewBlob(repo, data), nil
	case TypeTree:
		if data == nil {
			return nil, Errorf(KindMissingData, "data is required to construct a tree")
		}
		obj = NewTree(repo)
	case TypeCommit:
		obj = NewCommit(repo)
	case TypeTag:
		obj = NewTag(repo)
	default:
		return nil, Errorf(KindUnknownObject, "unknown object type %q", string(objType))
	}
	if data == nil {
		return obj, nil
	}
	if err := obj.Deserialize(data); err != nil {
		return nil, err
	}
	return obj, nil
}

// HashFile builds an object of the given kind from the file at path and
// returns its hash, writing it to repo when persist is true.
func HashFile(repo Repository, path string, objType ObjectType, persist bool) (Hash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", WrapError(KindIO, err, "hash %s", path)
	}
	obj, err := Build(objType, repo, data)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return Write(obj, persist)
}

// Has reports whether repo holds a loose object for h.
func Has(repo Repository, h Hash) bool {
	if repo == nil || !IsHash(string(h)) {
		return false
	}
	h = NormalizeHash(string(h))
	path, err := repo.File(false, "objects", string(h[:2]), string(h[2:]))
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func deflate(raw []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(raw); err != nil {
		_ = zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(raw []byte) (out []byte, retErr error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer func() {
		retErr = multierr.Append(retErr, zr.Close())
	}()
	return io.ReadAll(zr)
}
