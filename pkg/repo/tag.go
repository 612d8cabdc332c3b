package repo

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/odvcencio/wit/pkg/object"
)

// TagSigner signs canonical tag payload bytes and returns an encoded
// signature string to be stored under object.SignatureKey.
type TagSigner func(payload []byte) (string, error)

// CreateTag creates or updates a lightweight tag ref under refs/tags/.
func (r *Repo) CreateTag(name string, target object.Hash, force bool) error {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	if strings.TrimSpace(string(target)) == "" {
		return fmt.Errorf("create tag: target hash is required")
	}

	refName := "refs/tags/" + name
	if !force {
		if _, err := r.ResolveRef(refName); err == nil {
			return fmt.Errorf("create tag: tag %q already exists", name)
		}
	}
	if err := r.UpdateRef(refName, target); err != nil {
		return fmt.Errorf("create tag: %w", err)
	}
	return nil
}

// CreateAnnotatedTag writes a tag object pointing at target and a ref under
// refs/tags/ pointing at the tag object. The tag is signed when signer is
// non-nil.
func (r *Repo) CreateAnnotatedTag(name string, target object.Hash, tagger, message string, force bool, signer TagSigner) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", fmt.Errorf("create annotated tag: %w", err)
	}
	message = normalizeMessage(message)
	if message == "" {
		return "", fmt.Errorf("create annotated tag: message is required")
	}

	targetObj, err := r.Read(target)
	if err != nil {
		return "", fmt.Errorf("create annotated tag: read target %s: %w", target, err)
	}

	refName := "refs/tags/" + name
	if !force {
		if _, err := r.ResolveRef(refName); err == nil {
			return "", fmt.Errorf("create annotated tag: tag %q already exists", name)
		}
	}

	now := time.Now()
	tag := object.NewTag(r)
	tag.KVLM.Add("object", string(object.NormalizeHash(string(target))))
	tag.KVLM.Add("type", string(targetObj.Type()))
	tag.KVLM.Add("tag", name)
	tag.KVLM.Add("tagger", fmt.Sprintf("%s %d %s", r.identity(tagger), now.Unix(), formatTimezoneOffset(now)))
	tag.KVLM.Message = message

	if signer != nil {
		signature, err := signer(object.TagSigningPayload(tag))
		if err != nil {
			return "", fmt.Errorf("create annotated tag: sign tag: %w", err)
		}
		tag.KVLM.Add(object.SignatureKey, signature)
	}

	tagHash, err := r.Write(tag)
	if err != nil {
		return "", fmt.Errorf("create annotated tag: write tag object: %w", err)
	}
	if err := r.UpdateRef(refName, tagHash); err != nil {
		return "", fmt.Errorf("create annotated tag: %w", err)
	}
	return tagHash, nil
}

// DeleteTag removes a tag ref from refs/tags/. The tag object, if any, stays.
func (r *Repo) DeleteTag(name string) error {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}

	if err := os.Remove(r.Path("refs", "tags", name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("delete tag: tag %q does not exist", name)
		}
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

// ResolveTag resolves a tag name under refs/tags/.
func (r *Repo) ResolveTag(name string) (object.Hash, error) {
	name = strings.TrimSpace(name)
	if err := validateTagName(name); err != nil {
		return "", fmt.Errorf("resolve tag: %w", err)
	}
	return r.ResolveRef("refs/tags/" + name)
}

// ListTags lists tag names sorted alphabetically.
func (r *Repo) ListTags() ([]string, error) {
	refs, err := r.ListRefs("tags")
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	names := make([]string, 0, len(refs))
	for full := range refs {
		names = append(names, strings.TrimPrefix(full, "tags/"))
	}
	sort.Strings(names)
	return names, nil
}

func validateTagName(name string) error {
	if name == "" {
		return fmt.Errorf("tag name is required")
	}
	if strings.ContainsAny(name, "/\\ \t\n\r") || strings.Contains(name, "..") || strings.HasSuffix(name, ".lock") {
		return fmt.Errorf("invalid tag name %q", name)
	}
	return nil
}
