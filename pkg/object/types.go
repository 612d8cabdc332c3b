package object

// Hash is a 40-character lowercase hex-encoded SHA-1 digest of an object's
// framed bytes.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeCommit ObjectType = "commit"
	TypeTree   ObjectType = "tree"
	TypeTag    ObjectType = "tag"
)

// Valid reports whether t is one of the four object kinds.
func (t ObjectType) Valid() bool {
	switch t {
	case TypeBlob, TypeCommit, TypeTree, TypeTag:
		return true
	}
	return false
}

const (
	// Tree mode constants, in git's canonical spelling.
	TreeModeDir        = "40000"
	TreeModeFile       = "100644"
	TreeModeExecutable = "100755"
	TreeModeSymlink    = "120000"
	TreeModeGitlink    = "160000"
)

// Repository resolves logical paths inside a repository to filesystem
// locations. File returns the path of a file and, when create is true,
// creates its parent directories. Dir returns a directory path and, when
// create is true, creates it. Both fail when create is false and the path
// does not exist.
type Repository interface {
	File(create bool, parts ...string) (string, error)
	Dir(create bool, parts ...string) (string, error)
}

// Object is the capability set shared by blobs, trees, commits and tags.
// Serialize returns the payload only, without the "type len\0" header.
type Object interface {
	Type() ObjectType
	Serialize() ([]byte, error)
	Deserialize(data []byte) error
	Repo() Repository
}

// Blob holds raw file data.
type Blob struct {
	repo Repository
	Data []byte
}

// NewBlob returns a blob bound to repo. repo may be nil for hash-only use.
func NewBlob(repo Repository, data []byte) *Blob {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{repo: repo, Data: out}
}

func (b *Blob) Type() ObjectType { return TypeBlob }
func (b *Blob) Repo() Repository { return b.repo }

func (b *Blob) Serialize() ([]byte, error) {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out, nil
}

func (b *Blob) Deserialize(data []byte) error {
	b.Data = make([]byte, len(data))
	copy(b.Data, data)
	return nil
}

// TreeLeaf is one entry in a tree object.
type TreeLeaf struct {
	Mode string
	Path string
	Hash Hash
}

// IsDir reports whether the leaf points at a subtree.
func (l TreeLeaf) IsDir() bool {
	return canonicalMode(l.Mode) == TreeModeDir
}

// Tree holds an ordered list of leaves.
type Tree struct {
	repo   Repository
	Leaves []TreeLeaf
}

// NewTree returns an empty tree bound to repo.
func NewTree(repo Repository, leaves ...TreeLeaf) *Tree {
	return &Tree{repo: repo, Leaves: leaves}
}

func (t *Tree) Type() ObjectType { return TypeTree }
func (t *Tree) Repo() Repository { return t.repo }

func (t *Tree) Serialize() ([]byte, error) {
	return marshalTree(t.Leaves)
}

func (t *Tree) Deserialize(data []byte) error {
	leaves, err := unmarshalTree(data)
	if err != nil {
		return err
	}
	t.Leaves = leaves
	return nil
}

// Commit is a KVLM payload. The core reads its "tree" and "parent" keys.
type Commit struct {
	repo Repository
	KVLM *KVLM
}

// NewCommit returns an empty commit bound to repo.
func NewCommit(repo Repository) *Commit {
	return &Commit{repo: repo, KVLM: NewKVLM()}
}

func (c *Commit) Type() ObjectType { return TypeCommit }
func (c *Commit) Repo() Repository { return c.repo }

func (c *Commit) Serialize() ([]byte, error) {
	return c.KVLM.Bytes(), nil
}

func (c *Commit) Deserialize(data []byte) error {
	m, err := ParseKVLM(data)
	if err != nil {
		return err
	}
	c.KVLM = m
	return nil
}

// TreeHash returns the commit's root tree.
func (c *Commit) TreeHash() Hash {
	v, _ := c.KVLM.First("tree")
	return Hash(v)
}

// Parents returns the commit's parents in stored order.
func (c *Commit) Parents() []Hash {
	vals := c.KVLM.Get("parent")
	out := make([]Hash, len(vals))
	for i, v := range vals {
		out[i] = Hash(v)
	}
	return out
}

// Author returns the raw author line value.
func (c *Commit) Author() string {
	v, _ := c.KVLM.First("author")
	return v
}

// Message returns the free-text commit message.
func (c *Commit) Message() string {
	return c.KVLM.Message
}

// Tag is an annotated tag. Its "object" key names the tagged digest.
type Tag struct {
	repo Repository
	KVLM *KVLM
}

// NewTag returns an empty tag bound to repo.
func NewTag(repo Repository) *Tag {
	return &Tag{repo: repo, KVLM: NewKVLM()}
}

func (t *Tag) Type() ObjectType { return TypeTag }
func (t *Tag) Repo() Repository { return t.repo }

func (t *Tag) Serialize() ([]byte, error) {
	return t.KVLM.Bytes(), nil
}

func (t *Tag) Deserialize(data []byte) error {
	m, err := ParseKVLM(data)
	if err != nil {
		return err
	}
	t.KVLM = m
	return nil
}

// Target returns the tagged object's digest.
func (t *Tag) Target() Hash {
	v, _ := t.KVLM.First("object")
	return Hash(v)
}

// TargetType returns the kind recorded in the tag's "type" key.
func (t *Tag) TargetType() ObjectType {
	v, _ := t.KVLM.First("type")
	return ObjectType(v)
}

// Name returns the tag name.
func (t *Tag) Name() string {
	v, _ := t.KVLM.First("tag")
	return v
}
