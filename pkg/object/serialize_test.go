package object

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCommit = "tree 29ff16c9c14e2652b22f8b78bb08a5a07930c147\n" +
	"parent 206941306e8a8af65b66eaaaea388a7ae24d49a0\n" +
	"author Thibault Polge <thibault@thb.lt> 1527025023 +0200\n" +
	"committer Thibault Polge <thibault@thb.lt> 1527025044 +0200\n" +
	"gpgsig -----BEGIN PGP SIGNATURE-----\n" +
	" \n" +
	" iQIzBAABCAAdFiEExwXquOM8bWb4Q2zVGxM2FxoLkGQFAlsEjZQACgkQGxM2FxoL\n" +
	" =lgTX\n" +
	" -----END PGP SIGNATURE-----\n" +
	"\n" +
	"Create first draft\n"

func TestParseKVLM(t *testing.T) {
	m, err := ParseKVLM([]byte(sampleCommit))
	require.NoError(t, err)

	assert.Equal(t, []string{"tree", "parent", "author", "committer", "gpgsig"}, m.Keys())
	tree, ok := m.First("tree")
	require.True(t, ok)
	assert.Equal(t, "29ff16c9c14e2652b22f8b78bb08a5a07930c147", tree)
	assert.Equal(t, "Create first draft\n", m.Message)

	sig, ok := m.First("gpgsig")
	require.True(t, ok)
	assert.Equal(t, "-----BEGIN PGP SIGNATURE-----\n\n"+
		"iQIzBAABCAAdFiEExwXquOM8bWb4Q2zVGxM2FxoLkGQFAlsEjZQACgkQGxM2FxoL\n"+
		"=lgTX\n"+
		"-----END PGP SIGNATURE-----", sig)
}

func TestKVLM_RoundTrip(t *testing.T) {
	m, err := ParseKVLM([]byte(sampleCommit))
	require.NoError(t, err)
	assert.Equal(t, sampleCommit, string(m.Bytes()))
}

func TestKVLM_RepeatedKeys(t *testing.T) {
	m := NewKVLM()
	m.Add("tree", "t")
	m.Add("parent", "p1")
	m.Add("parent", "p2")
	m.Message = "merge\n"

	assert.Equal(t, "tree t\nparent p1\nparent p2\n\nmerge\n", string(m.Bytes()))

	parsed, err := ParseKVLM(m.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, parsed.Get("parent"))

	parsed.Set("parent", "p3")
	assert.Equal(t, []string{"p3"}, parsed.Get("parent"))
	assert.False(t, parsed.Has("author"))
}

func TestParseKVLM_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no separator", "tree abc\nparent def"},
		{"header without value", "tree\n\nmsg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKVLM([]byte(tt.data))
			assert.ErrorIs(t, err, ErrMalformedObject)
		})
	}
}

func TestParseKVLM_Empty(t *testing.T) {
	m, err := ParseKVLM(nil)
	require.NoError(t, err)
	assert.Empty(t, m.Keys())

	m, err = ParseKVLM([]byte("\nonly a message"))
	require.NoError(t, err)
	assert.Empty(t, m.Keys())
	assert.Equal(t, "only a message", m.Message)
}

func TestTree_RoundTrip(t *testing.T) {
	blobHash := HashObject(TypeBlob, []byte("a"))
	subHash := HashObject(TypeTree, nil)

	tr := NewTree(nil,
		TreeLeaf{Mode: TreeModeFile, Path: "z.txt", Hash: blobHash},
		TreeLeaf{Mode: TreeModeDir, Path: "sub", Hash: subHash},
		TreeLeaf{Mode: TreeModeExecutable, Path: "run.sh", Hash: blobHash},
	)
	data, err := tr.Serialize()
	require.NoError(t, err)

	got := NewTree(nil)
	require.NoError(t, got.Deserialize(data))
	require.Len(t, got.Leaves, 3)

	assert.Equal(t, "run.sh", got.Leaves[0].Path)
	assert.Equal(t, "sub", got.Leaves[1].Path)
	assert.Equal(t, "040000", got.Leaves[1].Mode)
	assert.True(t, got.Leaves[1].IsDir())
	assert.Equal(t, subHash, got.Leaves[1].Hash)
	assert.Equal(t, "z.txt", got.Leaves[2].Path)
	assert.Equal(t, "100644", got.Leaves[2].Mode)

	again, err := got.Serialize()
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestTree_GitOrdering(t *testing.T) {
	h := HashObject(TypeBlob, nil)
	// "foo.c" sorts before the directory "foo" because "foo/" > "foo.c".
	tr := NewTree(nil,
		TreeLeaf{Mode: TreeModeDir, Path: "foo", Hash: h},
		TreeLeaf{Mode: TreeModeFile, Path: "foo.c", Hash: h},
	)
	data, err := tr.Serialize()
	require.NoError(t, err)

	leaves, err := unmarshalTree(data)
	require.NoError(t, err)
	assert.Equal(t, "foo.c", leaves[0].Path)
	assert.Equal(t, "foo", leaves[1].Path)
}

func TestTree_Errors(t *testing.T) {
	_, err := NewTree(nil, TreeLeaf{Mode: TreeModeFile, Path: "a", Hash: "zz"}).Serialize()
	assert.ErrorIs(t, err, ErrEncoding)

	_, err = NewTree(nil, TreeLeaf{Mode: TreeModeFile, Path: "a/b", Hash: HashObject(TypeBlob, nil)}).Serialize()
	assert.ErrorIs(t, err, ErrMalformedObject)

	_, err = unmarshalTree([]byte("100644 a.txt\x00short"))
	assert.ErrorIs(t, err, ErrMalformedObject)

	_, err = unmarshalTree([]byte("1x0644 a.txt\x0001234567890123456789"))
	assert.ErrorIs(t, err, ErrMalformedObject)
}

func TestTree_DuplicateLeaves(t *testing.T) {
	h := HashObject(TypeBlob, nil)
	_, err := NewTree(nil,
		TreeLeaf{Mode: TreeModeSymlink, Path: "x", Hash: h},
		TreeLeaf{Mode: TreeModeDir, Path: "x", Hash: h},
	).Serialize()
	assert.ErrorIs(t, err, ErrMalformedObject)

	raw, err := hex.DecodeString(string(h))
	require.NoError(t, err)
	var data []byte
	data = append(data, "120000 x\x00"...)
	data = append(data, raw...)
	data = append(data, "40000 x\x00"...)
	data = append(data, raw...)
	_, err = unmarshalTree(data)
	assert.ErrorIs(t, err, ErrMalformedObject)
	assert.ErrorContains(t, err, "duplicate leaf")
}

func TestTagSigningPayload(t *testing.T) {
	tag := NewTag(nil)
	tag.KVLM.Add("object", "abc")
	tag.KVLM.Add("type", "commit")
	tag.KVLM.Message = "msg\n"
	unsigned := TagSigningPayload(tag)

	tag.KVLM.Add(SignatureKey, "sshsig-v1:ssh-ed25519:AAAA:BBBB")
	assert.Equal(t, unsigned, TagSigningPayload(tag))
	assert.NotEqual(t, unsigned, tag.KVLM.Bytes())
	assert.Nil(t, TagSigningPayload(nil))
}
