package object

// SignatureKey is the KVLM header that carries a tag signature.
const SignatureKey = "signature"

// TagSigningPayload returns the canonical bytes that are signed for a tag.
// The payload excludes the signature field itself.
func TagSigningPayload(t *Tag) []byte {
	if t == nil || t.KVLM == nil {
		return nil
	}
	unsigned := NewKVLM()
	for _, key := range t.KVLM.Keys() {
		if key == SignatureKey {
			continue
		}
		unsigned.Set(key, t.KVLM.Get(key)...)
	}
	unsigned.Message = t.KVLM.Message
	return unsigned.Bytes()
}
